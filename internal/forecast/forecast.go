// Package forecast implements the classical forecasting models of
// spec §4.6: seasonal additive exponential smoothing for long
// histories, trend-only smoothing for medium histories, and a naive
// last-value carry for short ones.
package forecast

import (
	"math"
	"math/rand"
)

const (
	seasonalMinDays = 30
	trendMinDays    = 10
	weeklyPeriod    = 7
	z95             = 1.959963984540054
	minIntervalHalf = 0.02
)

// Result is the output of Forecast: per-day point estimate and
// interval bounds, plus the model that produced them and its
// parameters (recorded for inspection, not reused across calls).
type Result struct {
	Point      []float64
	Lower      []float64
	Upper      []float64
	ModelName  string
	ModelParams map[string]float64
}

// Forecast produces a horizon-day-ahead forecast from history
// (already in chronological order, [0,1]-ranged, no NaN). horizon must
// lie in [1,90]; the caller validates it (orchestrator.Request.Validate)
// and this function trusts its input. seed drives any pseudo-random
// component so offline/deterministic runs reproduce exactly — the
// orchestrator passes Seed(region_id, horizon) on every run (the models below are deterministic regardless, but a
// seed is threaded through so a future stochastic model has
// somewhere to plug in without changing the contract).
func Forecast(history []float64, horizon int, seed int64) Result {
	_ = rand.New(rand.NewSource(seed)) // reserved for stochastic model extensions

	if len(history) < 2 {
		return naiveLast(history, horizon)
	}
	switch {
	case len(history) >= seasonalMinDays:
		return seasonalSmoothing(history, horizon)
	case len(history) >= trendMinDays:
		return trendSmoothing(history, horizon)
	default:
		return naiveLast(history, horizon)
	}
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clipInterval enforces spec §4.6's bound clipping: lower in [0,point],
// upper in [point,1].
func clipInterval(point, lower, upper float64) (float64, float64) {
	point = clip01(point)
	if lower < 0 {
		lower = 0
	}
	if lower > point {
		lower = point
	}
	if upper > 1 {
		upper = 1
	}
	if upper < point {
		upper = point
	}
	return lower, upper
}

func naiveLast(history []float64, horizon int) Result {
	last := 0.5
	if len(history) > 0 {
		last = history[len(history)-1]
	}
	std := rollingStd(history, len(history))
	half := math.Max(2*std, minIntervalHalf)

	point := make([]float64, horizon)
	lower := make([]float64, horizon)
	upper := make([]float64, horizon)
	for i := range point {
		p := clip01(last)
		lo, up := clipInterval(p, p-half, p+half)
		point[i], lower[i], upper[i] = p, lo, up
	}
	return Result{
		Point: point, Lower: lower, Upper: upper,
		ModelName:   "naive_last",
		ModelParams: map[string]float64{"last_value": last, "rolling_std": std},
	}
}

// trendSmoothing implements Holt's linear (double exponential
// smoothing) trend model: level and trend updated additively, no
// seasonal component.
func trendSmoothing(history []float64, horizon int) Result {
	const alpha, beta = 0.3, 0.1

	level := history[0]
	trend := history[1] - history[0]
	residuals := make([]float64, 0, len(history))
	for i := 1; i < len(history); i++ {
		forecast1 := level + trend
		residuals = append(residuals, history[i]-forecast1)

		prevLevel := level
		level = alpha*history[i] + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
	}
	se := residualSE(residuals)

	point := make([]float64, horizon)
	lower := make([]float64, horizon)
	upper := make([]float64, horizon)
	for h := 1; h <= horizon; h++ {
		p := clip01(level + float64(h)*trend)
		band := se * z95 * math.Sqrt(float64(h))
		lo, up := clipInterval(p, p-band, p+band)
		point[h-1], lower[h-1], upper[h-1] = p, lo, up
	}
	return Result{
		Point: point, Lower: lower, Upper: upper,
		ModelName:   "exp_smoothing_trend",
		ModelParams: map[string]float64{"alpha": alpha, "beta": beta, "level": level, "trend": trend, "residual_se": se},
	}
}

// seasonalSmoothing implements Holt-Winters additive smoothing with a
// 7-day (weekly) seasonal period.
func seasonalSmoothing(history []float64, horizon int) Result {
	const alpha, beta, gamma = 0.3, 0.1, 0.2

	n := len(history)
	seasonal := initialSeasonalComponents(history, weeklyPeriod)

	level := mean(history[:weeklyPeriod])
	trend := (mean(history[weeklyPeriod:2*weeklyPeriod]) - mean(history[:weeklyPeriod])) / float64(weeklyPeriod)

	residuals := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		s := seasonal[i%weeklyPeriod]
		forecast1 := level + trend + s
		residuals = append(residuals, history[i]-forecast1)

		prevLevel := level
		level = alpha*(history[i]-s) + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
		seasonal[i%weeklyPeriod] = gamma*(history[i]-level) + (1-gamma)*s
	}
	se := residualSE(residuals)

	point := make([]float64, horizon)
	lower := make([]float64, horizon)
	upper := make([]float64, horizon)
	for h := 1; h <= horizon; h++ {
		s := seasonal[(n+h-1)%weeklyPeriod]
		p := clip01(level + float64(h)*trend + s)
		band := se * z95 * math.Sqrt(float64(h))
		lo, up := clipInterval(p, p-band, p+band)
		point[h-1], lower[h-1], upper[h-1] = p, lo, up
	}
	return Result{
		Point: point, Lower: lower, Upper: upper,
		ModelName:   "exp_smoothing_seasonal",
		ModelParams: map[string]float64{"alpha": alpha, "beta": beta, "gamma": gamma, "level": level, "trend": trend, "residual_se": se},
	}
}

func initialSeasonalComponents(history []float64, period int) []float64 {
	seasonal := make([]float64, period)
	counts := make([]int, period)
	overall := mean(history)
	for i, v := range history {
		seasonal[i%period] += v - overall
		counts[i%period]++
	}
	for i := range seasonal {
		if counts[i] > 0 {
			seasonal[i] /= float64(counts[i])
		}
	}
	return seasonal
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func residualSE(residuals []float64) float64 {
	if len(residuals) < 2 {
		return minIntervalHalf
	}
	m := mean(residuals)
	var ss float64
	for _, r := range residuals {
		d := r - m
		ss += d * d
	}
	se := math.Sqrt(ss / float64(len(residuals)-1))
	return math.Max(se, minIntervalHalf/z95)
}

func rollingStd(history []float64, window int) float64 {
	if window > len(history) {
		window = len(history)
	}
	if window < 2 {
		return minIntervalHalf
	}
	sample := history[len(history)-window:]
	m := mean(sample)
	var ss float64
	for _, v := range sample {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(sample)-1))
}
