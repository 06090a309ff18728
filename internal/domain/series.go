package domain

import (
	"encoding/json"
	"math"
	"sort"
	"time"
)

// dayLayout is the canonical date-only format used throughout the
// pipeline. Cadence is daily (spec.md Non-goal #2: no sub-daily cadence).
const dayLayout = "2006-01-02"

// Day is a calendar day, stored at midnight UTC, used as the dense grid
// key for every DailySeries.
type Day struct{ t time.Time }

// NewDay truncates t to a UTC calendar day.
func NewDay(t time.Time) Day {
	u := t.UTC()
	return Day{time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)}
}

// Time returns the underlying time.Time at midnight UTC.
func (d Day) Time() time.Time { return d.t }

// String renders the day as YYYY-MM-DD.
func (d Day) String() string { return d.t.Format(dayLayout) }

// AddDays returns the day n days after d (n may be negative).
func (d Day) AddDays(n int) Day { return Day{d.t.AddDate(0, 0, n)} }

// Before reports whether d precedes o.
func (d Day) Before(o Day) bool { return d.t.Before(o.t) }

// After reports whether d follows o.
func (d Day) After(o Day) bool { return d.t.After(o.t) }

// DaysBetween returns the number of days from a to b (b - a).
func DaysBetween(a, b Day) int { return int(b.t.Sub(a.t).Hours() / 24) }

// MarshalJSON renders a Day as its YYYY-MM-DD string, so the disk
// cache tier and API responses see a plain date rather than a
// time.Time with a zero-value internal field.
func (d Day) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

// UnmarshalJSON parses a YYYY-MM-DD string back into a Day.
func (d *Day) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return err
	}
	*d = NewDay(t)
	return nil
}

// DailySeries is an ordered, dense, contiguous sequence of per-day
// feature observations. Invariant (spec.md §3): no duplicate dates, a
// contiguous [Start, End] range, all finite values once harmonized.
type DailySeries struct {
	Start    Day
	End      Day
	Features []string
	// Values maps feature name to a slice aligned 1:1 with the
	// [Start,End] day range; math.NaN marks "missing" prior to
	// harmonization. Harmonized output must not contain NaN/Inf.
	Values map[string][]float64
}

// NewDailySeries allocates a dense series over [start,end] for the given
// feature names, initialized to "missing" (NaN).
func NewDailySeries(start, end Day, features []string) DailySeries {
	n := DaysBetween(start, end) + 1
	if n < 0 {
		n = 0
	}
	vals := make(map[string][]float64, len(features))
	for _, f := range features {
		col := make([]float64, n)
		for i := range col {
			col[i] = math.NaN()
		}
		vals[f] = col
	}
	return DailySeries{Start: start, End: end, Features: features, Values: vals}
}

// dailySeriesWire is the JSON-safe shadow of DailySeries: NaN
// ("missing") cannot round-trip through encoding/json directly, so
// missing values marshal as null via a nilable pointer slice.
type dailySeriesWire struct {
	Start    Day                   `json:"start"`
	End      Day                   `json:"end"`
	Features []string              `json:"features"`
	Values   map[string][]*float64 `json:"values"`
}

// MarshalJSON implements json.Marshaler for DailySeries.
func (s DailySeries) MarshalJSON() ([]byte, error) {
	vals := make(map[string][]*float64, len(s.Values))
	for feature, col := range s.Values {
		out := make([]*float64, len(col))
		for i, v := range col {
			if IsFinite(v) {
				vv := v
				out[i] = &vv
			}
		}
		vals[feature] = out
	}
	return json.Marshal(dailySeriesWire{Start: s.Start, End: s.End, Features: s.Features, Values: vals})
}

// UnmarshalJSON implements json.Unmarshaler for DailySeries, restoring
// null entries as NaN.
func (s *DailySeries) UnmarshalJSON(b []byte) error {
	var raw dailySeriesWire
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	vals := make(map[string][]float64, len(raw.Values))
	for feature, col := range raw.Values {
		out := make([]float64, len(col))
		for i, v := range col {
			if v == nil {
				out[i] = math.NaN()
			} else {
				out[i] = *v
			}
		}
		vals[feature] = out
	}
	s.Start, s.End, s.Features, s.Values = raw.Start, raw.End, raw.Features, vals
	return nil
}

// Len returns the number of days spanned.
func (s DailySeries) Len() int {
	if len(s.Values) == 0 {
		return DaysBetween(s.Start, s.End) + 1
	}
	for _, v := range s.Values {
		return len(v)
	}
	return 0
}

// DayAt returns the calendar day for index i.
func (s DailySeries) DayAt(i int) Day { return s.Start.AddDays(i) }

// IndexOf returns the offset of day d within the series, or -1.
func (s DailySeries) IndexOf(d Day) int {
	i := DaysBetween(s.Start, d)
	if i < 0 || i >= s.Len() {
		return -1
	}
	return i
}

// Get returns the value of feature at index i, and whether it is present.
func (s DailySeries) Get(feature string, i int) (float64, bool) {
	col, ok := s.Values[feature]
	if !ok || i < 0 || i >= len(col) {
		return 0, false
	}
	v := col[i]
	return v, !math.IsNaN(v)
}

// Set assigns the value of feature at index i.
func (s DailySeries) Set(feature string, i int, v float64) {
	if col, ok := s.Values[feature]; ok && i >= 0 && i < len(col) {
		col[i] = v
	}
}

// IsFinite reports whether v is a legal harmonized value (no NaN, no Inf).
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Clamp01 clips v into [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Observation is a single (date, feature->value) row, used when decoding
// connector payloads before they are densified into a DailySeries.
type Observation struct {
	Date    Day
	Feature string
	Value   float64
}

// BuildDailySeries densifies a sparse, possibly-unsorted list of
// observations into a dense DailySeries spanned by the min/max observed
// date. An empty list yields a one-day series for today with every
// value missing.
func BuildDailySeries(obs []Observation, features []string) DailySeries {
	if len(obs) == 0 {
		today := NewDay(time.Now())
		return NewDailySeries(today, today, features)
	}
	sorted := append([]Observation(nil), obs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	start, end := sorted[0].Date, sorted[0].Date
	for _, o := range sorted {
		if o.Date.Before(start) {
			start = o.Date
		}
		if o.Date.After(end) {
			end = o.Date
		}
	}
	s := NewDailySeries(start, end, features)
	for _, o := range sorted {
		i := s.IndexOf(o.Date)
		if i >= 0 {
			s.Set(o.Feature, i, o.Value)
		}
	}
	return s
}
