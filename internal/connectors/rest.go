package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fieldpulse/fieldpulse/internal/domain"
)

// observationPoint is the generic upstream JSON shape every live
// connector expects: a flat list of dated values per feature. Real
// providers differ in schema; a production build would give each one
// its own decoder, but they converge on this shape before reaching
// the harmonizer.
type observationPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type observationResponse struct {
	Observations map[string][]observationPoint `json:"observations"`
}

// restClient performs the live (non-offline) HTTP fetch for a
// connector, grounded on the teacher's registry.Manager download flow
// (internal/infra/registry/manager.go): a plain *http.Client, a
// User-Agent header, and context-bound cancellation instead of a
// manual timeout field.
type restClient struct {
	httpClient *http.Client
	baseURL    string
}

func newRESTClient(baseURL string) *restClient {
	return &restClient{
		httpClient: &http.Client{},
		baseURL:    baseURL,
	}
}

func (c *restClient) fetch(ctx context.Context, path, apiKey string, query map[string]string) (observationResponse, error) {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return observationResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "fieldpulse/0.1.0")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	q := req.URL.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return observationResponse{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return observationResponse{}, rateLimited(fmt.Errorf("HTTP %d from %s", resp.StatusCode, url))
	default:
		return observationResponse{}, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	var out observationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return observationResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

// toDailySeries densifies a raw observationResponse into the requested
// feature columns over [start,end], leaving unreported days missing.
func toDailySeries(resp observationResponse, start, end domain.Day, features []string) (domain.DailySeries, error) {
	series := domain.NewDailySeries(start, end, features)
	for _, feature := range features {
		for _, p := range resp.Observations[feature] {
			t, err := time.Parse("2006-01-02", p.Date)
			if err != nil {
				continue
			}
			d := domain.NewDay(t)
			idx := series.IndexOf(d)
			if idx < 0 {
				continue
			}
			series.Set(feature, idx, p.Value)
		}
	}
	return series, nil
}
