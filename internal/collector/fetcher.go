package collector

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"time"

	"BandWatch/internal/model"
)

// Fetcher defines the interface for fetching daily price data. Start and end
// are inclusive trading days. An empty series signals "no data".
type Fetcher interface {
	FetchDaily(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error)
	Name() string
}

// newHTTPClient builds a 30s-timeout client with optional proxy support.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// normalize sorts points chronologically, keeps those inside [start, end] and
// collapses duplicate days to their last observation.
func normalize(points []model.PricePoint, start, end time.Time) []model.PricePoint {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	out := points[:0]
	for _, p := range points {
		if p.Time.Before(start) || p.Time.After(end) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Time.Equal(p.Time) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}
