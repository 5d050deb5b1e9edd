package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"time"

	"BandWatch/internal/model"

	"github.com/go-playground/validator/v10"
)

// RESTFetcher implements Fetcher against a generic daily-bars REST API.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// barValidator checks decoded bars for every RESTFetcher.
var barValidator = validator.New()

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bars endpoint. High, low and
// adj_close are optional; a bar needs close or adj_close.
type restBar struct {
	Timestamp int64    `json:"timestamp" validate:"gt=0"`
	High      *float64 `json:"high" validate:"omitempty,gte=0"`
	Low       *float64 `json:"low" validate:"omitempty,gte=0"`
	Close     *float64 `json:"close" validate:"omitempty,gte=0"`
	AdjClose  *float64 `json:"adj_close" validate:"omitempty,gte=0"`
}

func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func (f *RESTFetcher) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	start, end = model.TradingDay(start), model.TradingDay(end)
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("start", start.Format(model.DayLayout))
	q.Set("end", end.Format(model.DayLayout))
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars %s: %w", symbol, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return &model.PriceSeries{Symbol: symbol}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var bars []restBar
	if err := json.NewDecoder(resp.Body).Decode(&bars); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}

	series := &model.PriceSeries{Symbol: symbol, HighLow: len(bars) > 0}
	for i, b := range bars {
		if b.Close == nil && b.AdjClose == nil {
			continue
		}
		if err := barValidator.Struct(b); err != nil {
			log.Printf("[WARN] %s: skipping bar %d: %v", symbol, i, err)
			continue
		}
		v := orNaN(b.AdjClose)
		if b.AdjClose == nil {
			v = *b.Close
		}
		if b.High == nil || b.Low == nil {
			series.HighLow = false
		}
		series.Points = append(series.Points, model.PricePoint{
			Time:  model.TradingDay(time.Unix(b.Timestamp, 0).UTC()),
			Value: v,
			High:  orNaN(b.High),
			Low:   orNaN(b.Low),
		})
	}
	series.Points = normalize(series.Points, start, end)
	return series, nil
}
