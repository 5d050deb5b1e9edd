package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"BandWatch/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client:  newHTTPClient(proxyURL),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GMTOffset int64 `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High  []interface{} `json:"high"`
					Low   []interface{} `json:"low"`
					Close []interface{} `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []interface{} `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// toFloat converts a JSON number to float64; null and absent become NaN.
func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return math.NaN()
	}
}

func at(xs []interface{}, i int) interface{} {
	if i < len(xs) {
		return xs[i]
	}
	return nil
}

// adjust moves p onto the adjusted-close basis. High and low are scaled by
// the same factor as the close so the three stay comparable.
func adjust(p *model.PricePoint, adjClose float64) {
	if model.Missing(adjClose) || p.Value == 0 {
		return
	}
	k := adjClose / p.Value
	p.Value = adjClose
	p.High *= k
	p.Low *= k
}

func (f *YahooFetcher) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	start, end = model.TradingDay(start), model.TradingDay(end)
	// period2 is exclusive on Yahoo's side
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d&includeAdjustedClose=true",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), start.Unix(), end.AddDate(0, 0, 1).Unix())

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}

	empty := &model.PriceSeries{Symbol: symbol}
	if resp.StatusCode == http.StatusNotFound {
		return empty, nil // unknown or delisted symbol
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return empty, nil
		}
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return empty, nil
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return empty, nil
	}
	quote := result.Indicators.Quote[0]
	var adj []interface{}
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	n := len(result.Timestamp)
	series := &model.PriceSeries{
		Symbol:  symbol,
		Points:  make([]model.PricePoint, 0, n),
		HighLow: len(quote.High) == n && len(quote.Low) == n,
	}
	for i, ts := range result.Timestamp {
		c := toFloat(at(quote.Close, i))
		if math.IsNaN(c) {
			continue // skip null bars (holidays etc.)
		}
		series.Points = append(series.Points, model.PricePoint{
			Time:  model.TradingDay(time.Unix(ts+result.Meta.GMTOffset, 0).UTC()),
			Value: c,
			High:  toFloat(at(quote.High, i)),
			Low:   toFloat(at(quote.Low, i)),
		})
		adjust(&series.Points[len(series.Points)-1], toFloat(at(adj, i)))
	}
	series.Points = normalize(series.Points, start, end)
	return series, nil
}
