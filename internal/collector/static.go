package collector

import (
	"context"
	"sync"
	"time"

	"BandWatch/internal/model"
)

// StaticFetcher serves fixed in-memory series, for development and testing.
type StaticFetcher struct {
	mu     sync.Mutex
	series map[string]model.PriceSeries
	errs   map[string]error
	calls  map[string]int
}

func NewStaticFetcher() *StaticFetcher {
	return &StaticFetcher{
		series: make(map[string]model.PriceSeries),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (s *StaticFetcher) Name() string { return "static" }

// Add registers a series under its symbol.
func (s *StaticFetcher) Add(series model.PriceSeries) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series[series.Symbol] = series
}

// Fail makes every fetch of symbol return err.
func (s *StaticFetcher) Fail(symbol string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[symbol] = err
}

// Calls returns how many times symbol was fetched.
func (s *StaticFetcher) Calls(symbol string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[symbol]
}

func (s *StaticFetcher) FetchDaily(_ context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[symbol]++
	if err := s.errs[symbol]; err != nil {
		return nil, err
	}
	src, ok := s.series[symbol]
	if !ok {
		return &model.PriceSeries{Symbol: symbol}, nil
	}
	points := append([]model.PricePoint(nil), src.Points...)
	return &model.PriceSeries{
		Symbol:  symbol,
		Points:  normalize(points, model.TradingDay(start), model.TradingDay(end)),
		HighLow: src.HighLow,
	}, nil
}

// GenerateSeries builds n synthetic trading days starting at start, with a
// gentle trend and a fixed daily spread.
func GenerateSeries(symbol string, basePrice float64, start time.Time, n int) model.PriceSeries {
	s := model.PriceSeries{Symbol: symbol, HighLow: true, Points: make([]model.PricePoint, 0, n)}
	day := model.TradingDay(start)
	for len(s.Points) < n {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			i := len(s.Points)
			p := basePrice * (1 + float64(i-n/2)*0.001)
			s.Points = append(s.Points, model.PricePoint{
				Time:  day,
				Value: p,
				High:  p * 1.005,
				Low:   p * 0.995,
			})
		}
		day = day.AddDate(0, 0, 1)
	}
	return s
}
