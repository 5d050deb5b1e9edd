package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"BandWatch/internal/cache"
	"BandWatch/internal/model"
)

// CachedFetcher memoizes another Fetcher in a cache.Store.
type CachedFetcher struct {
	Next  Fetcher
	Store cache.Store
	TTL   time.Duration
}

// NewCachedFetcher wraps next with store.
func NewCachedFetcher(next Fetcher, store cache.Store, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{Next: next, Store: store, TTL: ttl}
}

func (f *CachedFetcher) Name() string { return f.Next.Name() + "+cache" }

// cachedSeries is the stored form; NaN has no JSON encoding so missing
// values are nil.
type cachedSeries struct {
	Symbol  string        `json:"symbol"`
	HighLow bool          `json:"high_low"`
	Points  []cachedPoint `json:"points"`
}

type cachedPoint struct {
	Time  int64    `json:"t"`
	Value *float64 `json:"v"`
	High  *float64 `json:"h,omitempty"`
	Low   *float64 `json:"l,omitempty"`
}

func ptr(v float64) *float64 {
	if model.Missing(v) {
		return nil
	}
	return &v
}

func val(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func encodeSeries(s *model.PriceSeries) ([]byte, error) {
	cs := cachedSeries{Symbol: s.Symbol, HighLow: s.HighLow, Points: make([]cachedPoint, len(s.Points))}
	for i, p := range s.Points {
		cs.Points[i] = cachedPoint{Time: p.Time.Unix(), Value: ptr(p.Value), High: ptr(p.High), Low: ptr(p.Low)}
	}
	return json.Marshal(cs)
}

func decodeSeries(b []byte) (*model.PriceSeries, error) {
	var cs cachedSeries
	if err := json.Unmarshal(b, &cs); err != nil {
		return nil, err
	}
	s := &model.PriceSeries{Symbol: cs.Symbol, HighLow: cs.HighLow, Points: make([]model.PricePoint, len(cs.Points))}
	for i, p := range cs.Points {
		s.Points[i] = model.PricePoint{
			Time:  time.Unix(p.Time, 0).UTC(),
			Value: val(p.Value),
			High:  val(p.High),
			Low:   val(p.Low),
		}
	}
	return s, nil
}

func (f *CachedFetcher) key(symbol string, start, end time.Time) string {
	return fmt.Sprintf("bandwatch:series:%s:%s:%s:%s", f.Next.Name(), symbol,
		start.Format(model.DayLayout), end.Format(model.DayLayout))
}

// FetchDaily serves from the cache when possible. Empty results and errors
// are not cached. Cache failures fall through to the wrapped fetcher.
func (f *CachedFetcher) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	key := f.key(symbol, model.TradingDay(start), model.TradingDay(end))

	b, err := f.Store.Get(ctx, key)
	switch {
	case err == nil:
		s, derr := decodeSeries(b)
		if derr == nil {
			return s, nil
		}
		log.Printf("[WARN] decode cached series %s: %v", key, derr)
	case !errors.Is(err, cache.ErrMiss):
		log.Printf("[WARN] cache get %s: %v", key, err)
	}

	s, err := f.Next.FetchDaily(ctx, symbol, start, end)
	if err != nil || s.Len() == 0 {
		return s, err
	}
	if b, err := encodeSeries(s); err != nil {
		log.Printf("[WARN] encode series %s: %v", key, err)
	} else if err := f.Store.Set(ctx, key, b, f.TTL); err != nil {
		log.Printf("[WARN] cache set %s: %v", key, err)
	}
	return s, nil
}
