package collector

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"BandWatch/internal/model"

	"golang.org/x/sync/errgroup"
)

// Request asks for the working series of a ticker over [Start, End].
type Request struct {
	Ticker string
	Start  time.Time
	End    time.Time
	Mode   model.Mode
}

// Validate checks the date range.
func (r Request) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", model.ErrInvalidRange)
	}
	if model.TradingDay(r.End).Before(model.TradingDay(r.Start)) {
		return fmt.Errorf("%w: start %s is after end %s", model.ErrInvalidRange,
			r.Start.Format(model.DayLayout), r.End.Format(model.DayLayout))
	}
	return nil
}

// Working is the series the band calculator runs on, with the mode that
// applies to it.
type Working struct {
	Ticker Ticker
	Series *model.PriceSeries
	Mode   model.Mode
}

// Constructor builds working series from a Fetcher.
type Constructor struct {
	Fetcher Fetcher
}

// NewConstructor creates a new Constructor.
func NewConstructor(fetcher Fetcher) *Constructor {
	return &Constructor{Fetcher: fetcher}
}

// Build fetches and combines the series for req. A ratio is always
// close-only, whatever mode was requested.
func (c *Constructor) Build(ctx context.Context, req Request) (*Working, error) {
	ticker, err := ParseTicker(req.Ticker)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start, end := model.TradingDay(req.Start), model.TradingDay(req.End)

	if !ticker.IsRatio() {
		series, err := c.fetch(ctx, ticker.Numerator, start, end, model.SideSingle)
		if err != nil {
			return nil, err
		}
		if req.Mode == model.ModeHighLow && !series.HighLow {
			return nil, fmt.Errorf("%w: %s from %s", model.ErrMissingFields, ticker, c.Fetcher.Name())
		}
		return &Working{Ticker: ticker, Series: series, Mode: req.Mode}, nil
	}

	if req.Mode == model.ModeHighLow {
		log.Printf("[INFO] ratio %s uses close prices only, ignoring %s mode", ticker, req.Mode)
	}

	var num, den *model.PriceSeries
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		num, err = c.fetch(gctx, ticker.Numerator, start, end, model.SideNumerator)
		return err
	})
	g.Go(func() error {
		var err error
		den, err = c.fetch(gctx, ticker.Denominator, start, end, model.SideDenominator)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ratio := Divide(ticker.String(), num, den)
	if ratio.Len() == 0 {
		return nil, &model.DataUnavailableError{Symbol: ticker.String(), Side: model.SideRatio}
	}
	return &Working{Ticker: ticker, Series: ratio, Mode: model.ModeClose}, nil
}

func (c *Constructor) fetch(ctx context.Context, symbol string, start, end time.Time, side model.Side) (*model.PriceSeries, error) {
	series, err := c.Fetcher.FetchDaily(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s fetch %s: %w", c.Fetcher.Name(), symbol, err)
	}
	if series.Len() == 0 {
		return nil, &model.DataUnavailableError{Symbol: symbol, Side: side}
	}
	return series, nil
}

// Divide returns num[t]/den[t] for every day present in both series, in num's
// order. A zero denominator gives an undefined value.
func Divide(symbol string, num, den *model.PriceSeries) *model.PriceSeries {
	byDay := make(map[int64]float64, den.Len())
	for _, p := range den.Points {
		byDay[p.Time.Unix()] = p.Value
	}
	out := &model.PriceSeries{Symbol: symbol, Points: make([]model.PricePoint, 0, num.Len())}
	for _, p := range num.Points {
		d, ok := byDay[p.Time.Unix()]
		if !ok {
			continue
		}
		v := math.NaN()
		if d != 0 {
			v = p.Value / d
		}
		out.Points = append(out.Points, model.PricePoint{Time: p.Time, Value: v, High: math.NaN(), Low: math.NaN()})
	}
	return out
}
