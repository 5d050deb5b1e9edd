package analysis

import (
	"context"
	"log"
	"time"

	"BandWatch/internal/calculator"
	"BandWatch/internal/collector"
	"BandWatch/internal/model"
	"BandWatch/internal/recorder"
)

// Query is one band request as a user states it.
type Query struct {
	Ticker string
	Start  time.Time
	End    time.Time
	Mode   model.Mode
	Fill   model.Fill
}

// Result is a computed band series plus the id it was archived under.
type Result struct {
	RunID  string
	Ticker collector.Ticker
	Series *model.BandSeries
}

// Analyzer runs the construct, calculate, fill and record pipeline.
type Analyzer struct {
	Constructor *collector.Constructor
	Recorder    recorder.Recorder
	Params      model.BandParams
}

// NewAnalyzer creates a new Analyzer. A nil recorder disables archiving.
func NewAnalyzer(c *collector.Constructor, rec recorder.Recorder, params model.BandParams) *Analyzer {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Analyzer{Constructor: c, Recorder: rec, Params: params}
}

// Analyze computes the bands for q. Recording failures are logged only.
func (a *Analyzer) Analyze(ctx context.Context, q Query) (*Result, error) {
	if q.Mode == "" {
		q.Mode = model.ModeClose
	}
	w, err := a.Constructor.Build(ctx, collector.Request{
		Ticker: q.Ticker,
		Start:  q.Start,
		End:    q.End,
		Mode:   q.Mode,
	})
	if err != nil {
		return nil, err
	}

	bands, err := calculator.Calculate(w.Series, w.Mode, a.Params)
	if err != nil {
		return nil, err
	}
	bands.Symbol = w.Ticker.String()

	fill := q.Fill
	if fill == "" {
		fill = model.FillNone
	}
	bands, err = calculator.ApplyFill(bands, fill)
	if err != nil {
		return nil, err
	}

	run := &recorder.Run{
		Ticker: w.Ticker.String(),
		Source: a.Constructor.Fetcher.Name(),
		Start:  model.TradingDay(q.Start),
		End:    model.TradingDay(q.End),
		Series: bands,
	}
	if err := a.Recorder.RecordRun(ctx, run); err != nil {
		log.Printf("[ERROR] record band run %s: %v", run.Ticker, err)
	}

	return &Result{RunID: run.ID, Ticker: w.Ticker, Series: bands}, nil
}

// Lookback builds a query ending on the trading day of now and spanning days
// calendar days back.
func Lookback(ticker string, now time.Time, days int, mode model.Mode, fill model.Fill) Query {
	end := model.TradingDay(now)
	return Query{Ticker: ticker, Start: end.AddDate(0, 0, -days), End: end, Mode: mode, Fill: fill}
}
