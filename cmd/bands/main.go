// Command bands computes the volatility bands for one ticker and prints them
// as a table.
//
//	bands -ticker SPY -start 2024-01-01 -end 2024-06-30 -mode highlow -tail 20
//	bands -ticker GLD/SLV -fill drop
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"BandWatch/internal/analysis"
	"BandWatch/internal/app"
	"BandWatch/internal/config"
	"BandWatch/internal/model"
	"BandWatch/internal/render"
)

func main() {
	log.SetFlags(0)

	var (
		cfgPath = flag.String("config", "configs/config.yaml", "config file")
		ticker  = flag.String("ticker", "", "ticker or A/B ratio")
		start   = flag.String("start", "", "first day, YYYY-MM-DD (default: end minus lookback)")
		end     = flag.String("end", "", "last day, YYYY-MM-DD (default: today)")
		modeArg = flag.String("mode", "", "close or highlow (default from config)")
		fillArg = flag.String("fill", "", "none, backfill or drop (default from config)")
		tail    = flag.Int("tail", 30, "rows to print, 0 for all")
		asJSON  = flag.Bool("json", false, "print JSON instead of a table")
		noStore = flag.Bool("no-record", false, "do not archive the run")
	)
	flag.Parse()
	if *ticker == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if *noStore {
		cfg.Database.SQLitePath = ""
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	q, err := buildQuery(cfg, *ticker, *start, *end, *modeArg, *fillArg)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("[FATAL] init: %v", err)
	}
	defer a.Close()

	res, err := a.Analyzer.Analyze(ctx, q)
	if err != nil {
		log.Fatalf("[FATAL] %s: %v", q.Ticker, err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(res.Series)
	} else {
		err = render.WriteTable(os.Stdout, res.Series, *tail)
	}
	if err != nil {
		log.Fatalf("[FATAL] write: %v", err)
	}
}

func buildQuery(cfg *config.Config, ticker, start, end, modeArg, fillArg string) (analysis.Query, error) {
	if modeArg == "" {
		modeArg = cfg.Bands.Mode
	}
	if fillArg == "" {
		fillArg = cfg.Bands.Fill
	}
	mode, err := model.ParseMode(modeArg)
	if err != nil {
		return analysis.Query{}, err
	}
	fill, err := model.ParseFill(fillArg)
	if err != nil {
		return analysis.Query{}, err
	}

	endDay := model.TradingDay(time.Now())
	if end != "" {
		if endDay, err = model.ParseDay(end); err != nil {
			return analysis.Query{}, err
		}
	}
	q := analysis.Lookback(ticker, endDay, cfg.Bands.LookbackDays, mode, fill)
	if start != "" {
		if q.Start, err = model.ParseDay(start); err != nil {
			return analysis.Query{}, err
		}
	}
	return q, nil
}
