package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"BandWatch/internal/analysis"
	"BandWatch/internal/model"
	"BandWatch/internal/notifier"

	"github.com/robfig/cron/v3"
)

// Options are the defaults applied to scheduled and on-demand reports.
type Options struct {
	Watchlist    []string
	LookbackDays int
	Mode         model.Mode
	Fill         model.Fill
	DailyCron    string
}

// Scheduler manages the daily band report and chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Analyzer *analysis.Analyzer
	Notifier notifier.Notifier
	Options  Options
	Ctx      context.Context
	Now      func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, a *analysis.Analyzer, n notifier.Notifier, opts Options) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Analyzer: a,
		Notifier: n,
		Options:  opts,
		Ctx:      ctx,
		Now:      time.Now,
	}
}

// RegisterAll registers the daily report task.
func (s *Scheduler) RegisterAll() error {
	if _, err := s.Cron.AddFunc(s.Options.DailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunDailyNow executes the daily task immediately (for RUN_ON_START).
func (s *Scheduler) RunDailyNow() {
	s.dailyTask()
}

func (s *Scheduler) dailyTask() {
	log.Printf("[INFO] running daily band report for %d tickers", len(s.Options.Watchlist))
	for _, ticker := range s.Options.Watchlist {
		if s.Ctx.Err() != nil {
			return
		}
		s.trySend(s.report(s.Ctx, ticker))
	}
}

// report computes the bands for ticker over the lookback window and formats
// the result or the failure.
func (s *Scheduler) report(ctx context.Context, ticker string) string {
	q := analysis.Lookback(ticker, s.Now(), s.Options.LookbackDays, s.Options.Mode, s.Options.Fill)
	res, err := s.Analyzer.Analyze(ctx, q)
	if err != nil {
		log.Printf("[ERROR] analyze %s: %v", ticker, err)
		return notifier.FormatError(ticker, err)
	}
	return notifier.FormatBandReport(res.Series)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return usage
	}
	switch fields[0] {
	case "/bands":
		if len(fields) < 2 {
			return "usage: /bands TICKER or /bands A/B"
		}
		return s.report(ctx, fields[1])
	case "/watchlist":
		return notifier.FormatWatchlist(s.Options.Watchlist, s.Options.DailyCron)
	case "/report":
		s.dailyTask()
		return ""
	default:
		return usage
	}
}

const usage = "Available commands:\n• /bands TICKER (or A/B)\n• /watchlist\n• /report"

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
