package recorder

import (
	"context"
	"errors"
	"time"

	"BandWatch/internal/model"
)

// ErrRunNotFound is returned by LoadRun for an unknown id.
var ErrRunNotFound = errors.New("band run not found")

// Run is one computed band series together with the request that produced it.
type Run struct {
	ID         string
	RecordedAt time.Time
	Ticker     string
	Source     string
	Start      time.Time
	End        time.Time
	Series     *model.BandSeries
}

// RunSummary is the listing form of a Run.
type RunSummary struct {
	ID         string     `json:"id"`
	RecordedAt time.Time  `json:"recorded_at"`
	Ticker     string     `json:"ticker"`
	Source     string     `json:"source"`
	Mode       model.Mode `json:"mode"`
	Fill       model.Fill `json:"fill"`
	Start      time.Time  `json:"start"`
	End        time.Time  `json:"end"`
	Rows       int        `json:"rows"`
}

// Recorder archives band runs.
type Recorder interface {
	RecordRun(ctx context.Context, run *Run) error
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
	LoadRun(ctx context.Context, id string) (*Run, error)
	Close() error
}
