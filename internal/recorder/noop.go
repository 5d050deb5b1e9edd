package recorder

import "context"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ context.Context, _ *Run) error { return nil }

func (n *NoopRecorder) ListRuns(_ context.Context, _ int) ([]RunSummary, error) {
	return []RunSummary{}, nil
}

func (n *NoopRecorder) LoadRun(_ context.Context, _ string) (*Run, error) {
	return nil, ErrRunNotFound
}

func (n *NoopRecorder) Close() error { return nil }
