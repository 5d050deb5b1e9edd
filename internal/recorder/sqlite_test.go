package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"BandWatch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "bands.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func sampleRun(ticker string, at time.Time) *Run {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return &Run{
		RecordedAt: at,
		Ticker:     ticker,
		Source:     "static",
		Start:      day,
		End:        day.AddDate(0, 0, 1),
		Series: &model.BandSeries{
			Symbol: ticker,
			Mode:   model.ModeHighLow,
			Fill:   model.FillNone,
			Params: model.DefaultBandParams,
			Rows: []model.BandRow{
				{Time: day, Value: model.Float(10), Range: model.Float(1.5)},
				{Time: day.AddDate(0, 0, 1), Value: model.Float(11), Min: model.Float(9), Max: model.Float(12),
					Range: model.Float(2), AvgRange: model.Float(1.75), Upper: model.Float(15.5),
					Lower: model.Float(5.5), Middle: model.Float(10.5)},
			},
		},
	}
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	r := setupRecorder(t)
	ctx := context.Background()

	run := sampleRun("SPY", time.Unix(1714600000, 0))
	require.NoError(t, r.RecordRun(ctx, run))
	require.NotEmpty(t, run.ID)

	got, err := r.LoadRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "SPY", got.Ticker)
	assert.Equal(t, model.ModeHighLow, got.Series.Mode)
	assert.Equal(t, model.DefaultBandParams, got.Series.Params)
	assert.True(t, run.Start.Equal(got.Start))
	require.Len(t, got.Series.Rows, 2)

	first := got.Series.Rows[0]
	assert.False(t, first.Upper.Valid, "undefined stays NULL")
	assert.Equal(t, 1.5, first.Range.Float64)
	assert.Equal(t, run.Series.Rows[1], got.Series.Rows[1])
}

func TestSQLiteRecorder_ListRuns(t *testing.T) {
	r := setupRecorder(t)
	ctx := context.Background()

	base := time.Unix(1714600000, 0)
	for i, ticker := range []string{"A", "B", "C"} {
		require.NoError(t, r.RecordRun(ctx, sampleRun(ticker, base.Add(time.Duration(i)*time.Minute))))
	}

	runs, err := r.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "C", runs[0].Ticker)
	assert.Equal(t, "B", runs[1].Ticker)
	assert.Equal(t, 2, runs[0].Rows)
	assert.Equal(t, model.FillNone, runs[0].Fill)
}

func TestSQLiteRecorder_LoadUnknown(t *testing.T) {
	r := setupRecorder(t)
	_, err := r.LoadRun(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestNoopRecorder(t *testing.T) {
	n := NewNoopRecorder()
	ctx := context.Background()
	assert.NoError(t, n.RecordRun(ctx, sampleRun("A", time.Now())))
	runs, err := n.ListRuns(ctx, 5)
	assert.NoError(t, err)
	assert.Empty(t, runs)
	_, err = n.LoadRun(ctx, "x")
	assert.ErrorIs(t, err, ErrRunNotFound)
}
