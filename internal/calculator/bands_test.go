package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"BandWatch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func closeSeries(values ...float64) *model.PriceSeries {
	s := &model.PriceSeries{Symbol: "TEST"}
	for i, v := range values {
		s.Points = append(s.Points, model.PricePoint{Time: day0.AddDate(0, 0, i), Value: v})
	}
	return s
}

func hlSeries(n int) *model.PriceSeries {
	s := &model.PriceSeries{Symbol: "TEST", HighLow: true}
	for i := 0; i < n; i++ {
		base := 100 + 3*math.Sin(float64(i)/2) + float64(i%4)
		s.Points = append(s.Points, model.PricePoint{
			Time:  day0.AddDate(0, 0, i),
			Value: base,
			High:  base + 1 + float64(i%3)*0.5,
			Low:   base - 1 - float64(i%5)*0.25,
		})
	}
	return s
}

func TestCalculate_EmptySeries(t *testing.T) {
	bs, err := Calculate(&model.PriceSeries{Symbol: "X"}, model.ModeClose, model.DefaultBandParams)
	assert.Nil(t, bs)
	assert.True(t, errors.Is(err, model.ErrInsufficientData))

	_, err = Calculate(nil, model.ModeClose, model.DefaultBandParams)
	assert.ErrorIs(t, err, model.ErrInsufficientData)
}

func TestCalculate_ShortSeriesAllBandsUndefined(t *testing.T) {
	for n := 1; n < 10; n++ {
		values := make([]float64, n)
		for i := range values {
			values[i] = float64(10 + i)
		}
		for _, tc := range []struct {
			mode   model.Mode
			series *model.PriceSeries
		}{
			{model.ModeClose, closeSeries(values...)},
			{model.ModeHighLow, hlSeries(n)},
		} {
			bs, err := Calculate(tc.series, tc.mode, model.DefaultBandParams)
			require.NoError(t, err)
			require.Len(t, bs.Rows, n)
			for i, r := range bs.Rows {
				assert.False(t, r.Upper.Valid, "n=%d i=%d upper", n, i)
				assert.False(t, r.Lower.Valid, "n=%d i=%d lower", n, i)
				assert.False(t, r.Middle.Valid, "n=%d i=%d middle", n, i)
				assert.True(t, r.Value.Valid)
			}
		}
	}
}

func TestCalculate_HighLowUpperBand(t *testing.T) {
	s := hlSeries(40)
	bs, err := Calculate(s, model.ModeHighLow, model.DefaultBandParams)
	require.NoError(t, err)
	require.Len(t, bs.Rows, 40)

	for i, r := range bs.Rows {
		pt := s.Points[i]
		assert.True(t, r.Range.Valid, "range defined from index 0")
		assert.InDelta(t, pt.High-pt.Low, r.Range.Float64, 1e-12)
		assert.Equal(t, i >= 2, r.AvgRange.Valid, "avg range at %d", i)
		if i < 9 {
			assert.False(t, r.Max.Valid)
			assert.False(t, r.Upper.Valid)
			continue
		}

		maxHigh, minLow := math.Inf(-1), math.Inf(1)
		for j := i - 9; j <= i; j++ {
			maxHigh = math.Max(maxHigh, s.Points[j].High)
			minLow = math.Min(minLow, s.Points[j].Low)
		}
		var sum float64
		for j := i - 2; j <= i; j++ {
			sum += s.Points[j].High - s.Points[j].Low
		}
		mean := sum / 3

		assert.InDelta(t, maxHigh, r.Max.Float64, 1e-9)
		assert.InDelta(t, minLow, r.Min.Float64, 1e-9)
		assert.InDelta(t, maxHigh+2*mean, r.Upper.Float64, 1e-9)
		assert.InDelta(t, minLow-2*mean, r.Lower.Float64, 1e-9)
	}
}

func TestCalculate_MiddleIsExactMidpoint(t *testing.T) {
	bs, err := Calculate(hlSeries(60), model.ModeHighLow, model.DefaultBandParams)
	require.NoError(t, err)
	for i, r := range bs.Rows {
		if r.Upper.Valid && r.Lower.Valid {
			require.True(t, r.Middle.Valid)
			if r.Middle.Float64 != (r.Upper.Float64+r.Lower.Float64)/2 {
				t.Errorf("row %d: middle %v != (%v+%v)/2", i, r.Middle.Float64, r.Upper.Float64, r.Lower.Float64)
			}
		} else {
			assert.False(t, r.Middle.Valid)
		}
	}
}

func TestCalculate_CloseOnlyRangeIsZero(t *testing.T) {
	s := closeSeries(5, 7, 6, 9, 12, 11, 10, 14, 13, 15, 16, 12, 8, 9, 11)
	bs, err := Calculate(s, model.ModeClose, model.DefaultBandParams)
	require.NoError(t, err)

	for i, r := range bs.Rows {
		require.True(t, r.Range.Valid)
		assert.Equal(t, 0.0, r.Range.Float64)
		if i >= 2 {
			assert.Equal(t, 0.0, r.AvgRange.Float64)
		}
		if i >= 9 {
			assert.Equal(t, r.Max.Float64, r.Upper.Float64)
			assert.Equal(t, r.Min.Float64, r.Lower.Float64)
		}
	}
	last := bs.Last()
	assert.Equal(t, 16.0, last.Max.Float64)
	assert.Equal(t, 8.0, last.Min.Float64)
	assert.Equal(t, 12.0, last.Middle.Float64)
}

func TestCalculate_Idempotent(t *testing.T) {
	s := hlSeries(50)
	a, err := Calculate(s, model.ModeHighLow, model.DefaultBandParams)
	require.NoError(t, err)
	b, err := Calculate(s, model.ModeHighLow, model.DefaultBandParams)
	require.NoError(t, err)
	require.Equal(t, len(a.Rows), len(b.Rows))
	for i := range a.Rows {
		for c, cell := range a.Rows[i].Derived() {
			other := b.Rows[i].Derived()[c]
			assert.Equal(t, cell.Valid, other.Valid)
			assert.Equal(t, math.Float64bits(cell.Float64), math.Float64bits(other.Float64))
		}
	}
}

func TestCalculate_DoesNotMutateInput(t *testing.T) {
	s := closeSeries(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11)
	before := append([]model.PricePoint(nil), s.Points...)
	_, err := Calculate(s, model.ModeClose, model.DefaultBandParams)
	require.NoError(t, err)
	assert.Equal(t, before, s.Points)
}

func TestCalculate_MissingValueInWindow(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21}
	values[12] = math.NaN()
	bs, err := Calculate(closeSeries(values...), model.ModeClose, model.DefaultBandParams)
	require.NoError(t, err)

	// Every 10-day window that covers index 12 is undefined.
	for i := 12; i <= 20; i++ {
		assert.False(t, bs.Rows[i].Max.Valid, "max at %d", i)
	}
	assert.True(t, bs.Rows[11].Max.Valid)
	assert.False(t, bs.Rows[12].Value.Valid)
	assert.False(t, bs.Rows[12].Range.Valid)
	assert.True(t, bs.Rows[15].AvgRange.Valid)
}

func TestCalculate_HighLowRequiresFields(t *testing.T) {
	_, err := Calculate(closeSeries(1, 2, 3), model.ModeHighLow, model.DefaultBandParams)
	assert.ErrorIs(t, err, model.ErrMissingFields)
}

func TestCalculate_InvalidParams(t *testing.T) {
	s := closeSeries(1, 2, 3)
	_, err := Calculate(s, model.ModeClose, model.BandParams{MinMaxWindow: 0, RangeWindow: 3, Multiplier: 2})
	assert.ErrorIs(t, err, model.ErrInvalidParams)
	_, err = Calculate(s, model.ModeClose, model.BandParams{MinMaxWindow: 10, RangeWindow: -1, Multiplier: 2})
	assert.ErrorIs(t, err, model.ErrInvalidParams)
	_, err = Calculate(s, model.Mode("weird"), model.DefaultBandParams)
	assert.ErrorIs(t, err, model.ErrInvalidParams)
}

func TestCalculate_CustomWindows(t *testing.T) {
	s := &model.PriceSeries{Symbol: "T", HighLow: true}
	for i, hl := range [][2]float64{{10, 8}, {12, 9}, {11, 10}, {15, 11}} {
		s.Points = append(s.Points, model.PricePoint{Time: day0.AddDate(0, 0, i), Value: (hl[0] + hl[1]) / 2, High: hl[0], Low: hl[1]})
	}
	bs, err := Calculate(s, model.ModeHighLow, model.BandParams{MinMaxWindow: 2, RangeWindow: 2, Multiplier: 1})
	require.NoError(t, err)

	last := bs.Last()
	assert.Equal(t, 15.0, last.Max.Float64)
	assert.Equal(t, 10.0, last.Min.Float64)
	assert.Equal(t, 2.5, last.AvgRange.Float64) // mean(1, 4)
	assert.Equal(t, 17.5, last.Upper.Float64)
	assert.Equal(t, 7.5, last.Lower.Float64)
	assert.False(t, bs.Rows[0].Upper.Valid)
	assert.True(t, bs.Rows[1].Upper.Valid)
}
