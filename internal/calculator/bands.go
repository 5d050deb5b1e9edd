package calculator

import (
	"fmt"

	"BandWatch/internal/model"
)

// Validate checks that the windows are usable.
func Validate(p model.BandParams) error {
	if p.MinMaxWindow <= 0 {
		return fmt.Errorf("%w: min/max window must be positive, got %d", model.ErrInvalidParams, p.MinMaxWindow)
	}
	if p.RangeWindow <= 0 {
		return fmt.Errorf("%w: range window must be positive, got %d", model.ErrInvalidParams, p.RangeWindow)
	}
	return nil
}

// Calculate derives the band channel for every point of series.
//
// In close-only mode the extrema come from the value column and the daily
// range is the 1-point rolling max minus the 1-point rolling min, which is
// always zero, so the bands sit on the rolling extrema. In high/low mode the
// extrema come from the high and low columns and the range is high-low.
func Calculate(series *model.PriceSeries, mode model.Mode, p model.BandParams) (*model.BandSeries, error) {
	if series.Len() == 0 {
		return nil, model.ErrInsufficientData
	}
	if err := Validate(p); err != nil {
		return nil, err
	}

	values := series.Values()
	var lows, highs, ranges []float64
	switch mode {
	case model.ModeClose:
		lows, highs = values, values
		ranges = subtract(rollingMax(values, 1), rollingMin(values, 1))
	case model.ModeHighLow:
		if !series.HighLow {
			return nil, fmt.Errorf("%w: %s", model.ErrMissingFields, series.Symbol)
		}
		lows, highs = series.Lows(), series.Highs()
		ranges = subtract(highs, lows)
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", model.ErrInvalidParams, mode)
	}

	mins := rollingMin(lows, p.MinMaxWindow)
	maxs := rollingMax(highs, p.MinMaxWindow)
	avg := rollingMean(ranges, p.RangeWindow)

	rows := make([]model.BandRow, len(values))
	for i, pt := range series.Points {
		upper := maxs[i] + p.Multiplier*avg[i]
		lower := mins[i] - p.Multiplier*avg[i]
		rows[i] = model.BandRow{
			Time:     pt.Time,
			Value:    model.Float(values[i]),
			Min:      model.Float(mins[i]),
			Max:      model.Float(maxs[i]),
			Range:    model.Float(ranges[i]),
			AvgRange: model.Float(avg[i]),
			Upper:    model.Float(upper),
			Lower:    model.Float(lower),
			Middle:   model.Float((upper + lower) / 2),
		}
	}

	return &model.BandSeries{
		Symbol: series.Symbol,
		Mode:   mode,
		Fill:   model.FillNone,
		Params: p,
		Rows:   rows,
	}, nil
}

// subtract is elementwise a-b; NaN propagates.
func subtract(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}
