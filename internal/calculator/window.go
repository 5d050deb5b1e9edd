package calculator

import (
	"math"

	"BandWatch/internal/model"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// rolling applies agg over each backward window ending at i. Entries before
// the first full window, or whose window holds a missing value, are NaN.
func rolling(xs []float64, window int, agg func([]float64) float64) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		w := xs[i-window+1 : i+1]
		if anyMissing(w) {
			out[i] = math.NaN()
			continue
		}
		out[i] = agg(w)
	}
	return out
}

func rollingMin(xs []float64, window int) []float64 {
	return rolling(xs, window, floats.Min)
}

func rollingMax(xs []float64, window int) []float64 {
	return rolling(xs, window, floats.Max)
}

func rollingMean(xs []float64, window int) []float64 {
	return rolling(xs, window, func(w []float64) float64 { return stat.Mean(w, nil) })
}

func anyMissing(xs []float64) bool {
	for _, v := range xs {
		if model.Missing(v) {
			return true
		}
	}
	return false
}
