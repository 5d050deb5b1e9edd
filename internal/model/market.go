package model

import (
	"fmt"
	"math"
	"time"
)

// Mode selects which price fields feed the band calculation.
type Mode string

const (
	ModeClose   Mode = "close"
	ModeHighLow Mode = "highlow"
)

// ParseMode maps a user-supplied mode name to a Mode. Empty means close-only.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeClose:
		return ModeClose, nil
	case ModeHighLow, "hilo":
		return ModeHighLow, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// PricePoint is one trading-day observation. Value is the adjusted close when
// the source has one, else the close. Missing observations are NaN.
type PricePoint struct {
	Time  time.Time
	Value float64
	High  float64
	Low   float64
}

// PriceSeries holds the daily observations of one instrument or ratio.
type PriceSeries struct {
	Symbol  string
	Points  []PricePoint
	HighLow bool // every point carries High and Low
}

// Len returns the number of points.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// Values extracts the Value column.
func (s *PriceSeries) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Highs extracts the High column.
func (s *PriceSeries) Highs() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.High
	}
	return out
}

// Lows extracts the Low column.
func (s *PriceSeries) Lows() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Low
	}
	return out
}

// TradingDay truncates t to midnight UTC of its calendar date.
func TradingDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayLayout is the date format accepted from users.
const DayLayout = "2006-01-02"

// ParseDay parses a YYYY-MM-DD date as a UTC trading day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", ErrInvalidRange, s)
	}
	return t, nil
}

// Missing reports whether v denotes an absent observation.
func Missing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
