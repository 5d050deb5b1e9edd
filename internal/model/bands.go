package model

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// NullFloat is a float that may be "not yet computable".
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float wraps v, treating NaN and infinities as undefined.
func Float(v float64) NullFloat {
	if Missing(v) {
		return NullFloat{}
	}
	return NullFloat{Float64: v, Valid: true}
}

// Or returns the value, or def when undefined.
func (n NullFloat) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Float64
}

// NaN returns the value, or NaN when undefined.
func (n NullFloat) NaN() float64 {
	return n.Or(math.NaN())
}

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

func (n *NullFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = NullFloat{}
		return nil
	}
	if err := json.Unmarshal(b, &n.Float64); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Fill selects how undefined entries are presented.
type Fill string

const (
	FillNone     Fill = "none"
	FillBackward Fill = "backfill"
	FillDrop     Fill = "drop"
)

// ParseFill maps a user-supplied policy name to a Fill. Empty means none.
func ParseFill(s string) (Fill, error) {
	switch Fill(s) {
	case "", FillNone:
		return FillNone, nil
	case FillBackward, "bfill":
		return FillBackward, nil
	case FillDrop:
		return FillDrop, nil
	default:
		return "", fmt.Errorf("unknown fill policy %q", s)
	}
}

// BandParams configures the window sizes and the band-width multiplier.
type BandParams struct {
	MinMaxWindow int     `json:"min_max_window" yaml:"min_max_window"`
	RangeWindow  int     `json:"range_window" yaml:"range_window"`
	Multiplier   float64 `json:"multiplier" yaml:"multiplier"`
}

// DefaultBandParams is the 10-day extrema, 3-day average range, 2x width channel.
var DefaultBandParams = BandParams{MinMaxWindow: 10, RangeWindow: 3, Multiplier: 2}

// BandRow is one output row aligned with an input PricePoint.
type BandRow struct {
	Time     time.Time `json:"time"`
	Value    NullFloat `json:"value"`
	Min      NullFloat `json:"min"`
	Max      NullFloat `json:"max"`
	Range    NullFloat `json:"range"`
	AvgRange NullFloat `json:"avg_range"`
	Upper    NullFloat `json:"upper"`
	Lower    NullFloat `json:"lower"`
	Middle   NullFloat `json:"middle"`
}

// Derived returns pointers to the computed columns, in display order.
func (r *BandRow) Derived() []*NullFloat {
	return []*NullFloat{&r.Min, &r.Max, &r.Range, &r.AvgRange, &r.Upper, &r.Lower, &r.Middle}
}

// Complete reports whether every derived column is defined.
func (r *BandRow) Complete() bool {
	for _, f := range r.Derived() {
		if !f.Valid {
			return false
		}
	}
	return true
}

// BandSeries is the calculator output. It is never mutated after creation.
type BandSeries struct {
	Symbol string     `json:"symbol"`
	Mode   Mode       `json:"mode"`
	Fill   Fill       `json:"fill"`
	Params BandParams `json:"params"`
	Rows   []BandRow  `json:"rows"`
}

// Last returns the most recent row, or nil for an empty series.
func (b *BandSeries) Last() *BandRow {
	if b == nil || len(b.Rows) == 0 {
		return nil
	}
	return &b.Rows[len(b.Rows)-1]
}

// Position describes where a price sits relative to the channel.
type Position string

const (
	PositionAbove   Position = "ABOVE_UPPER"
	PositionBelow   Position = "BELOW_LOWER"
	PositionInside  Position = "INSIDE"
	PositionUnknown Position = "UNKNOWN"
)

// Position classifies the row's value against its bands.
func (r *BandRow) Position() Position {
	if !r.Value.Valid || !r.Upper.Valid || !r.Lower.Valid {
		return PositionUnknown
	}
	switch {
	case r.Value.Float64 > r.Upper.Float64:
		return PositionAbove
	case r.Value.Float64 < r.Lower.Float64:
		return PositionBelow
	default:
		return PositionInside
	}
}
