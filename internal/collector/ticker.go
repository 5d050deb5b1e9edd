package collector

import (
	"fmt"
	"strings"

	"BandWatch/internal/model"
)

// Ticker is a plain symbol or an A/B ratio of two symbols.
type Ticker struct {
	Numerator   string
	Denominator string // empty for a single instrument
}

func (t Ticker) IsRatio() bool { return t.Denominator != "" }

func (t Ticker) String() string {
	if t.IsRatio() {
		return t.Numerator + "/" + t.Denominator
	}
	return t.Numerator
}

// ParseTicker parses "AAPL" or "MSFT/AAPL". Symbols are trimmed and upper-cased.
func ParseTicker(s string) (Ticker, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	for i := range parts {
		parts[i] = strings.ToUpper(strings.TrimSpace(parts[i]))
		if parts[i] == "" {
			return Ticker{}, fmt.Errorf("%w: %q", model.ErrInvalidTicker, s)
		}
	}
	switch len(parts) {
	case 1:
		return Ticker{Numerator: parts[0]}, nil
	case 2:
		return Ticker{Numerator: parts[0], Denominator: parts[1]}, nil
	default:
		return Ticker{}, fmt.Errorf("%w: %q has more than one '/'", model.ErrInvalidTicker, s)
	}
}
