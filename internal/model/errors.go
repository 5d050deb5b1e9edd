package model

import (
	"errors"
	"fmt"
)

var (
	ErrDataUnavailable  = errors.New("data unavailable")
	ErrInsufficientData = errors.New("insufficient data")
	ErrMissingFields    = errors.New("missing high/low fields")
	ErrInvalidTicker    = errors.New("invalid ticker")
	ErrInvalidRange     = errors.New("invalid date range")
	ErrInvalidParams    = errors.New("invalid band parameters")
)

// Side names which leg of a request produced no data.
type Side string

const (
	SideSingle      Side = "single"
	SideNumerator   Side = "numerator"
	SideDenominator Side = "denominator"
	SideRatio       Side = "ratio"
)

// DataUnavailableError reports an empty series for one side of a request.
type DataUnavailableError struct {
	Symbol string
	Side   Side
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("%s: no data for %s (%s)", ErrDataUnavailable, e.Symbol, e.Side)
}

func (e *DataUnavailableError) Is(target error) bool {
	return target == ErrDataUnavailable
}
