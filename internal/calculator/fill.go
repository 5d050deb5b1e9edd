package calculator

import (
	"fmt"

	"BandWatch/internal/model"
)

// ApplyFill returns a new BandSeries with the undefined-value policy applied.
// The input is left untouched.
func ApplyFill(bs *model.BandSeries, fill model.Fill) (*model.BandSeries, error) {
	out := *bs
	out.Fill = fill
	out.Rows = nil

	switch fill {
	case model.FillNone:
		out.Rows = append([]model.BandRow(nil), bs.Rows...)
	case model.FillBackward:
		out.Rows = backfill(bs.Rows)
	case model.FillDrop:
		out.Rows = make([]model.BandRow, 0, len(bs.Rows))
		for _, r := range bs.Rows {
			if r.Complete() {
				out.Rows = append(out.Rows, r)
			}
		}
	default:
		return nil, fmt.Errorf("%w: unknown fill policy %q", model.ErrInvalidParams, fill)
	}
	return &out, nil
}

// backfill replaces each undefined cell with the next defined cell below it in
// the same column. A trailing undefined run has nothing below it and stays.
func backfill(rows []model.BandRow) []model.BandRow {
	out := append([]model.BandRow(nil), rows...)
	columns := func(r *model.BandRow) []*model.NullFloat {
		return append([]*model.NullFloat{&r.Value}, r.Derived()...)
	}
	if len(out) == 0 {
		return out
	}
	next := make([]model.NullFloat, len(columns(&out[0])))
	for i := len(out) - 1; i >= 0; i-- {
		for c, cell := range columns(&out[i]) {
			if cell.Valid {
				next[c] = *cell
			} else {
				*cell = next[c]
			}
		}
	}
	return out
}
