package render

import (
	"fmt"
	"io"

	"BandWatch/internal/model"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
)

// Places is the number of decimals shown for prices.
const Places = 4

// FormatValue rounds a defined value to Places decimals; undefined renders as "-".
func FormatValue(f model.NullFloat) string {
	if !f.Valid {
		return "-"
	}
	return decimal.NewFromFloat(f.Float64).Round(Places).StringFixed(Places)
}

// NewTableWriter creates the default table style.
func NewTableWriter(autoIndex bool) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetAutoIndex(autoIndex)
	return t
}

// Table renders the last tail rows of bs (all rows when tail <= 0).
func Table(bs *model.BandSeries, tail int) string {
	t := NewTableWriter(false)
	t.SetTitle(fmt.Sprintf("%s  mode=%s fill=%s window=%d/%d x%s", bs.Symbol, bs.Mode, bs.Fill,
		bs.Params.MinMaxWindow, bs.Params.RangeWindow, decimal.NewFromFloat(bs.Params.Multiplier).String()))
	t.AppendHeader(table.Row{"Date", "Value", "Min", "Max", "Range", "AvgRange", "Upper", "Middle", "Lower", "Position"})

	rows := bs.Rows
	if tail > 0 && len(rows) > tail {
		rows = rows[len(rows)-tail:]
	}
	for i := range rows {
		r := &rows[i]
		t.AppendRow(table.Row{
			r.Time.Format(model.DayLayout),
			FormatValue(r.Value),
			FormatValue(r.Min),
			FormatValue(r.Max),
			FormatValue(r.Range),
			FormatValue(r.AvgRange),
			FormatValue(r.Upper),
			FormatValue(r.Middle),
			FormatValue(r.Lower),
			string(r.Position()),
		})
	}

	cols := make([]table.ColumnConfig, 0, 8)
	for n := 2; n <= 9; n++ {
		cols = append(cols, table.ColumnConfig{Number: n, Align: text.AlignRight})
	}
	t.SetColumnConfigs(cols)
	t.AppendFooter(table.Row{"rows", len(bs.Rows)})
	return t.Render()
}

// WriteTable writes Table(bs, tail) followed by a newline.
func WriteTable(w io.Writer, bs *model.BandSeries, tail int) error {
	_, err := fmt.Fprintln(w, Table(bs, tail))
	return err
}
