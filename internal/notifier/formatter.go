package notifier

import (
	"errors"
	"fmt"
	"strings"

	"BandWatch/internal/model"
	"BandWatch/internal/render"
)

var positionLabels = map[model.Position]string{
	model.PositionAbove:   "⬆️ above upper band",
	model.PositionBelow:   "⬇️ below lower band",
	model.PositionInside:  "↔️ inside the channel",
	model.PositionUnknown: "❔ bands not yet computable",
}

// FormatBandReport formats the latest row of a band series into a Telegram message.
func FormatBandReport(bs *model.BandSeries) string {
	var b strings.Builder

	last := bs.Last()
	if last == nil {
		b.WriteString(fmt.Sprintf("📉 <b>%s</b>\n\nno rows to report (fill=%s)", bs.Symbol, bs.Fill))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("📊 <b>%s bands</b> | %s\n\n", bs.Symbol, last.Time.Format(model.DayLayout)))
	b.WriteString(fmt.Sprintf("Price: %s\n", render.FormatValue(last.Value)))
	b.WriteString(fmt.Sprintf("Upper: %s\n", render.FormatValue(last.Upper)))
	b.WriteString(fmt.Sprintf("Middle: %s\n", render.FormatValue(last.Middle)))
	b.WriteString(fmt.Sprintf("Lower: %s\n\n", render.FormatValue(last.Lower)))

	b.WriteString(fmt.Sprintf("%d-day range: %s ~ %s\n", bs.Params.MinMaxWindow,
		render.FormatValue(last.Min), render.FormatValue(last.Max)))
	b.WriteString(fmt.Sprintf("%d-day avg range: %s\n", bs.Params.RangeWindow, render.FormatValue(last.AvgRange)))
	b.WriteString(fmt.Sprintf("Mode: %s | %d rows\n\n", bs.Mode, len(bs.Rows)))

	b.WriteString(positionLabels[last.Position()])
	return b.String()
}

// FormatError formats a failed request for the chat.
func FormatError(ticker string, err error) string {
	var reason string
	switch {
	case errors.Is(err, model.ErrDataUnavailable):
		reason = "no data for the requested range"
	case errors.Is(err, model.ErrInsufficientData):
		reason = "series is empty"
	case errors.Is(err, model.ErrMissingFields):
		reason = "source has no high/low data"
	case errors.Is(err, model.ErrInvalidTicker), errors.Is(err, model.ErrInvalidRange):
		reason = "invalid request"
	default:
		reason = "data source error"
	}
	return fmt.Sprintf("❌ %s: %s\n<code>%v</code>", ticker, reason, err)
}

// FormatWatchlist lists the tickers covered by the daily report.
func FormatWatchlist(tickers []string, cron string) string {
	var b strings.Builder
	b.WriteString("📋 <b>Watchlist</b>\n\n")
	for _, t := range tickers {
		b.WriteString(fmt.Sprintf("• %s\n", t))
	}
	b.WriteString(fmt.Sprintf("\nDaily report: <code>%s</code>", cron))
	return b.String()
}
