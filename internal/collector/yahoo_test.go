package collector

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"BandWatch/internal/calculator"
	"BandWatch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yahooServer(t *testing.T, status int, body string) (*YahooFetcher, *url.URL) {
	t.Helper()
	got := new(url.URL)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = *r.URL
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	return f, got
}

func TestYahooFetcher_FetchDaily(t *testing.T) {
	// 09:30 New York on each day
	ts := func(day int) int64 { return time.Date(2024, 1, day, 14, 30, 0, 0, time.UTC).Unix() }
	body := fmt.Sprintf(`{"chart":{"result":[{
		"meta":{"gmtoffset":-18000},
		"timestamp":[%d,%d,%d,%d],
		"indicators":{
			"quote":[{"high":[11,12,null,14],"low":[9,10,null,12],"close":[10,11,null,13]}],
			"adjclose":[{"adjclose":[9.5,10.5,null,null]}]
		}}],"error":null}}`, ts(2), ts(3), ts(4), ts(5))
	f, req := yahooServer(t, http.StatusOK, body)

	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	s, err := f.FetchDaily(context.Background(), "SPX", start, end)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/%5EGSPC", req.EscapedPath())
	assert.Equal(t, strconv.FormatInt(start.Unix(), 10), req.Query().Get("period1"))
	assert.Equal(t, strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10), req.Query().Get("period2"))
	assert.Equal(t, "1d", req.Query().Get("interval"))

	require.Equal(t, 3, s.Len(), "null close bar skipped")
	assert.True(t, s.HighLow)
	assert.Equal(t, []float64{9.5, 10.5, 13}, s.Values(), "adjusted close preferred")
	assert.InDeltaSlice(t, []float64{11 * 0.95, 12 * 10.5 / 11, 14}, s.Highs(), 1e-9)
	assert.InDeltaSlice(t, []float64{9 * 0.95, 10 * 10.5 / 11, 12}, s.Lows(), 1e-9)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), s.Points[2].Time)
}

func TestYahooFetcher_NoHighLow(t *testing.T) {
	ts := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC).Unix()
	body := fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%d],"indicators":{"quote":[{"close":[10]}]}}],"error":null}}`, ts)
	f, _ := yahooServer(t, http.StatusOK, body)

	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	s, err := f.FetchDaily(context.Background(), "X", day, day)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())
	assert.False(t, s.HighLow)
	assert.True(t, math.IsNaN(s.Points[0].High))
}

func TestYahooFetcher_UnknownSymbolIsEmpty(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`
	f, _ := yahooServer(t, http.StatusNotFound, body)

	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	s, err := f.FetchDaily(context.Background(), "NOPE", day, day)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestYahooFetcher_ServerError(t *testing.T) {
	f, _ := yahooServer(t, http.StatusInternalServerError, "oops")
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	_, err := f.FetchDaily(context.Background(), "X", day, day)
	assert.ErrorContains(t, err, "status 500")
}

func TestYahooFetcher_AdjustedHighLowShareBasis(t *testing.T) {
	// a 10% dividend adjustment on every bar
	n := 12
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var stamps, highs, lows, closes, adjs []string
	for i := 0; i < n; i++ {
		stamps = append(stamps, strconv.FormatInt(start.AddDate(0, 0, i).Add(15*time.Hour).Unix(), 10))
		highs = append(highs, "101")
		lows = append(lows, "99")
		closes = append(closes, "100")
		adjs = append(adjs, "90")
	}
	join := func(xs []string) string { return strings.Join(xs, ",") }
	body := fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{
		"quote":[{"high":[%s],"low":[%s],"close":[%s]}],
		"adjclose":[{"adjclose":[%s]}]}}],"error":null}}`,
		join(stamps), join(highs), join(lows), join(closes), join(adjs))
	f, _ := yahooServer(t, http.StatusOK, body)

	s, err := f.FetchDaily(context.Background(), "DIV", start, start.AddDate(0, 0, n-1))
	require.NoError(t, err)
	require.Equal(t, n, s.Len())

	bands, err := calculator.Calculate(s, model.ModeHighLow, model.DefaultBandParams)
	require.NoError(t, err)
	last := bands.Last()
	assert.InDelta(t, 90, last.Value.Float64, 1e-9)
	assert.InDelta(t, 90.9, last.Max.Float64, 1e-9)
	assert.InDelta(t, 89.1, last.Min.Float64, 1e-9)
	assert.Equal(t, model.PositionInside, last.Position())
}
