package collector

import (
	"context"
	"math"
	"testing"
	"time"

	"BandWatch/internal/cache"
	"BandWatch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedFetcher_ServesFromCache(t *testing.T) {
	static := NewStaticFetcher()
	src := GenerateSeries("SPY", 400, d1, 5)
	src.Points[2].Value = math.NaN()
	static.Add(src)

	f := NewCachedFetcher(static, cache.NewMemoryStore(), time.Hour)
	ctx := context.Background()
	end := d1.AddDate(0, 0, 10)

	first, err := f.FetchDaily(ctx, "SPY", d1, end)
	require.NoError(t, err)
	second, err := f.FetchDaily(ctx, "SPY", d1, end)
	require.NoError(t, err)

	assert.Equal(t, 1, static.Calls("SPY"))
	require.Equal(t, first.Len(), second.Len())
	assert.True(t, second.HighLow)
	assert.True(t, math.IsNaN(second.Points[2].Value))
	for i := range first.Points {
		assert.True(t, first.Points[i].Time.Equal(second.Points[i].Time))
		assert.Equal(t, first.Points[i].High, second.Points[i].High)
	}
	assert.Equal(t, "static+cache", f.Name())
}

func TestCachedFetcher_DoesNotCacheEmpty(t *testing.T) {
	static := NewStaticFetcher()
	f := NewCachedFetcher(static, cache.NewMemoryStore(), time.Hour)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		s, err := f.FetchDaily(ctx, "NONE", d1, d2)
		require.NoError(t, err)
		assert.Equal(t, 0, s.Len())
	}
	assert.Equal(t, 2, static.Calls("NONE"))

	// different range is a different key
	static.Add(model.PriceSeries{Symbol: "A", Points: []model.PricePoint{{Time: d1, Value: 1}}})
	_, err := f.FetchDaily(ctx, "A", d1, d1)
	require.NoError(t, err)
	_, err = f.FetchDaily(ctx, "A", d1, d2)
	require.NoError(t, err)
	assert.Equal(t, 2, static.Calls("A"))
}
