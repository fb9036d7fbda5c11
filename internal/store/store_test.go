package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lserisk/internal/risk"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBarRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	bars := []risk.PriceBar{
		{
			Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Symbol: "TSCO.L",
			Open: 280.5, High: 285.0, Low: 279.1, Close: 283.2, Volume: 12_500_000,
		},
		{
			Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Symbol: "TSCO.L",
			Open: 283.2, High: 284.7, Low: 280.0, Close: 281.9, Volume: 9_800_000,
		},
		{
			Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Symbol: "BP.L",
			Open: 470.0, High: 475.5, Low: 468.2, Close: 473.1, Volume: 30_000_000,
		},
	}

	require.NoError(t, s.SaveBars(ctx, bars))

	loaded, err := s.LoadBars(ctx, "TSCO.L")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.True(t, loaded[0].Date.Before(loaded[1].Date))
	assert.InDelta(t, 283.2, loaded[0].Close, 1e-9)
}

func TestBarUpsertKeepsOnePerDay(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	first := []risk.PriceBar{{Date: day, Symbol: "TSCO.L", Open: 280, High: 285, Low: 279, Close: 283, Volume: 1000}}
	second := []risk.PriceBar{{Date: day, Symbol: "TSCO.L", Open: 281, High: 286, Low: 280, Close: 284, Volume: 2000}}

	require.NoError(t, s.SaveBars(ctx, first))
	require.NoError(t, s.SaveBars(ctx, second))

	loaded, err := s.LoadBars(ctx, "TSCO.L")
	require.NoError(t, err)
	require.Len(t, loaded, 1, "one bar per instrument per trading day")
	assert.InDelta(t, 284.0, loaded[0].Close, 1e-9)
}

func TestFeatureRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rows := []risk.FeatureRow{
		{
			Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Symbol: "BP.L",
			LiquidityRatio: 0.35, Volatility: 0.04, AvgVolume: 20_000_000, Crisis: true,
		},
		{
			Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Symbol: "BP.L",
			LiquidityRatio: 1.1, Volatility: 0.012, AvgVolume: 21_000_000,
		},
	}

	require.NoError(t, s.SaveFeatures(ctx, rows))

	loaded, err := s.LoadFeatures(ctx, "BP.L")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	// Ordered by date regardless of insert order
	assert.False(t, loaded[0].Crisis)
	assert.True(t, loaded[1].Crisis)
	assert.InDelta(t, 0.35, loaded[1].LiquidityRatio, 1e-9)
}

func TestSymbols(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rows := []risk.FeatureRow{
		{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Symbol: "TSCO.L", LiquidityRatio: 1, Volatility: 0.01, AvgVolume: 1},
		{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Symbol: "BP.L", LiquidityRatio: 1, Volatility: 0.01, AvgVolume: 1},
	}
	require.NoError(t, s.SaveFeatures(ctx, rows))

	symbols, err := s.Symbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"BP.L", "TSCO.L"}, symbols)
}

func TestEmptySavesAreNoOps(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	assert.NoError(t, s.SaveBars(ctx, nil))
	assert.NoError(t, s.SaveFeatures(ctx, nil))

	rows, err := s.LoadFeatures(ctx, "TSCO.L")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
