package marketdata

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lserisk/internal/risk"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSimulatedSource(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	t.Run("generates valid weekday bars", func(t *testing.T) {
		source := NewSimulatedSource(42, testLogger())

		bars, err := source.Fetch(ctx, "TSCO.L", start, end)
		require.NoError(t, err)
		require.NotEmpty(t, bars)

		for _, bar := range bars {
			assert.True(t, bar.IsValid(), "bar on %s must be valid", bar.Date)
			assert.Equal(t, "TSCO.L", bar.Symbol)
			wd := bar.Date.Weekday()
			assert.NotEqual(t, time.Saturday, wd)
			assert.NotEqual(t, time.Sunday, wd)
		}

		// Strictly increasing dates, one bar per trading day
		for i := 1; i < len(bars); i++ {
			assert.True(t, bars[i].Date.After(bars[i-1].Date))
		}
	})

	t.Run("deterministic for same seed", func(t *testing.T) {
		a, err := NewSimulatedSource(7, testLogger()).Fetch(ctx, "BP.L", start, end)
		require.NoError(t, err)
		b, err := NewSimulatedSource(7, testLogger()).Fetch(ctx, "BP.L", start, end)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("symbols diverge under same seed", func(t *testing.T) {
		source := NewSimulatedSource(7, testLogger())
		a, err := source.Fetch(ctx, "TSCO.L", start, end)
		require.NoError(t, err)
		b, err := NewSimulatedSource(7, testLogger()).Fetch(ctx, "BP.L", start, end)
		require.NoError(t, err)
		require.Equal(t, len(a), len(b))
		assert.NotEqual(t, a[0].Close, b[0].Close)
	})

	t.Run("stress period drains volume", func(t *testing.T) {
		source := NewSimulatedSource(42, testLogger())
		bars, err := source.Fetch(ctx, "TSCO.L", start, end)
		require.NoError(t, err)
		require.Greater(t, len(bars), 2*stressDays)

		calm := bars[:len(bars)-stressDays]
		stressed := bars[len(bars)-5:]

		var calmAvg, stressedAvg float64
		for _, b := range calm {
			calmAvg += b.Volume
		}
		calmAvg /= float64(len(calm))
		for _, b := range stressed {
			stressedAvg += b.Volume
		}
		stressedAvg /= float64(len(stressed))

		assert.Less(t, stressedAvg, calmAvg,
			"late-period volume should sit below the calm average")
	})

	t.Run("rejects inverted date range", func(t *testing.T) {
		source := NewSimulatedSource(42, testLogger())
		_, err := source.Fetch(ctx, "TSCO.L", end, start)
		assert.Error(t, err)
	})
}

func TestBarCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bars.csv")

	bars := []risk.PriceBar{
		{
			Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Symbol: "TSCO.L",
			Open: 280.5, High: 285.0, Low: 279.1, Close: 283.2, Volume: 12_500_000,
		},
		{
			Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Symbol: "TSCO.L",
			Open: 283.2, High: 284.7, Low: 280.0, Close: 281.9, Volume: 9_800_000,
		},
	}

	require.NoError(t, SaveBars(bars, path))

	loaded, err := LoadBars(path, testLogger())
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	for i := range bars {
		assert.Equal(t, bars[i].Symbol, loaded[i].Symbol)
		assert.True(t, bars[i].Date.Equal(loaded[i].Date))
		assert.InDelta(t, bars[i].Close, loaded[i].Close, 1e-4)
		assert.InDelta(t, bars[i].Volume, loaded[i].Volume, 0.5)
	}
}

func TestLoadBarsSkipsBadRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bars.csv")

	content := "Date,Symbol,Open,High,Low,Close,Volume\n" +
		"2024-03-04,TSCO.L,280.5,285.0,279.1,283.2,12500000\n" +
		"not-a-date,TSCO.L,1,2,0.5,1.5,100\n" +
		"2024-03-05,TSCO.L,283.2,284.7,280.0,281.9,9800000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	bars, err := LoadBars(path, testLogger())
	require.NoError(t, err)
	assert.Len(t, bars, 2)
}

func TestSaveBarsRejectsEmpty(t *testing.T) {
	err := SaveBars(nil, filepath.Join(t.TempDir(), "bars.csv"))
	assert.Error(t, err)
}
