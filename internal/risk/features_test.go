package risk

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// makeBars generates a clean, gap-free daily bar sequence with slightly
// varying prices and volumes so features are non-degenerate.
func makeBars(symbol string, n int) []PriceBar {
	bars := make([]PriceBar, 0, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	price := 100.0
	for i := 0; i < n; i++ {
		// Deterministic wiggle keeps returns and volumes non-constant
		delta := float64(i%5) - 2.0
		price += delta * 0.1
		volume := 1_000_000 + float64(i%7)*50_000

		bars = append(bars, PriceBar{
			Date:   start.AddDate(0, 0, i),
			Symbol: symbol,
			Open:   price - 0.5,
			High:   price + 1.0,
			Low:    price - 1.0,
			Close:  price,
			Volume: volume,
		})
	}
	return bars
}

func TestPriceBar(t *testing.T) {
	t.Run("IsValid", func(t *testing.T) {
		tests := []struct {
			name  string
			bar   PriceBar
			valid bool
		}{
			{
				name:  "valid bar",
				bar:   PriceBar{Open: 100, High: 105, Low: 95, Close: 102, Volume: 1000},
				valid: true,
			},
			{
				name:  "negative volume",
				bar:   PriceBar{Open: 100, High: 105, Low: 95, Close: 102, Volume: -1},
				valid: false,
			},
			{
				name:  "high below low",
				bar:   PriceBar{Open: 100, High: 90, Low: 95, Close: 96, Volume: 1000},
				valid: false,
			},
			{
				name:  "zero close",
				bar:   PriceBar{Open: 100, High: 105, Low: 95, Close: 0, Volume: 1000},
				valid: false,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.valid, tt.bar.IsValid())
			})
		}
	})

	t.Run("Return", func(t *testing.T) {
		bar := PriceBar{Close: 110}
		assert.InDelta(t, 0.10, bar.Return(100), 1e-9)
		assert.Equal(t, 0.0, bar.Return(0))
		assert.Equal(t, 0.0, bar.Return(-5))
	})
}

func TestComputeFeatures(t *testing.T) {
	t.Run("emits exactly N-W+1 rows for clean input", func(t *testing.T) {
		const n, w = 90, 30
		rows := ComputeFeatures(makeBars("TSCO.L", n), w, testLogger())
		require.Len(t, rows, n-w+1)

		for _, row := range rows {
			assert.Equal(t, "TSCO.L", row.Symbol)
			assert.True(t, row.IsValid(), "row for %s should be valid", row.Date)
			assert.GreaterOrEqual(t, row.LiquidityRatio, 0.0)
		}
	})

	t.Run("empty input emits empty sequence", func(t *testing.T) {
		rows := ComputeFeatures(nil, 30, testLogger())
		assert.Empty(t, rows)
	})

	t.Run("fewer bars than window emits nothing", func(t *testing.T) {
		rows := ComputeFeatures(makeBars("BP.L", 29), 30, testLogger())
		assert.Empty(t, rows)
	})

	t.Run("malformed bars are skipped and computation continues", func(t *testing.T) {
		const n, w = 40, 10
		bars := makeBars("BP.L", n)

		// Negative volume and a non-monotonic date in the middle
		bars[5].Volume = -100
		bars[12].Date = bars[10].Date

		rows := ComputeFeatures(bars, w, testLogger())
		// Two bars dropped, remainder still produces a full series
		require.Len(t, rows, (n-2)-w+1)
	})

	t.Run("zero average volume skips the row", func(t *testing.T) {
		const n, w = 12, 10
		bars := makeBars("BP.L", n)
		for i := range bars {
			bars[i].Volume = 0
		}

		rows := ComputeFeatures(bars, w, testLogger())
		assert.Empty(t, rows)
	})

	t.Run("crisis flag set below threshold", func(t *testing.T) {
		const n, w = 31, 30
		bars := makeBars("TSCO.L", n)
		for i := range bars {
			bars[i].Volume = 1_000_000
		}
		// Final day trades at 30% of its rolling average
		bars[n-1].Volume = 300_000

		rows := ComputeFeatures(bars, w, testLogger())
		require.NotEmpty(t, rows)

		last := rows[len(rows)-1]
		assert.Less(t, last.LiquidityRatio, CrisisThreshold)
		assert.True(t, last.Crisis)
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		bars := makeBars("TSCO.L", 60)
		first := ComputeFeatures(bars, 30, testLogger())
		second := ComputeFeatures(bars, 30, testLogger())
		assert.Equal(t, first, second)
	})
}

func TestComputeBaseline(t *testing.T) {
	t.Run("means over history", func(t *testing.T) {
		rows := []FeatureRow{
			{LiquidityRatio: 0.8, Volatility: 0.01},
			{LiquidityRatio: 1.2, Volatility: 0.03},
		}

		base := ComputeBaseline(rows)
		assert.InDelta(t, 1.0, base.LiquidityRatio, 1e-9)
		assert.InDelta(t, 0.02, base.Volatility, 1e-9)
		assert.True(t, base.IsValid())
	})

	t.Run("empty history yields unusable baseline", func(t *testing.T) {
		base := ComputeBaseline(nil)
		assert.False(t, base.IsValid())
	})
}

func TestComputeMarketContext(t *testing.T) {
	bars := makeBars("^FTSE", 30)
	ctx := ComputeMarketContext(bars, testLogger())

	assert.Equal(t, "^FTSE", ctx.Symbol)
	assert.GreaterOrEqual(t, ctx.Volatility, 0.0)

	t.Run("too little history", func(t *testing.T) {
		ctx := ComputeMarketContext(makeBars("^FTSE", 3), testLogger())
		assert.Zero(t, ctx.Volatility)
		assert.Zero(t, ctx.Momentum)
	})
}
