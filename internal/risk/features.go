package risk

import (
	"log/slog"
	"math"
)

// Market context window sizes, matching the reference methodology:
// volatility over 5 trading days, momentum over 10.
const (
	contextVolatilityDays = 5
	contextMomentumDays   = 10
)

// ComputeFeatures derives liquidity features from an ordered sequence of
// price bars for a single security.
//
// One FeatureRow is emitted per bar once a full rolling window of history
// exists: a clean sequence of N bars with window W produces exactly N-W+1
// rows. Fewer than W bars produce no rows; an empty input produces an empty
// (nil) result, not an error.
//
// Malformed bars (non-monotonic date, negative volume, inconsistent OHLC)
// are skipped with a logged data-quality warning and computation continues
// for subsequent dates. A window whose rolling average volume is zero emits
// no row for that date, mirroring the NULLIF guard of the reference SQL.
func ComputeFeatures(bars []PriceBar, window int, logger *slog.Logger) []FeatureRow {
	if logger == nil {
		logger = slog.Default()
	}
	if window < 2 || len(bars) == 0 {
		return nil
	}

	clean := sanitizeBars(bars, logger)
	if len(clean) < window {
		return nil
	}

	var rows []FeatureRow
	for i := window - 1; i < len(clean); i++ {
		windowBars := clean[i-window+1 : i+1]
		curr := clean[i]

		avgVolume := meanVolume(windowBars)
		if avgVolume <= 0 {
			logger.Warn("zero rolling average volume, skipping feature row",
				"symbol", curr.Symbol,
				"date", curr.Date.Format("2006-01-02"),
			)
			continue
		}

		ratio := curr.Volume / avgVolume
		volatility := returnVolatility(windowBars)

		rows = append(rows, FeatureRow{
			Date:           curr.Date,
			Symbol:         curr.Symbol,
			LiquidityRatio: ratio,
			Volatility:     volatility,
			AvgVolume:      avgVolume,
			Crisis:         ratio < CrisisThreshold,
		})
	}

	return rows
}

// ComputeBaseline derives the scorer's normalization reference from a
// feature history: the arithmetic mean of liquidity ratio and volatility
// over all rows. By construction the mean liquidity ratio of a long history
// sits near 1.0 (each ratio is volume over its own trailing average).
//
// An empty history yields a zero baseline, which the scorer rejects and
// fails closed on.
func ComputeBaseline(rows []FeatureRow) Baseline {
	if len(rows) == 0 {
		return Baseline{}
	}

	var ratioSum, volSum float64
	for _, row := range rows {
		ratioSum += row.LiquidityRatio
		volSum += row.Volatility
	}

	n := float64(len(rows))
	return Baseline{
		LiquidityRatio: ratioSum / n,
		Volatility:     volSum / n,
	}
}

// ComputeMarketContext derives index-level context (short-horizon volatility
// and momentum) from the market index bars. The result is informational
// only; it never feeds the risk score.
func ComputeMarketContext(indexBars []PriceBar, logger *slog.Logger) MarketContext {
	if logger == nil {
		logger = slog.Default()
	}

	clean := sanitizeBars(indexBars, logger)
	if len(clean) == 0 {
		return MarketContext{}
	}

	ctx := MarketContext{Symbol: clean[len(clean)-1].Symbol}

	if len(clean) > contextVolatilityDays {
		ctx.Volatility = returnVolatility(clean[len(clean)-contextVolatilityDays-1:])
	}
	if len(clean) > contextMomentumDays {
		prev := clean[len(clean)-1-contextMomentumDays].Close
		ctx.Momentum = clean[len(clean)-1].Return(prev)
	}

	return ctx
}

// sanitizeBars filters out malformed bars, logging each skip.
// Dates must be strictly increasing relative to the last kept bar.
func sanitizeBars(bars []PriceBar, logger *slog.Logger) []PriceBar {
	clean := make([]PriceBar, 0, len(bars))

	for _, bar := range bars {
		switch {
		case bar.Volume < 0:
			logger.Warn("skipping bar with negative volume",
				"symbol", bar.Symbol,
				"date", bar.Date.Format("2006-01-02"),
				"volume", bar.Volume,
			)
		case !bar.IsValid():
			logger.Warn("skipping malformed bar",
				"symbol", bar.Symbol,
				"date", bar.Date.Format("2006-01-02"),
			)
		case len(clean) > 0 && !bar.Date.After(clean[len(clean)-1].Date):
			logger.Warn("skipping bar with non-monotonic date",
				"symbol", bar.Symbol,
				"date", bar.Date.Format("2006-01-02"),
				"previous", clean[len(clean)-1].Date.Format("2006-01-02"),
			)
		default:
			clean = append(clean, bar)
		}
	}

	return clean
}

// meanVolume returns the average traded volume over the given bars
func meanVolume(bars []PriceBar) float64 {
	if len(bars) == 0 {
		return 0
	}

	total := 0.0
	for _, bar := range bars {
		total += bar.Volume
	}
	return total / float64(len(bars))
}

// returnVolatility computes the standard deviation of daily close-to-close
// returns over the given bars
func returnVolatility(bars []PriceBar) float64 {
	if len(bars) < 2 {
		return 0
	}

	var returns []float64
	for i := 1; i < len(bars); i++ {
		ret := bars[i].Return(bars[i-1].Close)
		if !math.IsNaN(ret) && !math.IsInf(ret, 0) {
			returns = append(returns, ret)
		}
	}

	if len(returns) == 0 {
		return 0
	}

	sum := 0.0
	for _, ret := range returns {
		sum += ret
	}
	mean := sum / float64(len(returns))

	sumSquared := 0.0
	for _, ret := range returns {
		sumSquared += (ret - mean) * (ret - mean)
	}

	return math.Sqrt(sumSquared / float64(len(returns)))
}
