// Package marketdata supplies daily OHLCV price bars for the securities
// tracked by the liquidity monitor. It provides a live Yahoo Finance source,
// a deterministic simulated source for offline demo runs, and CSV
// persistence for replaying saved data.
package marketdata

import (
	"context"
	"time"

	"lserisk/internal/risk"
)

// Source supplies ordered daily price bars for one instrument over a date
// range. A fetch failure is fatal for the run; retry policy is left to the
// underlying provider.
type Source interface {
	Fetch(ctx context.Context, symbol string, start, end time.Time) ([]risk.PriceBar, error)
}
