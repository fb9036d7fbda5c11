package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"lserisk/internal/risk"
)

// YahooSource fetches historical daily bars from Yahoo Finance.
// LSE symbols use the ".L" suffix (TSCO.L, BP.L); the FTSE 100 index is
// "^FTSE".
type YahooSource struct {
	logger *slog.Logger
}

// NewYahooSource creates a Yahoo Finance backed source
func NewYahooSource(logger *slog.Logger) *YahooSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &YahooSource{logger: logger}
}

// Fetch downloads daily bars for the symbol between start and end.
// Bars with incomplete quote data are skipped with a warning; the result is
// sorted by date.
func (s *YahooSource) Fetch(ctx context.Context, symbol string, start, end time.Time) ([]risk.PriceBar, error) {
	s.logger.InfoContext(ctx, "fetching market data",
		"symbol", symbol,
		"start", start.Format("2006-01-02"),
		"end", end.Format("2006-01-02"),
	)

	params := &chart.Params{
		Symbol:   symbol,
		Interval: datetime.OneDay,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
	}

	iter := chart.Get(params)

	var bars []risk.PriceBar
	for iter.Next() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("fetch %s cancelled: %w", symbol, ctx.Err())
		default:
		}

		b := iter.Bar()
		open, _ := b.Open.Float64()
		high, _ := b.High.Float64()
		low, _ := b.Low.Float64()
		closePrice, _ := b.Close.Float64()

		bar := risk.PriceBar{
			Date:   time.Unix(int64(b.Timestamp), 0).UTC().Truncate(24 * time.Hour),
			Symbol: symbol,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: float64(b.Volume),
		}

		if !bar.IsValid() {
			s.logger.WarnContext(ctx, "skipping incomplete quote bar",
				"symbol", symbol,
				"date", bar.Date.Format("2006-01-02"),
			)
			continue
		}

		bars = append(bars, bar)
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("fetch %s from yahoo finance: %w", symbol, err)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars returned for %s between %s and %s",
			symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	s.logger.InfoContext(ctx, "fetched market data", "symbol", symbol, "bars", len(bars))
	return bars, nil
}
