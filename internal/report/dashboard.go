package report

import (
	"fmt"
	"sort"

	"lserisk/internal/risk"
)

// Number of most recent rows shown per security in the text dashboard
const dashboardRows = 5

// RenderDashboard writes a text dashboard of recent liquidity trends: the
// latest rows sorted newest first, colour-coded by crisis threshold and
// alert band, plus the market context line when available.
func (r *TerminalRenderer) RenderDashboard(features []risk.ScoredFeature) {
	fmt.Fprintf(r.w, "%s\n", r.paint("[TEXT DASHBOARD] Recent liquidity trends:", ansiBlue))

	if len(features) == 0 {
		fmt.Fprintln(r.w, "  no feature data available")
		return
	}

	recent := make([]risk.ScoredFeature, len(features))
	copy(recent, features)
	sort.Slice(recent, func(i, j int) bool {
		if recent[i].Date.Equal(recent[j].Date) {
			return recent[i].Symbol < recent[j].Symbol
		}
		return recent[i].Date.After(recent[j].Date)
	})
	if len(recent) > dashboardRows {
		recent = recent[:dashboardRows]
	}

	fmt.Fprintf(r.w, "%-12s %-8s %-12s %-12s %-12s\n", "Date", "Symbol", "Liq Ratio", "Volatility", "Risk Score")
	fmt.Fprintf(r.w, "%s\n", "--------------------------------------------------------")

	for _, row := range recent {
		ratioColor := ansiGreen
		if row.LiquidityRatio < risk.CrisisThreshold {
			ratioColor = ansiRed
		}

		scoreColor := ansiGreen
		switch risk.BandFor(row.Score) {
		case risk.BandRed:
			scoreColor = ansiRed
		case risk.BandAmber:
			scoreColor = ansiYellow
		}

		fmt.Fprintf(r.w, "%-12s %-8s %s %-12s %s\n",
			row.Date.Format("2006-01-02"),
			row.Symbol,
			r.paint(fmt.Sprintf("%-12.2f", row.LiquidityRatio), ratioColor),
			fmt.Sprintf("%.4f", row.Volatility),
			r.paint(fmt.Sprintf("%.2f%%", row.Score), scoreColor),
		)
	}

	if r.market.Symbol != "" {
		fmt.Fprintf(r.w, "\nMarket context (%s): volatility %.4f, momentum %+.2f%%\n",
			r.market.Symbol, r.market.Volatility, r.market.Momentum*100)
	}
}
