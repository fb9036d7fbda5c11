// Package report renders pipeline output for human consumption: the
// terminal alert banner and dashboard, plus CSV and Excel report files.
// It is a pure sink; nothing here feeds back into the scoring core.
package report

import (
	"fmt"
	"io"

	"lserisk/internal/risk"
)

// Renderer consumes the feature series and the latest assessment and
// produces a rendered view. Implementations must not mutate their inputs.
type Renderer interface {
	Render(features []risk.ScoredFeature, assessment risk.RiskAssessment)
}

// ANSI escape codes for the terminal colour scheme: red for critical
// alerts, yellow for warnings, green for normal conditions.
const (
	ansiRed    = "\033[91m"
	ansiGreen  = "\033[92m"
	ansiYellow = "\033[93m"
	ansiBlue   = "\033[94m"
	ansiWhite  = "\033[97m"
	ansiReset  = "\033[0m"
)

const bannerRule = "============================================================"

// TerminalRenderer writes the alert banner and text dashboard to a writer
type TerminalRenderer struct {
	w         io.Writer
	colors    bool
	dashboard bool
	market    risk.MarketContext
}

// NewTerminalRenderer creates a terminal renderer. Colour output and the
// dashboard section can each be switched off.
func NewTerminalRenderer(w io.Writer, colors, dashboard bool) *TerminalRenderer {
	return &TerminalRenderer{w: w, colors: colors, dashboard: dashboard}
}

// SetMarketContext attaches index-level context shown in the dashboard
func (r *TerminalRenderer) SetMarketContext(market risk.MarketContext) {
	r.market = market
}

// Render writes the alert banner for the assessment followed by the
// dashboard of recent liquidity trends
func (r *TerminalRenderer) Render(features []risk.ScoredFeature, assessment risk.RiskAssessment) {
	r.RenderAlert(assessment)
	if r.dashboard {
		r.RenderDashboard(features)
	}
}

// RenderAlert writes the fixed-width alert banner. The uncoloured layout is
// a compatibility contract: field names, padding, the 60-character rules and
// the two-decimal score must not change.
func (r *TerminalRenderer) RenderAlert(a risk.RiskAssessment) {
	band := r.bandColor(a.Band)

	fmt.Fprintf(r.w, "\n%s\n", r.paint(bannerRule, band))
	fmt.Fprintf(r.w, "%s\n", r.paint(fmt.Sprintf("BLOOMBERG LIQUIDITY ALERT - %s LEVEL", a.Band), band))
	fmt.Fprintf(r.w, "%s\n", r.paint(bannerRule, band))
	fmt.Fprintf(r.w, "TIMESTAMP:    %s UTC\n", a.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(r.w, "SECURITY:     %s\n", a.Security)
	fmt.Fprintf(r.w, "RISK SCORE:   %.2f%%\n", a.Score)
	fmt.Fprintf(r.w, "%s\n", r.paint(fmt.Sprintf("RECOMMENDATION: %s", a.Recommendation), band))
	fmt.Fprintf(r.w, "%s\n", r.paint(fmt.Sprintf("BLOOMBERG CODE: %s", a.BloombergCode), band))
	fmt.Fprintf(r.w, "%s\n\n", r.paint(bannerRule, band))
}

// RenderStartupBanner writes the platform identification banner shown once
// at process start
func (r *TerminalRenderer) RenderStartupBanner() {
	fmt.Fprintf(r.w, "%s\n", r.paint(bannerRule, ansiYellow))
	fmt.Fprintf(r.w, "%s\n", r.paint("LIQUIDITY RISK INTELLIGENCE PLATFORM", ansiYellow))
	fmt.Fprintf(r.w, "%s\n", r.paint(bannerRule, ansiYellow))
	fmt.Fprintf(r.w, "%s\n", r.paint("Real-time liquidity crisis detection system", ansiWhite))
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "%s\n", r.paint("WARNING: THIS IS A DEMONSTRATION SYSTEM", ansiRed))
	fmt.Fprintf(r.w, "%s\n", r.paint("   Not for actual trading decisions", ansiWhite))
	fmt.Fprintln(r.w)
}

// bandColor maps an alert band to its banner colour
func (r *TerminalRenderer) bandColor(band risk.Band) string {
	switch band {
	case risk.BandRed:
		return ansiRed
	case risk.BandAmber:
		return ansiYellow
	default:
		return ansiGreen
	}
}

// paint wraps text in a colour escape when colours are enabled
func (r *TerminalRenderer) paint(text, color string) string {
	if !r.colors {
		return text
	}
	return color + text + ansiReset
}
