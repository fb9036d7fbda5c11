// Package risk implements the liquidity risk scoring pipeline for London
// Stock Exchange securities.
//
// The pipeline is a linear transformation over daily price bars:
//
//  1. Feature Computation: rolling-window liquidity ratio (volume relative to
//     its trailing average) and return volatility, one row per trading day
//     once enough history exists.
//  2. Risk Scorer: a fixed 70/30 linear weighting of normalized liquidity
//     deficit and volatility change, clamped to [0,100]. Normalization is
//     relative to a Baseline computed from the feature history, so identical
//     input always produces identical scores.
//  3. Alert Classifier: static thresholds map the score to GREEN/AMBER/RED
//     with an actionable recommendation and a synthetic Bloomberg code.
//
// # Architecture
//
//   - types.go: core data structures and scoring constants
//   - features.go: rolling-window feature derivation with local recovery
//     from malformed bars
//   - scorer.go: score computation and pair scoring
//   - classifier.go: band classification and recommendation text
//
// # Usage Example
//
//	rows := risk.ComputeFeatures(bars, risk.DefaultWindowDays, slog.Default())
//	base := risk.ComputeBaseline(rows)
//	scorer := risk.NewScorer(base, slog.Default())
//	scored := scorer.ScoreSeries(rows)
//	assessment := risk.Classify(scored[len(scored)-1].Score, "TSCO.L", time.Now())
//
// All functions are pure with respect to their inputs; there is no shared
// mutable state between invocations.
package risk
