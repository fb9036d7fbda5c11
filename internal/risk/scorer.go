package risk

import (
	"log/slog"
	"math"
)

// Scorer converts feature rows into risk scores on the 0-100 scale.
//
// The score is a fixed linear weighting of two normalized components:
//
//	score = clamp(0, 100, 70*liquidityDeficit + 30*volatilityChange)
//
// where liquidityDeficit is the relative shortfall of the row's liquidity
// ratio against the baseline ratio and volatilityChange is the relative
// excess of the row's volatility over the baseline volatility, both clamped
// to [0,1]. The baseline is fixed at construction, so Score is a pure
// function of its input row.
type Scorer struct {
	baseline Baseline
	logger   *slog.Logger
}

// NewScorer creates a scorer normalizing against the given baseline
func NewScorer(baseline Baseline, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{baseline: baseline, logger: logger}
}

// Baseline returns the normalization reference in use
func (s *Scorer) Baseline() Baseline {
	return s.baseline
}

// Score computes the risk score for a single feature row.
//
// Scoring fails closed: an unusable baseline (zero or non-finite components)
// or non-finite inputs yield the GREEN sentinel score 0 with a logged
// anomaly rather than propagating a numeric error.
//
// A row below the crisis threshold is floored at the AMBER boundary so a
// liquidity crisis can never classify as GREEN regardless of baseline.
func (s *Scorer) Score(row FeatureRow) float64 {
	if !s.baseline.IsValid() ||
		math.IsNaN(s.baseline.LiquidityRatio) || math.IsInf(s.baseline.LiquidityRatio, 0) ||
		math.IsNaN(s.baseline.Volatility) || math.IsInf(s.baseline.Volatility, 0) {
		s.logger.Warn("unusable scoring baseline, failing closed to score 0",
			"symbol", row.Symbol,
			"baseline_ratio", s.baseline.LiquidityRatio,
			"baseline_volatility", s.baseline.Volatility,
		)
		return 0
	}

	if math.IsNaN(row.LiquidityRatio) || math.IsInf(row.LiquidityRatio, 0) ||
		math.IsNaN(row.Volatility) || math.IsInf(row.Volatility, 0) {
		s.logger.Warn("non-finite feature values, failing closed to score 0",
			"symbol", row.Symbol,
			"date", row.Date.Format("2006-01-02"),
		)
		return 0
	}

	deficit := clamp01((s.baseline.LiquidityRatio - row.LiquidityRatio) / s.baseline.LiquidityRatio)
	volChange := clamp01((row.Volatility - s.baseline.Volatility) / s.baseline.Volatility)

	score := 100 * (WeightLiquidity*deficit + WeightVolatility*volChange)

	// Crisis escalation: a ratio below the crisis threshold is at minimum AMBER
	if row.LiquidityRatio < CrisisThreshold && score < AmberThreshold {
		score = AmberThreshold
	}

	return clamp(score, 0, 100)
}

// ScoreSeries scores every row of a feature history in order
func (s *Scorer) ScoreSeries(rows []FeatureRow) []ScoredFeature {
	if len(rows) == 0 {
		return nil
	}

	scored := make([]ScoredFeature, 0, len(rows))
	for _, row := range rows {
		scored = append(scored, ScoredFeature{
			FeatureRow: row,
			Score:      s.Score(row),
		})
	}
	return scored
}

// ScorePair combines two per-security scores into a single score for a
// cross-security assessment: a 20-point base plus 40% of each component
// score, clamped to [0,100].
func ScorePair(scoreA, scoreB float64) float64 {
	if math.IsNaN(scoreA) || math.IsInf(scoreA, 0) ||
		math.IsNaN(scoreB) || math.IsInf(scoreB, 0) {
		return 0
	}
	return clamp(20+0.4*scoreA+0.4*scoreB, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}
