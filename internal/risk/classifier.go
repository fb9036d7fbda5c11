package risk

import (
	"fmt"
	"time"
)

// Recommendation text per band. The wording is part of the alert contract
// consumed by downstream trading workflows and must not change casually.
const (
	recommendationRed   = "LIQUIDATE POSITIONS | Hedge with FTSE futures"
	recommendationAmber = "REDUCE EXPOSURE | Buy put options on BP.L/TSCO.L"
	recommendationGreen = "MONITOR LIQUIDITY CONDITIONS"
)

// BandFor maps a risk score to its alert band. Thresholds are inclusive on
// the lower bound of each band.
func BandFor(score float64) Band {
	switch {
	case score >= RedThreshold:
		return BandRed
	case score >= AmberThreshold:
		return BandAmber
	default:
		return BandGreen
	}
}

// RecommendationFor returns the actionable recommendation for a band
func RecommendationFor(band Band) string {
	switch band {
	case BandRed:
		return recommendationRed
	case BandAmber:
		return recommendationAmber
	default:
		return recommendationGreen
	}
}

// BloombergCode formats the synthetic Bloomberg code for a score, e.g.
// "LIQ_RISK AMBER 78%" for score 78.45.
func BloombergCode(score float64) string {
	return fmt.Sprintf("LIQ_RISK %s %.0f%%", BandFor(score), score)
}

// Classify converts a risk score into an immutable assessment for the given
// security. The classification itself is stateless; the timestamp is
// supplied by the caller for determinism in tests.
func Classify(score float64, security string, now time.Time) RiskAssessment {
	score = clamp(score, 0, 100)
	band := BandFor(score)

	return RiskAssessment{
		Timestamp:      now.UTC(),
		Security:       security,
		Score:          score,
		Band:           band,
		Recommendation: RecommendationFor(band),
		BloombergCode:  BloombergCode(score),
	}
}
