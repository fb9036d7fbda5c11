package risk

import (
	"time"
)

// Band represents the alert band for a risk assessment
type Band int

const (
	// BandGreen indicates normal conditions - routine monitoring only
	BandGreen Band = iota
	// BandAmber indicates elevated risk - exposure should be reduced
	BandAmber
	// BandRed indicates a critical liquidity crisis - immediate action required
	BandRed
)

// String returns the string representation of the band
func (b Band) String() string {
	switch b {
	case BandGreen:
		return "GREEN"
	case BandAmber:
		return "AMBER"
	case BandRed:
		return "RED"
	default:
		return "unknown"
	}
}

// Alerting thresholds on the 0-100 risk score scale.
// Thresholds are inclusive on the lower bound of each band:
// score == 70.0 classifies as AMBER, score == 85.0 as RED.
const (
	// AmberThreshold is the lower bound of the AMBER band
	AmberThreshold = 70.0
	// RedThreshold is the lower bound of the RED band
	RedThreshold = 85.0

	// CrisisThreshold is the liquidity ratio below which a security is
	// considered to be in a liquidity crisis
	CrisisThreshold = 0.4

	// DefaultWindowDays is the standard rolling window for liquidity calculations
	DefaultWindowDays = 30

	// Score weighting: 70% liquidity deficit, 30% volatility change
	WeightLiquidity  = 0.7
	WeightVolatility = 0.3
)

// PriceBar represents one security's OHLCV data for a single trading day.
// Bars are immutable once fetched and ordered by date, one bar per security
// per trading day.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Symbol string    `json:"symbol"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// IsValid checks if the price bar data is internally consistent
func (pb PriceBar) IsValid() bool {
	return pb.Open > 0 && pb.High > 0 && pb.Low > 0 && pb.Close > 0 &&
		pb.Volume >= 0 &&
		pb.High >= pb.Low && pb.High >= pb.Open && pb.High >= pb.Close &&
		pb.Low <= pb.Open && pb.Low <= pb.Close
}

// Return calculates the daily close-to-close return
func (pb PriceBar) Return(prevClose float64) float64 {
	if prevClose <= 0 {
		return 0
	}
	return (pb.Close - prevClose) / prevClose
}

// FeatureRow contains the derived liquidity features for one security on one
// trading day. Rows are recomputed from bars on every run, never mutated.
type FeatureRow struct {
	Date           time.Time `json:"date"`
	Symbol         string    `json:"symbol"`
	LiquidityRatio float64   `json:"liquidity_ratio"` // volume / rolling average volume
	Volatility     float64   `json:"volatility"`      // stdev of daily returns in window
	AvgVolume      float64   `json:"avg_volume"`      // rolling average volume
	Crisis         bool      `json:"crisis"`          // LiquidityRatio below CrisisThreshold
}

// IsValid checks if the feature row holds computable values
func (fr FeatureRow) IsValid() bool {
	return fr.Symbol != "" && !fr.Date.IsZero() &&
		fr.LiquidityRatio >= 0 && fr.Volatility >= 0 && fr.AvgVolume > 0
}

// Baseline is the normalization reference for the risk scorer.
// Both components are arithmetic means over the feature history supplied to
// ComputeBaseline, which makes scoring deterministic for identical input.
type Baseline struct {
	LiquidityRatio float64 `json:"liquidity_ratio"`
	Volatility     float64 `json:"volatility"`
}

// IsValid checks if the baseline can be used for normalization
func (b Baseline) IsValid() bool {
	return b.LiquidityRatio > 0 && b.Volatility > 0
}

// ScoredFeature pairs a feature row with its computed risk score
type ScoredFeature struct {
	FeatureRow
	Score float64 `json:"score"`
}

// RiskAssessment is the final, immutable output of one evaluation
type RiskAssessment struct {
	Timestamp      time.Time `json:"timestamp"`
	Security       string    `json:"security"`
	Score          float64   `json:"score"` // always in [0,100]
	Band           Band      `json:"band"`
	Recommendation string    `json:"recommendation"`
	BloombergCode  string    `json:"bloomberg_code"`
}

// IsValid checks basic assessment invariants
func (ra RiskAssessment) IsValid() bool {
	return ra.Security != "" && !ra.Timestamp.IsZero() &&
		ra.Score >= 0 && ra.Score <= 100 && ra.BloombergCode != ""
}

// MarketContext carries index-level features used for dashboard context.
// These do not feed the risk score.
type MarketContext struct {
	Symbol     string  `json:"symbol"`
	Volatility float64 `json:"volatility"` // 5-day return volatility
	Momentum   float64 `json:"momentum"`   // 10-day return
}
