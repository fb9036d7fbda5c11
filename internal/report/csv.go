package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"lserisk/internal/risk"
)

// SaveFeaturesCSV writes the scored feature series to a CSV file, sorted by
// date then symbol for stable output
func SaveFeaturesCSV(features []risk.ScoredFeature, outputPath string) error {
	if len(features) == 0 {
		return fmt.Errorf("no features to save")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Date",
		"Symbol",
		"Liquidity_Ratio",
		"Volatility",
		"Avg_Volume",
		"Crisis",
		"Risk_Score",
		"Band",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	sorted := make([]risk.ScoredFeature, len(features))
	copy(sorted, features)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Symbol < sorted[j].Symbol
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	for _, row := range sorted {
		record := []string{
			row.Date.Format("2006-01-02"),
			row.Symbol,
			strconv.FormatFloat(row.LiquidityRatio, 'f', 4, 64),
			strconv.FormatFloat(row.Volatility, 'f', 6, 64),
			strconv.FormatFloat(row.AvgVolume, 'f', 0, 64),
			strconv.FormatBool(row.Crisis),
			strconv.FormatFloat(row.Score, 'f', 2, 64),
			risk.BandFor(row.Score).String(),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write CSV record for %s: %w", row.Symbol, err)
		}
	}

	return nil
}

// SaveAssessmentsCSV appends-style report of the run's final assessments
func SaveAssessmentsCSV(assessments []risk.RiskAssessment, outputPath string) error {
	if len(assessments) == 0 {
		return fmt.Errorf("no assessments to save")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Timestamp", "Security", "Risk_Score", "Band", "Recommendation", "Bloomberg_Code"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, a := range assessments {
		record := []string{
			a.Timestamp.Format("2006-01-02 15:04:05"),
			a.Security,
			strconv.FormatFloat(a.Score, 'f', 2, 64),
			a.Band.String(),
			a.Recommendation,
			a.BloombergCode,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write CSV record for %s: %w", a.Security, err)
		}
	}

	return nil
}
