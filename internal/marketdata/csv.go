package marketdata

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"lserisk/internal/risk"
)

// csvHeader is the canonical bar file layout
var csvHeader = []string{"Date", "Symbol", "Open", "High", "Low", "Close", "Volume"}

// SaveBars writes price bars to a CSV file, sorted by date then symbol,
// creating the output directory if needed
func SaveBars(bars []risk.PriceBar, outputPath string) error {
	if len(bars) == 0 {
		return fmt.Errorf("no bars to save")
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

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	sorted := make([]risk.PriceBar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Symbol < sorted[j].Symbol
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	for _, bar := range sorted {
		record := []string{
			bar.Date.Format("2006-01-02"),
			bar.Symbol,
			strconv.FormatFloat(bar.Open, 'f', 4, 64),
			strconv.FormatFloat(bar.High, 'f', 4, 64),
			strconv.FormatFloat(bar.Low, 'f', 4, 64),
			strconv.FormatFloat(bar.Close, 'f', 4, 64),
			strconv.FormatFloat(bar.Volume, 'f', 0, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write CSV record for %s: %w", bar.Symbol, err)
		}
	}

	return nil
}

// LoadBars reads price bars from a CSV file written by SaveBars.
// Unparseable records are skipped with a logged warning so a single bad row
// cannot sink a replay run.
func LoadBars(csvPath string, logger *slog.Logger) ([]risk.PriceBar, error) {
	if logger == nil {
		logger = slog.Default()
	}

	file, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV records: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV file: %s", csvPath)
	}

	dataStart := 0
	if isHeaderRow(records[0]) {
		dataStart = 1
	}

	var bars []risk.PriceBar
	for i := dataStart; i < len(records); i++ {
		bar, err := parseBarRecord(records[i], i+1)
		if err != nil {
			logger.Warn("failed to parse CSV record",
				"file", filepath.Base(csvPath),
				"line", i+1,
				"error", err,
			)
			continue
		}
		bars = append(bars, bar)
	}

	return bars, nil
}

// parseBarRecord parses one CSV record into a PriceBar
func parseBarRecord(record []string, lineNum int) (risk.PriceBar, error) {
	if len(record) < len(csvHeader) {
		return risk.PriceBar{}, fmt.Errorf("insufficient columns (line %d): expected %d, got %d",
			lineNum, len(csvHeader), len(record))
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(record[0]))
	if err != nil {
		return risk.PriceBar{}, fmt.Errorf("parse date (line %d): %w", lineNum, err)
	}

	symbol := strings.TrimSpace(strings.ToUpper(record[1]))
	if symbol == "" {
		return risk.PriceBar{}, fmt.Errorf("empty symbol (line %d)", lineNum)
	}

	fields := make([]float64, 5)
	names := []string{"open", "high", "low", "close", "volume"}
	for i, name := range names {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[i+2]), 64)
		if err != nil {
			return risk.PriceBar{}, fmt.Errorf("parse %s (line %d): %w", name, lineNum, err)
		}
		fields[i] = v
	}

	return risk.PriceBar{
		Date:   date,
		Symbol: symbol,
		Open:   fields[0],
		High:   fields[1],
		Low:    fields[2],
		Close:  fields[3],
		Volume: fields[4],
	}, nil
}

// isHeaderRow checks if the first record is a header line
func isHeaderRow(record []string) bool {
	if len(record) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(record[0]))
	if strings.Contains(first, "date") {
		return true
	}
	_, err := time.Parse("2006-01-02", first)
	return err != nil
}
