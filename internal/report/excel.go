package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"lserisk/internal/risk"
)

// SaveWorkbook writes an Excel report with a Features sheet holding the
// scored series and an Assessment sheet holding the run's final alerts.
// The workbook mirrors the CSV outputs for analysts who work in Excel.
func SaveWorkbook(features []risk.ScoredFeature, assessments []risk.RiskAssessment, outputPath string) error {
	if len(features) == 0 && len(assessments) == 0 {
		return fmt.Errorf("nothing to export")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeFeatureSheet(f, features); err != nil {
		return fmt.Errorf("write features sheet: %w", err)
	}
	if err := writeAssessmentSheet(f, assessments); err != nil {
		return fmt.Errorf("write assessment sheet: %w", err)
	}

	// Drop the default sheet so the workbook opens on Features
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	return nil
}

func writeFeatureSheet(f *excelize.File, features []risk.ScoredFeature) error {
	const sheet = "Features"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	header := []interface{}{"Date", "Symbol", "Liquidity Ratio", "Volatility", "Avg Volume", "Crisis", "Risk Score", "Band"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	if err := boldRow(f, sheet, len(header)); err != nil {
		return err
	}

	for i, row := range features {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			row.Date.Format("2006-01-02"),
			row.Symbol,
			row.LiquidityRatio,
			row.Volatility,
			row.AvgVolume,
			row.Crisis,
			row.Score,
			risk.BandFor(row.Score).String(),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	return f.SetColWidth(sheet, "A", "H", 14)
}

func writeAssessmentSheet(f *excelize.File, assessments []risk.RiskAssessment) error {
	const sheet = "Assessment"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{"Timestamp", "Security", "Risk Score", "Band", "Recommendation", "Bloomberg Code"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	if err := boldRow(f, sheet, len(header)); err != nil {
		return err
	}

	for i, a := range assessments {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			a.Timestamp.Format("2006-01-02 15:04:05"),
			a.Security,
			a.Score,
			a.Band.String(),
			a.Recommendation,
			a.BloombergCode,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	return f.SetColWidth(sheet, "A", "F", 22)
}

// boldRow applies a bold style to the header row of a sheet
func boldRow(f *excelize.File, sheet string, cols int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}

	return f.SetCellStyle(sheet, "A1", last, style)
}
