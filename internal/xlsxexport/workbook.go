package xlsxexport

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"gapcheck/internal/domain"
)

// Sheet names, in workbook order.
const (
	SheetSummary         = "Summary"
	SheetGaps            = "Gaps"
	SheetRecommendations = "Recommendations"
	SheetStrengths       = "Strengths"
)

var gapHeaders = []string{"ID", "Topic", "Severity", "Description", "Recommendation"}

// Render builds an .xlsx workbook for report and returns its bytes.
func Render(report *domain.AnalysisReport) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// NewFile starts with "Sheet1"; rename it so Summary is first and active.
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	for _, name := range []string{SheetGaps, SheetRecommendations, SheetStrengths} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("xlsx: creating sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E0E7FF"}},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx: header style: %w", err)
	}

	writeSummary(f, report, header)
	writeGaps(f, report.Gaps, header)
	writeList(f, SheetRecommendations, "Recommendation", report.Recommendations, header)
	writeList(f, SheetStrengths, "Strength", report.Strengths, header)

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, report *domain.AnalysisReport, header int) {
	rows := [][]any{
		{"Metric", "Value"},
		{"Session", report.ID},
		{"Coverage (%)", report.Summary.CoveragePercent},
		{"Topics Covered", report.Summary.TopicsCovered},
		{"Total Topics", report.Summary.TotalTopics},
		{"Gaps", report.Summary.GapCount},
		{"Alignment Score", report.Summary.AlignmentScore},
	}
	if report.GeneratedAt != nil {
		rows = append(rows, []any{"Generated At", report.GeneratedAt.Format("2006-01-02 15:04:05")})
	}
	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+1)
		_ = f.SetSheetRow(SheetSummary, cell, &row)
	}
	_ = f.SetCellStyle(SheetSummary, "A1", "B1", header)
	_ = f.SetColWidth(SheetSummary, "A", "A", 20)
	_ = f.SetColWidth(SheetSummary, "B", "B", 24)
}

func writeGaps(f *excelize.File, gaps []domain.Gap, header int) {
	_ = f.SetSheetRow(SheetGaps, "A1", &gapHeaders)
	for i, g := range gaps {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{g.ID, g.Topic, string(g.Severity), g.Description, g.Recommendation}
		_ = f.SetSheetRow(SheetGaps, cell, &row)
	}
	_ = f.SetCellStyle(SheetGaps, "A1", "E1", header)
	_ = f.SetColWidth(SheetGaps, "A", "A", 8)
	_ = f.SetColWidth(SheetGaps, "B", "B", 32)
	_ = f.SetColWidth(SheetGaps, "C", "C", 10)
	_ = f.SetColWidth(SheetGaps, "D", "E", 60)
	if len(gaps) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(gapHeaders), len(gaps)+1)
		_ = f.AutoFilter(SheetGaps, "A1:"+last, nil)
	}
}

func writeList(f *excelize.File, sheet, title string, items []string, header int) {
	_ = f.SetCellValue(sheet, "A1", "#")
	_ = f.SetCellValue(sheet, "B1", title)
	for i, item := range items {
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), i+1)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), item)
	}
	_ = f.SetCellStyle(sheet, "A1", "B1", header)
	_ = f.SetColWidth(sheet, "A", "A", 6)
	_ = f.SetColWidth(sheet, "B", "B", 90)
}
