package xlsxexport_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gapcheck/internal/domain"
	"gapcheck/internal/xlsxexport"
)

func TestRender(t *testing.T) {
	generated := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	report := &domain.AnalysisReport{
		ID: "a1b2c3d4",
		Summary: domain.ReportSummary{
			CoveragePercent: 50,
			TopicsCovered:   1,
			TotalTopics:     2,
			GapCount:        1,
			AlignmentScore:  50,
		},
		Gaps: []domain.Gap{
			{ID: "1", Topic: "Graph Algorithms", Severity: domain.SeverityHigh, Description: "Missing coverage of Graph Algorithms", Recommendation: "Add module on Graph Algorithms"},
		},
		Recommendations: []string{"Add a graph algorithms unit", "Introduce shortest path labs"},
		Strengths:       []string{"Strong programming fundamentals"},
		GeneratedAt:     &generated,
	}

	data, err := xlsxexport.Render(report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{
		xlsxexport.SheetSummary,
		xlsxexport.SheetGaps,
		xlsxexport.SheetRecommendations,
		xlsxexport.SheetStrengths,
	}, f.GetSheetList())

	session, err := f.GetCellValue(xlsxexport.SheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3d4", session)

	rows, err := f.GetRows(xlsxexport.SheetGaps)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Topic", rows[0][1])
	assert.Equal(t, []string{"1", "Graph Algorithms", "high", "Missing coverage of Graph Algorithms", "Add module on Graph Algorithms"}, rows[1])

	recs, err := f.GetRows(xlsxexport.SheetRecommendations)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "Introduce shortest path labs", recs[2][1])

	strengths, err := f.GetRows(xlsxexport.SheetStrengths)
	require.NoError(t, err)
	assert.Len(t, strengths, 2)
}

func TestRender_EmptyReport(t *testing.T) {
	data, err := xlsxexport.Render(&domain.AnalysisReport{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(xlsxexport.SheetGaps)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
