package ses

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"gapcheck/internal/domain"
)

func summaryReport(gaps int) *domain.AnalysisReport {
	r := &domain.AnalysisReport{
		Summary: domain.ReportSummary{CoveragePercent: 66.7, TopicsCovered: 2, TotalTopics: 3, GapCount: gaps, AlignmentScore: 67},
	}
	for i := 0; i < gaps; i++ {
		r.Gaps = append(r.Gaps, domain.Gap{Topic: "Topic <b>", Severity: domain.SeverityHigh, Recommendation: "Add module"})
	}
	return r
}

func TestBuildSummaryText(t *testing.T) {
	text := buildSummaryText("a1b2c3d4", summaryReport(7))

	assert.Contains(t, text, "Analysis a1b2c3d4 is complete.")
	assert.Contains(t, text, "Coverage: 66.7%")
	assert.Contains(t, text, "Topics covered: 2 of 3")
	assert.Equal(t, maxListedGaps, strings.Count(text, "- [high]"))
}

func TestBuildSummaryHTML_EscapesContent(t *testing.T) {
	html := buildSummaryHTML("a1b2c3d4", summaryReport(1))

	assert.Contains(t, html, "Topic &lt;b&gt;")
	assert.NotContains(t, html, "Topic <b>")
	assert.Contains(t, html, "66.7%")
	assert.Contains(t, html, "width: 100%;")
}

func TestBuildSummaryText_NoGaps(t *testing.T) {
	text := buildSummaryText("s1", summaryReport(0))

	assert.NotContains(t, text, "Top gaps")
}
