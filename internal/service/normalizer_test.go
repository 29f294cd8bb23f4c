package service_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gapcheck/internal/domain"
	"gapcheck/internal/service"
)

func TestNormalizeReport_FullPayload(t *testing.T) {
	raw := []byte(`{
		"id": "a1b2c3d4",
		"summary": {
			"coverage": "66.7%",
			"topicsCovered": 2,
			"totalTopics": 3,
			"gaps": 1,
			"recommendations": 15,
			"alignmentScore": 67
		},
		"gaps": [
			{
				"id": 3,
				"topic": "Graph Algorithms",
				"severity": "HIGH",
				"description": "Missing coverage of 'Graph Algorithms' in curriculum",
				"recommendation": "Add module on Graph Algorithms with appropriate learning outcomes"
			}
		],
		"recommendations": ["Add graph theory", "Expand labs"],
		"strengths": ["Strong foundation in programming fundamentals"],
		"timestamp": "2025-03-01T10:30:00.123456"
	}`)

	report, err := service.NormalizeReport(raw)

	require.NoError(t, err)
	assert.Equal(t, "a1b2c3d4", report.ID)
	assert.InDelta(t, 66.7, report.Summary.CoveragePercent, 0.001)
	assert.Equal(t, 2, report.Summary.TopicsCovered)
	assert.Equal(t, 3, report.Summary.TotalTopics)
	assert.Equal(t, 1, report.Summary.GapCount)
	assert.Equal(t, 67, report.Summary.AlignmentScore)

	require.Len(t, report.Gaps, 1)
	assert.Equal(t, domain.Gap{
		ID:             "3",
		Topic:          "Graph Algorithms",
		Severity:       domain.SeverityHigh,
		Description:    "Missing coverage of 'Graph Algorithms' in curriculum",
		Recommendation: "Add module on Graph Algorithms with appropriate learning outcomes",
	}, report.Gaps[0])

	assert.Equal(t, []string{"Add graph theory", "Expand labs"}, report.Recommendations)
	assert.Equal(t, []string{"Strong foundation in programming fundamentals"}, report.Strengths)
	require.NotNil(t, report.GeneratedAt)
	assert.Equal(t, 2025, report.GeneratedAt.Year())
	assert.Equal(t, time.March, report.GeneratedAt.Month())
}

func TestNormalizeReport_GapDefaults(t *testing.T) {
	raw := []byte(`{"gaps": [{"topic": "Data Structures"}, {"standard_topic": "Networking", "severity": "weird"}, {}]}`)

	report, err := service.NormalizeReport(raw)

	require.NoError(t, err)
	require.Len(t, report.Gaps, 3)

	assert.Equal(t, "1", report.Gaps[0].ID)
	assert.Equal(t, domain.SeverityMedium, report.Gaps[0].Severity)
	assert.Equal(t, "Add module on Data Structures", report.Gaps[0].Recommendation)
	assert.Equal(t, "Missing coverage of Data Structures", report.Gaps[0].Description)

	assert.Equal(t, "Networking", report.Gaps[1].Topic)
	assert.Equal(t, domain.SeverityMedium, report.Gaps[1].Severity)
	assert.Equal(t, "Add module on Networking", report.Gaps[1].Recommendation)

	assert.Equal(t, "3", report.Gaps[2].ID)
	assert.Equal(t, "Topic 3", report.Gaps[2].Topic)
	assert.Equal(t, "Add module on Topic 3", report.Gaps[2].Recommendation)

	// Summary gap count falls back to the number of gaps.
	assert.Equal(t, 3, report.Summary.GapCount)
}

func TestNormalizeReport_MissingListsAreEmpty(t *testing.T) {
	report, err := service.NormalizeReport([]byte(`{"summary": {"coverage": 85}}`))

	require.NoError(t, err)
	assert.NotNil(t, report.Gaps)
	assert.Empty(t, report.Gaps)
	assert.NotNil(t, report.Recommendations)
	assert.Empty(t, report.Recommendations)
	assert.NotNil(t, report.Strengths)
	assert.Empty(t, report.Strengths)
	assert.Equal(t, 85.0, report.Summary.CoveragePercent)
	assert.Equal(t, 85, report.Summary.AlignmentScore)
	assert.Nil(t, report.GeneratedAt)
}

func TestNormalizeReport_RecommendationsAsText(t *testing.T) {
	text := "- Add graph theory\n\n* Expand labs\n• Introduce capstone\n"
	for i := 0; i < 12; i++ {
		text += "Extra item\n"
	}
	raw, err := json.Marshal(map[string]string{"recommendations": text})
	require.NoError(t, err)

	report, err := service.NormalizeReport(raw)

	require.NoError(t, err)
	require.Len(t, report.Recommendations, 10)
	assert.Equal(t, "Add graph theory", report.Recommendations[0])
	assert.Equal(t, "Expand labs", report.Recommendations[1])
	assert.Equal(t, "Introduce capstone", report.Recommendations[2])
}

func TestNormalizeReport_WrongTypesAreIgnored(t *testing.T) {
	raw := []byte(`{"gaps": "none", "strengths": {"a": 1}, "summary": [1, 2], "recommendations": 7}`)

	report, err := service.NormalizeReport(raw)

	require.NoError(t, err)
	assert.Empty(t, report.Gaps)
	assert.Empty(t, report.Strengths)
	assert.Empty(t, report.Recommendations)
	assert.Equal(t, domain.ReportSummary{}, report.Summary)
}

func TestNormalizeReport_NonObjectYieldsEmptyReport(t *testing.T) {
	for _, raw := range []string{`[]`, `null`, `"text"`, `42`} {
		t.Run(raw, func(t *testing.T) {
			report, err := service.NormalizeReport([]byte(raw))
			require.NoError(t, err)
			assert.NotNil(t, report.Gaps)
			assert.Empty(t, report.Gaps)
		})
	}
}

func TestNormalizeReport_InvalidJSON(t *testing.T) {
	_, err := service.NormalizeReport([]byte(`{"gaps": [`))

	assert.ErrorIs(t, err, domain.ErrDecode)
}
