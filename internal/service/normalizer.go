package service

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"gapcheck/internal/domain"
)

// maxTextRecommendations caps recommendations delivered as one block of text.
const maxTextRecommendations = 10

// NormalizeReport decodes an arbitrarily shaped report payload into a fully
// populated report. It fails only when raw is not JSON at all; missing or
// oddly typed fields fall back to documented defaults.
func NormalizeReport(raw []byte) (*domain.AnalysisReport, error) {
	if !gjson.ValidBytes(raw) {
		return nil, &domain.DecodeError{Op: "normalizeReport", Err: errors.New("report is not valid JSON")}
	}

	report := &domain.AnalysisReport{
		Gaps:            []domain.Gap{},
		Recommendations: []string{},
		Strengths:       []string{},
	}

	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return report, nil
	}

	report.ID = firstString(root, "id", "session_id")
	report.Gaps = normalizeGaps(root.Get("gaps"))
	report.Recommendations = normalizeRecommendations(root.Get("recommendations"))
	report.Strengths = stringList(root.Get("strengths"))
	report.Summary = normalizeSummary(root.Get("summary"), len(report.Gaps))
	report.GeneratedAt = parseTimestamp(firstString(root, "timestamp", "generated_at"))

	return report, nil
}

func normalizeGaps(v gjson.Result) []domain.Gap {
	gaps := []domain.Gap{}
	if !v.IsArray() {
		return gaps
	}
	for i, item := range v.Array() {
		if !item.IsObject() {
			continue
		}
		topic := firstString(item, "topic", "standard_topic")
		if topic == "" {
			topic = fmt.Sprintf("Topic %d", i+1)
		}
		id := firstString(item, "id")
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		description := firstString(item, "description")
		if description == "" {
			description = "Missing coverage of " + topic
		}
		recommendation := firstString(item, "recommendation")
		if recommendation == "" {
			recommendation = "Add module on " + topic
		}
		gaps = append(gaps, domain.Gap{
			ID:             id,
			Topic:          topic,
			Severity:       domain.ParseSeverity(item.Get("severity").String()),
			Description:    description,
			Recommendation: recommendation,
		})
	}
	return gaps
}

// normalizeRecommendations accepts either a list of strings or one block of
// text with a recommendation per line.
func normalizeRecommendations(v gjson.Result) []string {
	if v.Type != gjson.String {
		return stringList(v)
	}
	out := []string{}
	for _, line := range strings.Split(v.String(), "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-•*"))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxTextRecommendations {
			break
		}
	}
	return out
}

func normalizeSummary(v gjson.Result, gapCount int) domain.ReportSummary {
	s := domain.ReportSummary{GapCount: gapCount}
	if !v.IsObject() {
		return s
	}
	if c, ok := number(v, "coverage", "coverage_percent", "coveragePercent"); ok {
		s.CoveragePercent = math.Max(0, math.Min(100, c))
	}
	if n, ok := number(v, "topicsCovered", "topics_covered"); ok {
		s.TopicsCovered = int(math.Round(n))
	}
	if n, ok := number(v, "totalTopics", "total_topics"); ok {
		s.TotalTopics = int(math.Round(n))
	}
	if n, ok := number(v, "gaps", "gap_count", "gapCount"); ok {
		s.GapCount = int(math.Round(n))
	}
	if n, ok := number(v, "alignmentScore", "alignment_score"); ok {
		s.AlignmentScore = int(math.Round(n))
	} else {
		s.AlignmentScore = int(math.Round(s.CoveragePercent))
	}
	return s
}

func stringList(v gjson.Result) []string {
	out := []string{}
	if !v.IsArray() {
		return out
	}
	for _, item := range v.Array() {
		if item.Type == gjson.String || item.Type == gjson.Number {
			if s := strings.TrimSpace(item.String()); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func firstString(v gjson.Result, keys ...string) string {
	for _, k := range keys {
		f := v.Get(k)
		if f.Type == gjson.String || f.Type == gjson.Number {
			if s := strings.TrimSpace(f.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

// number reads the first key holding a number or a numeric string such as "85.0%".
func number(v gjson.Result, keys ...string) (float64, bool) {
	for _, k := range keys {
		f := v.Get(k)
		switch f.Type {
		case gjson.Number:
			return f.Float(), true
		case gjson.String:
			s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(f.String()), "%"))
			if n, err := strconv.ParseFloat(s, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func parseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
