package noop

import (
	"context"
	"log"

	"gapcheck/internal/domain"
	"gapcheck/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a ReportNotifier that only logs the summary.
func NewNoopSender() port.ReportNotifier {
	return &noopSender{}
}

func (s *noopSender) SendReportSummary(_ context.Context, toEmail, sessionID string, report *domain.AnalysisReport) error {
	log.Printf("[NOOP EMAIL] Report summary for %s to %q: coverage %.1f%%, %d gaps",
		sessionID, toEmail, report.Summary.CoveragePercent, len(report.Gaps))
	return nil
}
