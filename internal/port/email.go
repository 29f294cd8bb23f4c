package port

import (
	"context"

	"gapcheck/internal/domain"
)

// ReportNotifier delivers a short summary of a finished report.
type ReportNotifier interface {
	SendReportSummary(ctx context.Context, toEmail, sessionID string, report *domain.AnalysisReport) error
}
