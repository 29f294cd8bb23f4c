package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gapcheck/internal/domain"
)

// MockReportNotifier is a mock implementation of port.ReportNotifier.
type MockReportNotifier struct {
	mock.Mock
}

func (m *MockReportNotifier) SendReportSummary(ctx context.Context, toEmail, sessionID string, report *domain.AnalysisReport) error {
	args := m.Called(ctx, toEmail, sessionID, report)
	return args.Error(0)
}
