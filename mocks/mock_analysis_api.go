package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gapcheck/internal/domain"
	"gapcheck/internal/port"
)

// MockAnalysisAPI is a mock implementation of port.AnalysisAPI.
type MockAnalysisAPI struct {
	mock.Mock
}

func (m *MockAnalysisAPI) Health(ctx context.Context) (*port.HealthStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.HealthStatus), args.Error(1)
}

func (m *MockAnalysisAPI) Upload(ctx context.Context, input port.SubmitInput) (*domain.UploadResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadResult), args.Error(1)
}

func (m *MockAnalysisAPI) Process(ctx context.Context, sessionID, curriculumID, standardsID string) error {
	args := m.Called(ctx, sessionID, curriculumID, standardsID)
	return args.Error(0)
}

func (m *MockAnalysisAPI) Status(ctx context.Context, sessionID string) (*domain.StatusReply, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StatusReply), args.Error(1)
}

func (m *MockAnalysisAPI) Report(ctx context.Context, sessionID string) ([]byte, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockAnalysisAPI) Download(ctx context.Context, sessionID string, format domain.ExportFormat) ([]byte, error) {
	args := m.Called(ctx, sessionID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockAnalysisAPI) Mapping(ctx context.Context, sessionID string) ([]byte, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
