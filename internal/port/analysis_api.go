package port

import (
	"context"

	"gapcheck/internal/domain"
)

// ProgressFunc receives upload progress as a whole percentage.
type ProgressFunc func(percent int)

// SubmitInput holds the two documents sent in one multipart upload.
type SubmitInput struct {
	Curriculum domain.UploadedDocument
	Standards  domain.UploadedDocument
	OnProgress ProgressFunc
}

// HealthStatus is the server's answer to GET /health.
type HealthStatus struct {
	Status       string
	Service      string
	AIConfigured bool
}

// AnalysisAPI abstracts the remote analysis server. Implementations return
// *domain.TransportError when no response was received and *domain.ServerError
// for any non-success status.
type AnalysisAPI interface {
	Health(ctx context.Context) (*HealthStatus, error)
	Upload(ctx context.Context, input SubmitInput) (*domain.UploadResult, error)
	Process(ctx context.Context, sessionID, curriculumID, standardsID string) error
	Status(ctx context.Context, sessionID string) (*domain.StatusReply, error)
	Report(ctx context.Context, sessionID string) ([]byte, error)
	Download(ctx context.Context, sessionID string, format domain.ExportFormat) ([]byte, error)
	Mapping(ctx context.Context, sessionID string) ([]byte, error)
}
