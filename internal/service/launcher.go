package service

import (
	"context"
	"log"
	"strings"

	"gapcheck/internal/domain"
	"gapcheck/internal/port"
)

// JobLauncher asks the server to start processing an uploaded pair.
type JobLauncher struct {
	api port.AnalysisAPI
}

// NewJobLauncher creates a new JobLauncher.
func NewJobLauncher(api port.AnalysisAPI) *JobLauncher {
	return &JobLauncher{api: api}
}

// Launch returns once the server has accepted the job, not when it finishes.
func (l *JobLauncher) Launch(ctx context.Context, sessionID, curriculumID, standardsID string) error {
	ids := []struct{ field, value string }{
		{"session_id", sessionID},
		{"curriculum", curriculumID},
		{"standards", standardsID},
	}
	for _, id := range ids {
		if strings.TrimSpace(id.value) == "" {
			return domain.NewValidationError(id.field, "identifier is missing", domain.ErrMissingIdentifier)
		}
	}

	if err := l.api.Process(ctx, sessionID, curriculumID, standardsID); err != nil {
		log.Printf("jobLauncher.Launch: session %s not accepted: %v", sessionID, err)
		return err
	}
	log.Printf("jobLauncher.Launch: session %s accepted", sessionID)
	return nil
}
