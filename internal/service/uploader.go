package service

import (
	"context"
	"log"

	"gapcheck/internal/domain"
	"gapcheck/internal/port"
)

// Submission is the result of a successful upload: the server-assigned
// session plus copies of both documents carrying their server identifiers.
type Submission struct {
	SessionID  string
	Curriculum domain.UploadedDocument
	Standards  domain.UploadedDocument
}

// UploadSubmitter transfers a validated document pair in one request. It does
// not retry; transport and server errors are returned as-is.
type UploadSubmitter struct {
	api port.AnalysisAPI
}

// NewUploadSubmitter creates a new UploadSubmitter.
func NewUploadSubmitter(api port.AnalysisAPI) *UploadSubmitter {
	return &UploadSubmitter{api: api}
}

// Submit uploads both documents. onProgress, if set, sees a non-decreasing
// percentage for the duration of the transfer.
func (s *UploadSubmitter) Submit(ctx context.Context, curriculum, standards domain.UploadedDocument, onProgress port.ProgressFunc) (*Submission, error) {
	curriculum.Role = domain.RoleCurriculum
	standards.Role = domain.RoleStandards

	last := -1
	guarded := func(pct int) {
		if onProgress == nil || pct <= last {
			return
		}
		last = pct
		onProgress(pct)
	}

	log.Printf("uploadSubmitter.Submit: uploading %s (%d bytes) and %s (%d bytes)",
		curriculum.FileName, curriculum.Size, standards.FileName, standards.Size)

	res, err := s.api.Upload(ctx, port.SubmitInput{
		Curriculum: curriculum,
		Standards:  standards,
		OnProgress: guarded,
	})
	if err != nil {
		log.Printf("uploadSubmitter.Submit: upload failed: %v", err)
		return nil, err
	}

	return &Submission{
		SessionID:  res.SessionID,
		Curriculum: curriculum.WithServerID(res.CurriculumID),
		Standards:  standards.WithServerID(res.StandardsID),
	}, nil
}
