package service

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"gapcheck/internal/config"
	"gapcheck/internal/domain"
)

// DocumentValidator enforces submission constraints. It never touches the network.
type DocumentValidator struct {
	maxBytes int64
}

// NewDocumentValidator creates a validator from the upload limits.
func NewDocumentValidator(cfg *config.UploadConfig) *DocumentValidator {
	maxBytes := cfg.MaxBytes()
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}
	return &DocumentValidator{maxBytes: maxBytes}
}

// MaxBytes returns the configured per-document limit.
func (v *DocumentValidator) MaxBytes() int64 {
	return v.maxBytes
}

// Validate returns doc unchanged when it may be submitted, or a
// *domain.ValidationError describing why not.
func (v *DocumentValidator) Validate(doc domain.UploadedDocument) (domain.UploadedDocument, error) {
	field := string(doc.Role)
	if field == "" {
		field = "document"
	}

	if doc.ContentType != domain.ContentTypePDF {
		return domain.UploadedDocument{}, domain.NewValidationError(field,
			fmt.Sprintf("please upload a PDF file for %s (got %q)", field, doc.ContentType),
			domain.ErrUnsupportedFileType)
	}
	if doc.Content != nil && int64(len(doc.Content)) != doc.Size {
		return domain.UploadedDocument{}, domain.NewValidationError(field,
			fmt.Sprintf("%s declares %d bytes but holds %d", field, doc.Size, len(doc.Content)),
			domain.ErrSizeMismatch)
	}
	if doc.Size > v.maxBytes {
		return domain.UploadedDocument{}, v.tooLarge(field, doc.Size)
	}
	if doc.Size <= 0 {
		return domain.UploadedDocument{}, domain.NewValidationError(field,
			fmt.Sprintf("%s file is empty", field), domain.ErrEmptyFile)
	}
	return doc, nil
}

func (v *DocumentValidator) tooLarge(field string, size int64) error {
	return domain.NewValidationError(field,
		fmt.Sprintf("%s is %s, which exceeds the %s limit", field,
			humanize.IBytes(uint64(size)), humanize.IBytes(uint64(v.maxBytes))),
		domain.ErrFileTooLarge)
}

// ValidatePair checks both sides of a submission, curriculum first.
func (v *DocumentValidator) ValidatePair(curriculum, standards domain.UploadedDocument) error {
	if _, err := v.Validate(curriculum); err != nil {
		return err
	}
	_, err := v.Validate(standards)
	return err
}

// LoadDocument reads a file from disk and declares its media type from the
// content, the way a browser file picker would. Files over the limit are
// rejected from their size on disk without being read.
func (v *DocumentValidator) LoadDocument(role domain.DocumentRole, path string) (domain.UploadedDocument, error) {
	field := string(role)
	if path == "" {
		return domain.UploadedDocument{}, domain.NewValidationError(field,
			fmt.Sprintf("please choose a %s document", role), domain.ErrMissingDocument)
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.UploadedDocument{}, fmt.Errorf("reading %s document: %w", role, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return domain.UploadedDocument{}, fmt.Errorf("reading %s document: %w", role, err)
	}
	if info.IsDir() {
		return domain.UploadedDocument{}, fmt.Errorf("reading %s document: %s is a directory", role, path)
	}
	if info.Size() > v.maxBytes {
		return domain.UploadedDocument{}, v.tooLarge(field, info.Size())
	}

	// The file may grow between Stat and the read.
	content, err := io.ReadAll(io.LimitReader(f, v.maxBytes+1))
	if err != nil {
		return domain.UploadedDocument{}, fmt.Errorf("reading %s document: %w", role, err)
	}
	if int64(len(content)) > v.maxBytes {
		return domain.UploadedDocument{}, v.tooLarge(field, int64(len(content)))
	}

	return domain.UploadedDocument{
		Role:        role,
		FileName:    filepath.Base(path),
		ContentType: http.DetectContentType(content),
		Size:        int64(len(content)),
		Content:     content,
	}, nil
}
