package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"gapcheck/internal/csvexport"
	"gapcheck/internal/domain"
	"gapcheck/internal/port"
	"gapcheck/internal/xlsxexport"
)

var exportFileNames = map[domain.ExportFormat]string{
	domain.ExportPDF:  "curriculum_report_%s.pdf",
	domain.ExportJSON: "curriculum_data_%s.json",
	domain.ExportXLSX: "curriculum_gaps_%s.xlsx",
	domain.ExportCSV:  "curriculum_gaps_%s.csv",
}

// ExportFileName returns the file name an export of sessionID is stored under.
func ExportFileName(sessionID string, format domain.ExportFormat) string {
	return fmt.Sprintf(exportFileNames[format], csvexport.SanitizeFilename(sessionID))
}

// ExportService downloads or renders the exports of a finished session and
// writes them to an object storage sink.
type ExportService struct {
	api     port.AnalysisAPI
	storage port.ObjectStorage
	prefix  string
}

// NewExportService creates a new ExportService. Objects are stored under prefix.
func NewExportService(api port.AnalysisAPI, storage port.ObjectStorage, prefix string) *ExportService {
	return &ExportService{api: api, storage: storage, prefix: prefix}
}

// Export produces every requested format concurrently. PDF and JSON come
// straight from the server; XLSX and CSV are rendered from the normalized
// report. The result follows the order of formats, without duplicates.
func (s *ExportService) Export(ctx context.Context, sessionID string, formats []domain.ExportFormat) ([]domain.StoredObject, error) {
	if sessionID == "" {
		return nil, domain.NewValidationError("session_id", "identifier is missing", domain.ErrMissingIdentifier)
	}
	formats, err := uniqueFormats(formats)
	if err != nil {
		return nil, err
	}

	report := s.reportOnce(sessionID)
	stored := make([]domain.StoredObject, len(formats))

	g, gctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		i, format := i, format
		g.Go(func() error {
			body, err := s.produce(gctx, sessionID, format, report)
			if err != nil {
				return fmt.Errorf("exporting %s: %w", format, err)
			}
			obj, err := s.store(gctx, sessionID, format, body)
			if err != nil {
				return err
			}
			stored[i] = obj
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("exportService.Export: session %s: %v", sessionID, err)
		return nil, err
	}

	log.Printf("exportService.Export: session %s: stored %d exports", sessionID, len(stored))
	return stored, nil
}

// ShareURL returns a time-limited link to a stored export.
func (s *ExportService) ShareURL(ctx context.Context, obj domain.StoredObject, expiry time.Duration) (string, error) {
	url, err := s.storage.GetPresignedURL(ctx, obj.Key, int64(expiry/time.Second))
	if err != nil {
		return "", fmt.Errorf("sharing %s: %w", obj.Key, err)
	}
	return url, nil
}

type reportFunc func(ctx context.Context) (*domain.AnalysisReport, error)

// reportOnce fetches and normalizes the report at most once, however many
// rendered formats ask for it.
func (s *ExportService) reportOnce(sessionID string) reportFunc {
	var (
		once   sync.Once
		report *domain.AnalysisReport
		err    error
	)
	return func(ctx context.Context) (*domain.AnalysisReport, error) {
		once.Do(func() {
			var raw []byte
			raw, err = s.api.Report(ctx, sessionID)
			if err != nil {
				return
			}
			report, err = NormalizeReport(raw)
			if err == nil && report.ID == "" {
				report.ID = sessionID
			}
		})
		return report, err
	}
}

func (s *ExportService) produce(ctx context.Context, sessionID string, format domain.ExportFormat, report reportFunc) ([]byte, error) {
	switch format {
	case domain.ExportPDF, domain.ExportJSON:
		return s.api.Download(ctx, sessionID, format)
	case domain.ExportXLSX:
		r, err := report(ctx)
		if err != nil {
			return nil, err
		}
		return xlsxexport.Render(r)
	case domain.ExportCSV:
		r, err := report(ctx)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := csvexport.WriteReport(&buf, r); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

func (s *ExportService) store(ctx context.Context, sessionID string, format domain.ExportFormat, body []byte) (domain.StoredObject, error) {
	key := path.Join(s.prefix, ExportFileName(sessionID, format))
	out, err := s.storage.Upload(ctx, port.UploadInput{
		Key:         key,
		Body:        bytes.NewReader(body),
		ContentType: domain.ExportContentTypes[format],
		Size:        int64(len(body)),
	})
	if err != nil {
		return domain.StoredObject{}, fmt.Errorf("storing %s: %w", key, err)
	}
	return domain.StoredObject{
		Format:   format,
		Key:      key,
		Location: out.Location,
		Size:     int64(len(body)),
	}, nil
}

func uniqueFormats(formats []domain.ExportFormat) ([]domain.ExportFormat, error) {
	if len(formats) == 0 {
		return nil, domain.NewValidationError("formats", "at least one export format is required", domain.ErrValidation)
	}
	seen := make(map[domain.ExportFormat]bool, len(formats))
	out := make([]domain.ExportFormat, 0, len(formats))
	for _, f := range formats {
		if _, ok := domain.ExportContentTypes[f]; !ok {
			return nil, domain.NewValidationError("formats", fmt.Sprintf("unsupported export format %q", f), domain.ErrValidation)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out, nil
}
