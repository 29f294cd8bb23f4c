package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gapcheck/internal/domain"
	"gapcheck/internal/port"
	"gapcheck/internal/service"
	"gapcheck/mocks"
)

const exportReport = `{"summary":{"coverage":"50.0%"},"gaps":[{"topic":"Graph Algorithms","severity":"high"}]}`

// storedBody captures what was written for a key.
func storedBody(t *testing.T, store *mocks.MockObjectStorage, key string) []byte {
	t.Helper()
	for _, call := range store.Calls {
		if call.Method != "Upload" {
			continue
		}
		in := call.Arguments.Get(1).(port.UploadInput)
		if in.Key == key {
			data, err := io.ReadAll(in.Body)
			require.NoError(t, err)
			return data
		}
	}
	t.Fatalf("nothing stored under %s", key)
	return nil
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "curriculum_report_a1b2c3d4.pdf", service.ExportFileName("a1b2c3d4", domain.ExportPDF))
	assert.Equal(t, "curriculum_data_a1b2c3d4.json", service.ExportFileName("a1b2c3d4", domain.ExportJSON))
	assert.Equal(t, "curriculum_gaps_a1b2c3d4.xlsx", service.ExportFileName("a1b2c3d4", domain.ExportXLSX))
	assert.Equal(t, "curriculum_gaps_a1b2c3d4.csv", service.ExportFileName("a1b2c3d4", domain.ExportCSV))
	assert.Equal(t, "curriculum_data_etc_passwd.json", service.ExportFileName("../etc/passwd", domain.ExportJSON))
}

func TestExportService_Export_AllFormats(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	store := new(mocks.MockObjectStorage)

	pdf := []byte("%PDF-1.4 report")
	api.On("Download", mock.Anything, "a1b2c3d4", domain.ExportPDF).Return(pdf, nil).Once()
	api.On("Download", mock.Anything, "a1b2c3d4", domain.ExportJSON).Return([]byte(exportReport), nil).Once()
	api.On("Report", mock.Anything, "a1b2c3d4").Return([]byte(exportReport), nil).Once()
	store.On("Upload", mock.Anything, mock.Anything).
		Return(&port.UploadOutput{Location: "https://gapcheck-reports.s3.amazonaws.com/object"}, nil)

	svc := service.NewExportService(api, store, "reports")
	objs, err := svc.Export(context.Background(), "a1b2c3d4",
		[]domain.ExportFormat{domain.ExportPDF, domain.ExportJSON, domain.ExportXLSX, domain.ExportCSV, domain.ExportPDF})

	require.NoError(t, err)
	require.Len(t, objs, 4)
	assert.Equal(t, domain.ExportPDF, objs[0].Format)
	assert.Equal(t, "reports/curriculum_report_a1b2c3d4.pdf", objs[0].Key)
	assert.Equal(t, "https://gapcheck-reports.s3.amazonaws.com/object", objs[0].Location)
	assert.Equal(t, int64(len(pdf)), objs[0].Size)
	assert.Equal(t, "reports/curriculum_data_a1b2c3d4.json", objs[1].Key)
	assert.Equal(t, "reports/curriculum_gaps_a1b2c3d4.xlsx", objs[2].Key)
	assert.Equal(t, "reports/curriculum_gaps_a1b2c3d4.csv", objs[3].Key)

	assert.Equal(t, pdf, storedBody(t, store, objs[0].Key))

	wb, err := excelize.OpenReader(bytes.NewReader(storedBody(t, store, objs[2].Key)))
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()
	topic, err := wb.GetCellValue("Gaps", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Graph Algorithms", topic)

	assert.Contains(t, string(storedBody(t, store, objs[3].Key)), "Graph Algorithms,high")

	// The report is fetched once for both rendered formats.
	api.AssertNumberOfCalls(t, "Report", 1)
	store.AssertNumberOfCalls(t, "Upload", 4)
}

func TestExportService_Export_ContentTypes(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	store := new(mocks.MockObjectStorage)
	api.On("Download", mock.Anything, "s1", domain.ExportJSON).Return([]byte(`{}`), nil)
	store.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.ContentType == "application/json" && in.Size == 2
	})).Return(&port.UploadOutput{Location: "/tmp/x"}, nil).Once()

	_, err := service.NewExportService(api, store, "").Export(context.Background(), "s1", []domain.ExportFormat{domain.ExportJSON})

	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestExportService_Export_DownloadFailure(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	store := new(mocks.MockObjectStorage)
	api.On("Download", mock.Anything, "s1", domain.ExportPDF).
		Return(nil, &domain.ServerError{Op: "download", StatusCode: 404, Message: "Report not found"})

	_, err := service.NewExportService(api, store, "reports").Export(context.Background(), "s1", []domain.ExportFormat{domain.ExportPDF})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestExportService_Export_StorageFailure(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	store := new(mocks.MockObjectStorage)
	api.On("Report", mock.Anything, "s1").Return([]byte(exportReport), nil)
	store.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("disk full"))

	_, err := service.NewExportService(api, store, "reports").Export(context.Background(), "s1", []domain.ExportFormat{domain.ExportXLSX})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestExportService_Export_InvalidInput(t *testing.T) {
	svc := service.NewExportService(new(mocks.MockAnalysisAPI), new(mocks.MockObjectStorage), "reports")

	_, err := svc.Export(context.Background(), "", []domain.ExportFormat{domain.ExportPDF})
	assert.ErrorIs(t, err, domain.ErrMissingIdentifier)

	_, err = svc.Export(context.Background(), "s1", nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Export(context.Background(), "s1", []domain.ExportFormat{"docx"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExportService_ShareURL(t *testing.T) {
	store := new(mocks.MockObjectStorage)
	store.On("GetPresignedURL", mock.Anything, "reports/curriculum_report_s1.pdf", int64(3600)).
		Return("https://example.com/signed", nil)

	svc := service.NewExportService(new(mocks.MockAnalysisAPI), store, "reports")
	url, err := svc.ShareURL(context.Background(), domain.StoredObject{Key: "reports/curriculum_report_s1.pdf"}, time.Hour)

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/signed", url)
}
