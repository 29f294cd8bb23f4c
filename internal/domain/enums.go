package domain

import "strings"

// ContentTypePDF is the only media type accepted for submission.
const ContentTypePDF = "application/pdf"

// DocumentRole identifies which side of the comparison a document is.
// The value doubles as the multipart field name expected by the server.
type DocumentRole string

const (
	RoleCurriculum DocumentRole = "curriculum"
	RoleStandards  DocumentRole = "standards"
)

// SessionState represents the lifecycle of an analysis session on the client.
type SessionState string

const (
	StateLaunched  SessionState = "launched"
	StatePolling   SessionState = "polling"
	StateCompleted SessionState = "completed"
	StateFailed    SessionState = "failed"
	StateTimedOut  SessionState = "timed_out"
)

// IsTerminal reports whether no further transitions can happen from s.
func (s SessionState) IsTerminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateTimedOut:
		return true
	}
	return false
}

// Remote job status values returned by GET /status/{session_id}.
const (
	RemoteStatusProcessing = "processing"
	RemoteStatusCompleted  = "completed"
	RemoteStatusFailed     = "failed"
)

// Severity grades how badly a standard topic is covered.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ParseSeverity maps a loosely cased severity onto the known set.
// Anything unrecognized becomes SeverityMedium.
func ParseSeverity(raw string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(raw))) {
	case SeverityLow:
		return SeverityLow
	case SeverityHigh:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

// Stage names the step of the workflow an Event belongs to.
type Stage string

const (
	StageValidate Stage = "validate"
	StageUpload   Stage = "upload"
	StageLaunch   Stage = "launch"
	StagePoll     Stage = "poll"
	StageResult   Stage = "result"
)

// ExportFormat is a downloadable rendition of a finished report.
type ExportFormat string

const (
	ExportPDF  ExportFormat = "pdf"
	ExportJSON ExportFormat = "json"
	ExportXLSX ExportFormat = "xlsx"
	ExportCSV  ExportFormat = "csv"
)

// ExportContentTypes maps each export format to its MIME type.
var ExportContentTypes = map[ExportFormat]string{
	ExportPDF:  ContentTypePDF,
	ExportJSON: "application/json",
	ExportXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	ExportCSV:  "text/csv; charset=utf-8",
}

// ParseExportFormat maps a user-supplied name onto a known format.
func ParseExportFormat(raw string) (ExportFormat, bool) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := ExportContentTypes[f]
	return f, ok
}
