package domain

import "time"

// UploadedDocument is one side of a submission. Values are never mutated after
// validation; WithServerID returns a copy.
type UploadedDocument struct {
	Role        DocumentRole
	FileName    string
	ContentType string
	Size        int64
	Content     []byte
	ServerID    string
}

// WithServerID returns a copy of d carrying the identifier assigned by the server.
func (d UploadedDocument) WithServerID(id string) UploadedDocument {
	d.ServerID = id
	return d
}

// UploadResult is the server's answer to a multipart upload.
type UploadResult struct {
	SessionID    string
	CurriculumID string
	StandardsID  string
}

// StatusReply is the decoded body of GET /status/{session_id}.
// Progress is nil when the server omitted it.
type StatusReply struct {
	Status   string
	Progress *int
	Message  string
}

// AnalysisSession is the client-side view of one remote job. It is owned by a
// single poller and never shared.
type AnalysisSession struct {
	ID       string
	State    SessionState
	Progress int
	Message  string
	Attempts int
}

// ReportSummary holds the headline metrics of a report.
type ReportSummary struct {
	CoveragePercent float64 `json:"coverage_percent"`
	TopicsCovered   int     `json:"topics_covered"`
	TotalTopics     int     `json:"total_topics"`
	GapCount        int     `json:"gap_count"`
	AlignmentScore  int     `json:"alignment_score"`
}

// Gap is a deficiency between the curriculum and the reference standard.
type Gap struct {
	ID             string   `json:"id"`
	Topic          string   `json:"topic"`
	Severity       Severity `json:"severity"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
}

// AnalysisReport is the normalized result of a completed session.
type AnalysisReport struct {
	ID              string        `json:"id,omitempty"`
	Summary         ReportSummary `json:"summary"`
	Gaps            []Gap         `json:"gaps"`
	Recommendations []string      `json:"recommendations"`
	Strengths       []string      `json:"strengths"`
	GeneratedAt     *time.Time    `json:"generated_at,omitempty"`
}

// Event is a state transition published by the orchestrator. Message is empty
// when nothing should be shown to the user for this transition.
type Event struct {
	SessionID string
	Stage     Stage
	State     SessionState
	Percent   int
	Message   string
	Attempt   int
}

// Outcome is the caller-visible result of a session that did not fail.
// Report is set only when State is StateCompleted. A StateTimedOut outcome
// keeps SessionID usable for later retrieval.
type Outcome struct {
	SessionID string
	State     SessionState
	Message   string
	Attempts  int
	Report    *AnalysisReport
}

// StoredObject describes an export written to a storage sink.
type StoredObject struct {
	Format   ExportFormat
	Key      string
	Location string
	Size     int64
}
