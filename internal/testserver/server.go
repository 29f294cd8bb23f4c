// Package testserver is an in-process stand-in for the remote analysis
// server. Status replies are scripted so tests can drive the poller through
// any sequence of states.
package testserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Reply is one scripted answer. Body is encoded as JSON.
type Reply struct {
	Code int
	Body any
}

// Processing is a non-terminal status reply.
func Processing(progress int, message string) Reply {
	return Reply{Code: http.StatusOK, Body: gin.H{"status": "processing", "progress": progress, "message": message}}
}

// Completed is a terminal success reply.
func Completed() Reply {
	return Reply{Code: http.StatusOK, Body: gin.H{"status": "completed", "progress": 100, "message": "Analysis completed successfully"}}
}

// Failed is a terminal failure reply.
func Failed(message string) Reply {
	return Reply{Code: http.StatusOK, Body: gin.H{"status": "failed", "progress": 0, "message": message}}
}

// NotFound mimics a session the server has not registered yet.
func NotFound() Reply {
	return Reply{Code: http.StatusNotFound, Body: gin.H{"error": "Session not found"}}
}

// UploadedPart records one multipart file the server received.
type UploadedPart struct {
	Field       string
	FileName    string
	ContentType string
	Size        int64
}

// ProcessCall records a POST /process body.
type ProcessCall struct {
	SessionID  string `json:"session_id"`
	Curriculum string `json:"curriculum"`
	Standards  string `json:"standards"`
}

// Server is a scripted fake of the analysis API.
type Server struct {
	SessionID string
	Report    string
	PDF       []byte
	Mapping   string

	mu          sync.Mutex
	statuses    []Reply
	statusCalls int
	uploads     []UploadedPart
	processed   []ProcessCall
	requestIDs  []string
}

// New creates a fake with sensible defaults.
func New() *Server {
	gin.SetMode(gin.TestMode)
	return &Server{
		SessionID: "a1b2c3d4",
		Report:    `{"summary":{"coverage":"50.0%","topicsCovered":1,"totalTopics":2,"gaps":1},"gaps":[{"topic":"Graph Algorithms"}],"strengths":["Solid fundamentals"]}`,
		PDF:       []byte("%PDF-1.4 fake report"),
		Mapping:   `[{"standard_topic":"Graph Algorithms","status":"Missing","similarity":0.1}]`,
		statuses:  []Reply{Completed()},
	}
}

// Start serves the fake on a loopback listener. The returned base URL
// already includes the /api prefix.
func (s *Server) Start() (*httptest.Server, string) {
	ts := httptest.NewServer(s.Handler())
	return ts, ts.URL + "/api"
}

// ScriptStatus replaces the status replies. The last reply repeats once the
// script is exhausted.
func (s *Server) ScriptStatus(replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = replies
	s.statusCalls = 0
}

// StatusCalls returns how many status checks were served.
func (s *Server) StatusCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusCalls
}

// Uploads returns the files received by POST /upload.
func (s *Server) Uploads() []UploadedPart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]UploadedPart(nil), s.uploads...)
}

// Processed returns the POST /process bodies received.
func (s *Server) Processed() []ProcessCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ProcessCall(nil), s.processed...)
}

// RequestIDs returns the X-Request-ID of every request seen.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

// Handler builds the gin engine.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID())

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "Curriculum Gap Identifier AI", "gemini_configured": true})
	})
	api.POST("/upload", s.handleUpload)
	api.POST("/process", s.handleProcess)
	api.GET("/status/:id", s.handleStatus)
	api.GET("/reports/:id", s.raw(func() (string, []byte) { return "application/json", []byte(s.Report) }))
	api.GET("/reports/:id/json", s.raw(func() (string, []byte) { return "application/json", []byte(s.Report) }))
	api.GET("/reports/:id/pdf", s.raw(func() (string, []byte) { return "application/pdf", s.PDF }))
	api.GET("/results/:id/mapping", s.raw(func() (string, []byte) { return "application/json", []byte(s.Mapping) }))
	return r
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		s.mu.Lock()
		s.requestIDs = append(s.requestIDs, id)
		s.mu.Unlock()
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) handleUpload(c *gin.Context) {
	var parts []UploadedPart
	for _, field := range []string{"curriculum", "standards"} {
		fh, err := c.FormFile(field)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Both curriculum and standards files are required"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		n, _ := io.Copy(io.Discard, f)
		_ = f.Close()
		parts = append(parts, UploadedPart{
			Field:       field,
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        n,
		})
	}

	s.mu.Lock()
	s.uploads = append(s.uploads, parts...)
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"message":    "Files uploaded successfully",
		"session_id": s.SessionID,
		"files": gin.H{
			"curriculum": "curriculum_" + s.SessionID + ".pdf",
			"standards":  "standards_" + s.SessionID + ".pdf",
		},
	})
}

func (s *Server) handleProcess(c *gin.Context) {
	var call ProcessCall
	if err := c.ShouldBindJSON(&call); err != nil || call.SessionID == "" || call.Curriculum == "" || call.Standards == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameters"})
		return
	}
	s.mu.Lock()
	s.processed = append(s.processed, call)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"message": "Analysis started", "session_id": call.SessionID, "status": "processing"})
}

func (s *Server) handleStatus(c *gin.Context) {
	s.mu.Lock()
	idx := s.statusCalls
	s.statusCalls++
	var reply Reply
	if len(s.statuses) > 0 {
		reply = s.statuses[min(idx, len(s.statuses)-1)]
	}
	s.mu.Unlock()

	if reply.Code == 0 {
		reply.Code = http.StatusOK
	}
	c.JSON(reply.Code, reply.Body)
}

func (s *Server) raw(body func() (string, []byte)) gin.HandlerFunc {
	return func(c *gin.Context) {
		contentType, data := body()
		c.Data(http.StatusOK, contentType, data)
	}
}
