package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"gapcheck/internal/config"
	"gapcheck/internal/domain"
	"gapcheck/internal/port"
)

const defaultTimeout = 300 * time.Second

// Client implements port.AnalysisAPI over JSON/HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates an analysis API client from config.
func New(cfg *config.APIConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return NewWithHTTPClient(cfg.BaseURL, &http.Client{Timeout: timeout})
}

// NewWithHTTPClient creates a client pointing at baseURL with a caller-supplied
// http.Client (for testing).
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

var _ port.AnalysisAPI = (*Client)(nil)

func (c *Client) Health(ctx context.Context) (*port.HealthStatus, error) {
	raw, err := c.do(ctx, "health", http.MethodGet, "/health", nil, "")
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(raw) {
		return nil, &domain.DecodeError{Op: "health", Err: fmt.Errorf("invalid JSON body")}
	}
	res := gjson.ParseBytes(raw)
	return &port.HealthStatus{
		Status:       res.Get("status").String(),
		Service:      res.Get("service").String(),
		AIConfigured: res.Get("gemini_configured").Bool(),
	}, nil
}

// processRequest is the body of POST /process.
type processRequest struct {
	SessionID  string `json:"session_id"`
	Curriculum string `json:"curriculum"`
	Standards  string `json:"standards"`
}

func (c *Client) Process(ctx context.Context, sessionID, curriculumID, standardsID string) error {
	body, err := json.Marshal(processRequest{
		SessionID:  sessionID,
		Curriculum: curriculumID,
		Standards:  standardsID,
	})
	if err != nil {
		return fmt.Errorf("marshaling process request: %w", err)
	}
	_, err = c.do(ctx, "process", http.MethodPost, "/process", bytes.NewReader(body), "application/json")
	return err
}

func (c *Client) Status(ctx context.Context, sessionID string) (*domain.StatusReply, error) {
	raw, err := c.do(ctx, "status", http.MethodGet, "/status/"+url.PathEscape(sessionID), nil, "")
	if err != nil {
		return nil, err
	}
	return decodeStatus(raw)
}

func (c *Client) Report(ctx context.Context, sessionID string) ([]byte, error) {
	return c.do(ctx, "report", http.MethodGet, "/reports/"+url.PathEscape(sessionID), nil, "")
}

func (c *Client) Download(ctx context.Context, sessionID string, format domain.ExportFormat) ([]byte, error) {
	switch format {
	case domain.ExportPDF, domain.ExportJSON:
	default:
		return nil, fmt.Errorf("download %s: server does not render this format", format)
	}
	path := fmt.Sprintf("/reports/%s/%s", url.PathEscape(sessionID), format)
	return c.do(ctx, "download "+string(format), http.MethodGet, path, nil, "")
}

func (c *Client) Mapping(ctx context.Context, sessionID string) ([]byte, error) {
	return c.do(ctx, "mapping", http.MethodGet, "/results/"+url.PathEscape(sessionID)+"/mapping", nil, "")
}

// do issues one request and classifies the result. It never retries.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: creating request: %w", op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.send(op, req)
}

func (c *Client) send(op string, req *http.Request) ([]byte, error) {
	reqID := uuid.New().String()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", op, ctxErr)
		}
		log.Printf("client.%s: [%s] %s %s failed after %s: %v", op, reqID, req.Method, req.URL.Path, time.Since(start), err)
		return nil, &domain.TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode/100 != 2 {
		log.Printf("client.%s: [%s] %s %s -> %d", op, reqID, req.Method, req.URL.Path, resp.StatusCode)
		return nil, &domain.ServerError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
		}
	}
	return raw, nil
}

// errorMessage extracts the server's explanation from an error body such as
// {"error": "Session not found"}.
func errorMessage(raw []byte) string {
	if !gjson.ValidBytes(raw) {
		return ""
	}
	res := gjson.ParseBytes(raw)
	for _, key := range []string{"error", "message", "detail"} {
		if v := res.Get(key); v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
			return strings.TrimSpace(v.Str)
		}
	}
	return ""
}

func decodeStatus(raw []byte) (*domain.StatusReply, error) {
	if !gjson.ValidBytes(raw) {
		return nil, &domain.DecodeError{Op: "status", Err: fmt.Errorf("invalid JSON body")}
	}
	res := gjson.ParseBytes(raw)
	reply := &domain.StatusReply{
		Status:  strings.ToLower(strings.TrimSpace(res.Get("status").String())),
		Message: strings.TrimSpace(res.Get("message").String()),
	}
	if p, ok := numeric(res.Get("progress")); ok {
		pct := int(math.Round(p))
		pct = max(0, min(100, pct))
		reply.Progress = &pct
	}
	return reply, nil
}

// numeric reads a number that may have been sent as a JSON string.
func numeric(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Num, true
	case gjson.String:
		s := strings.TrimSuffix(strings.TrimSpace(v.Str), "%")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
