package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/tidwall/gjson"

	"gapcheck/internal/domain"
	"gapcheck/internal/port"
)

// Upload sends both documents as a single multipart request. Progress is
// reported from the bytes handed to the transport, so it only moves forward.
func (c *Client) Upload(ctx context.Context, input port.SubmitInput) (*domain.UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, doc := range []domain.UploadedDocument{input.Curriculum, input.Standards} {
		if err := writePart(w, doc); err != nil {
			return nil, fmt.Errorf("building multipart body: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	total := int64(buf.Len())
	body := &progressReader{
		r:     bytes.NewReader(buf.Bytes()),
		total: total,
		fn:    input.OnProgress,
		last:  -1,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", body)
	if err != nil {
		return nil, fmt.Errorf("upload: creating request: %w", err)
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", w.FormDataContentType())

	raw, err := c.send("upload", req)
	if err != nil {
		return nil, err
	}
	return decodeUpload(raw)
}

func writePart(w *multipart.Writer, doc domain.UploadedDocument) error {
	name := doc.FileName
	if name == "" {
		name = string(doc.Role) + ".pdf"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(string(doc.Role)), escapeQuotes(name)))
	h.Set("Content-Type", doc.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(doc.Content)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func decodeUpload(raw []byte) (*domain.UploadResult, error) {
	if !gjson.ValidBytes(raw) {
		return nil, &domain.DecodeError{Op: "upload", Err: fmt.Errorf("invalid JSON body")}
	}
	res := gjson.ParseBytes(raw)
	out := &domain.UploadResult{
		SessionID:    strings.TrimSpace(res.Get("session_id").String()),
		CurriculumID: strings.TrimSpace(res.Get("files.curriculum").String()),
		StandardsID:  strings.TrimSpace(res.Get("files.standards").String()),
	}
	switch {
	case out.SessionID == "":
		return nil, &domain.DecodeError{Op: "upload", Err: fmt.Errorf("response has no session_id")}
	case out.CurriculumID == "" || out.StandardsID == "":
		return nil, &domain.DecodeError{Op: "upload", Err: fmt.Errorf("response is missing file identifiers")}
	}
	return out, nil
}

// progressReader reports whole-percent progress as the body is consumed.
// A callback fires only when the percentage strictly increases.
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	last  int
	fn    port.ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.report()
	}
	return n, err
}

func (p *progressReader) report() {
	if p.fn == nil || p.total <= 0 {
		return
	}
	pct := int(p.read * 100 / p.total)
	if pct > 100 {
		pct = 100
	}
	if pct > p.last {
		p.last = pct
		p.fn(pct)
	}
}
