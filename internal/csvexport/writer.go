package csvexport

import (
	"encoding/csv"
	"io"
	"regexp"
	"strings"

	"gapcheck/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Gap ID",
	"Topic",
	"Severity",
	"Description",
	"Recommendation",
}

// Writer wraps csv.Writer for exporting report gaps as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteGaps writes one row per gap, in report order.
func (w *Writer) WriteGaps(gaps []domain.Gap) error {
	for i := range gaps {
		if err := w.csv.Write(gapToRow(&gaps[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteReport writes a BOM, the header and every gap of report to out.
func WriteReport(out io.Writer, report *domain.AnalysisReport) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteGaps(report.Gaps); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func gapToRow(g *domain.Gap) []string {
	return []string{
		g.ID,
		sanitizeCell(g.Topic),
		string(g.Severity),
		sanitizeCell(g.Description),
		sanitizeCell(g.Recommendation),
	}
}

// sanitizeCell defuses spreadsheet formula injection from AI-generated text.
func sanitizeCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@", rune(s[0])) {
		return "'" + s
	}
	return s
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a session identifier for use in an object key.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
