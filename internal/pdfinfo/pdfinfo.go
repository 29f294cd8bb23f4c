package pdfinfo

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Info is what the CLI shows about a document before submitting it.
type Info struct {
	Pages int
	// HasText is false for scanned documents without a text layer, which the
	// analysis server cannot read.
	HasText bool
}

// Inspect parses content as a PDF. Malformed input returns an error instead
// of panicking.
func Inspect(content []byte) (info *Info, err error) {
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	info = &Info{Pages: reader.NumPage()}
	for i := 1; i <= info.Pages; i++ {
		if pageHasText(reader.Page(i)) {
			info.HasText = true
			break
		}
	}
	return info, nil
}

// pageHasText treats unreadable pages as having no text.
func pageHasText(page pdf.Page) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	if page.V.IsNull() {
		return false
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return false
	}
	return strings.TrimSpace(text) != ""
}
