// Package ingest holds the document ingestion plumbing: decoding uploaded
// bytes into per-page plain text for the core pipeline.
package ingest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractPDFPages decodes a PDF into per-page plain text, one entry per
// page in document order. Pages whose text cannot be extracted come back
// empty; deciding whether the document as a whole is empty is the
// chunker's job.
func ExtractPDFPages(data []byte) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}

	return pages, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^\w \-.]`)

// SanitizeFilename strips path components and characters that could be used
// for traversal or header injection, and caps the length at 255.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "")

	if len(name) > 255 {
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		if len(base) > 240 {
			base = base[:240]
		}
		name = base + ext
	}

	if name == "" || name == "." || name == "/" {
		name = "document.pdf"
	}
	return name
}
