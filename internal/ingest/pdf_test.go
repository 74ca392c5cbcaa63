package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	t.Run("keeps plain filenames", func(t *testing.T) {
		assert.Equal(t, "report.pdf", SanitizeFilename("report.pdf"))
		assert.Equal(t, "my report-v2.pdf", SanitizeFilename("my report-v2.pdf"))
	})

	t.Run("strips directory traversal", func(t *testing.T) {
		assert.Equal(t, "passwd.pdf", SanitizeFilename("../../etc/passwd.pdf"))
		assert.Equal(t, "doc.pdf", SanitizeFilename("/abs/path/doc.pdf"))
	})

	t.Run("strips windows path separators", func(t *testing.T) {
		assert.Equal(t, "doc.pdf", SanitizeFilename(`C:\Users\me\doc.pdf`))
	})

	t.Run("removes unsafe characters", func(t *testing.T) {
		assert.Equal(t, "reportname.pdf", SanitizeFilename("report\r\n:name?.pdf"))
	})

	t.Run("caps overlong names but keeps the extension", func(t *testing.T) {
		long := strings.Repeat("a", 300) + ".pdf"
		got := SanitizeFilename(long)
		assert.LessOrEqual(t, len(got), 255)
		assert.True(t, strings.HasSuffix(got, ".pdf"))
	})

	t.Run("falls back for empty results", func(t *testing.T) {
		assert.Equal(t, "document.pdf", SanitizeFilename(""))
		assert.Equal(t, "document.pdf", SanitizeFilename("???"))
	})
}
