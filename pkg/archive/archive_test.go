package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mreiter/scormpack/pkg/course"
)

func stageZip(t *testing.T, files map[string]string) *course.Course {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	c, err := course.Stage(buf.Bytes(), "course.zip", course.Limits{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func readEntries(t *testing.T, blob []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	require.NoError(t, err)

	entries := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries[f.Name] = string(data)
	}
	return entries
}

func TestWrite(t *testing.T) {
	c := stageZip(t, map[string]string{
		"index.html":     "<html></html>",
		"docs/page.html": "<html><body>p</body></html>",
		"css/style.css":  "body {}",
	})
	manifestBytes := []byte(`<?xml version="1.0" encoding="UTF-8"?><manifest/>`)

	var out bytes.Buffer
	require.NoError(t, Write(&out, c, manifestBytes))

	entries := readEntries(t, out.Bytes())
	assert.Len(t, entries, 4)
	assert.Equal(t, "<html></html>", entries["index.html"])
	assert.Equal(t, "<html><body>p</body></html>", entries["docs/page.html"])
	assert.Equal(t, "body {}", entries["css/style.css"])
	assert.Equal(t, string(manifestBytes), entries["imsmanifest.xml"])
}

func TestWriteForwardSlashEntryNames(t *testing.T) {
	c := stageZip(t, map[string]string{
		"a/b/c/deep.html": "<html></html>",
	})

	var out bytes.Buffer
	require.NoError(t, Write(&out, c, []byte("<manifest/>")))

	for name := range readEntries(t, out.Bytes()) {
		assert.NotContains(t, name, "\\")
	}
}

func TestPackageName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Demo Course", "Demo_Course_SCORM.zip"},
		{"My HTML Course", "My_HTML_Course_SCORM.zip"},
		{"  spaced  out ", "spaced_out_SCORM.zip"},
		{"///", "course_SCORM.zip"},
	}

	for _, tt := range tests {
		if got := PackageName(tt.title); got != tt.want {
			t.Errorf("PackageName(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}
