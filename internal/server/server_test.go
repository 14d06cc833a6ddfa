package server

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mreiter/scormpack/pkg/manifest"
	"github.com/mreiter/scormpack/pkg/pipeline"
)

func testServer() *Server {
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(manifest.FixedID("com.test.fixed"), logger)
	return New(DefaultConfig(), runner, logger)
}

// multipartUpload builds a multipart request body with a file part and an
// optional title field.
func multipartUpload(t *testing.T, filename string, content []byte, title string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if title != "" {
		require.NoError(t, mw.WriteField("title", title))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func postUpload(t *testing.T, s *Server, filename string, content []byte, title string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartUpload(t, filename, content, title)
	req := httptest.NewRequest(http.MethodPost, "/packages", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleIndex(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	testServer().Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SCORM")
	assert.Contains(t, rec.Body.String(), `action="/packages"`)
}

func TestHandleHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	testServer().Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestCreatePackageSingleHTML(t *testing.T) {
	rec := postUpload(t, testServer(), "lesson.html", []byte("<html></html>"), "Demo Course")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Demo_Course_SCORM.zip"`, rec.Header().Get("Content-Disposition"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"index.html", "imsmanifest.xml"}, names)
}

func TestCreatePackageZipBundle(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("docs/index.html")
	require.NoError(t, err)
	_, err = w.Write([]byte("<html></html>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	rec := postUpload(t, testServer(), "bundle.zip", buf.Bytes(), "Bundle")
	require.Equal(t, http.StatusOK, rec.Code)

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
}

func TestCreatePackageErrors(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		content    []byte
		wantStatus int
		wantCode   string
	}{
		{"unsupported extension", "malware.exe", []byte("x"), http.StatusBadRequest, "INVALID_INPUT"},
		{"corrupt zip", "course.zip", []byte("not a zip"), http.StatusBadRequest, "INVALID_ARCHIVE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postUpload(t, testServer(), tt.filename, tt.content, "T")
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["code"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestCreatePackageNoHTMLContent(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("style.css")
	require.NoError(t, err)
	_, err = w.Write([]byte("body {}"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	rec := postUpload(t, testServer(), "course.zip", buf.Bytes(), "T")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NO_CONTENT_FOUND", body["code"])
}

func TestCreatePackageMissingFileField(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "T"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/packages", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	testServer().Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePackageUploadTooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxUploadBytes = 512
	logger := log.New(io.Discard)
	s := New(cfg, pipeline.NewRunner(nil, logger), logger)

	rec := postUpload(t, s, "lesson.html", bytes.Repeat([]byte("a"), 4096), "T")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
