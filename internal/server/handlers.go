package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/mreiter/scormpack/pkg/errors"
	"github.com/mreiter/scormpack/pkg/pipeline"
)

// indexPage is the upload form served at the root. It posts a multipart
// form to /packages and the browser saves the response as a download.
const indexPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>scormpack</title></head>
<body>
<h1>HTML &rarr; SCORM 1.2 package maker</h1>
<p>Upload a single HTML file, or a ZIP containing a web course
(HTML/CSS/JS/assets), and download it wrapped as a minimal SCORM 1.2
package for LMS import.</p>
<form action="/packages" method="post" enctype="multipart/form-data">
  <p><label>Course title <input type="text" name="title" placeholder="My HTML Course"></label></p>
  <p><label>Course file <input type="file" name="file" accept=".html,.htm,.zip" required></label></p>
  <p><button type="submit">Create SCORM package</button></p>
</form>
</body>
</html>
`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, indexPage)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleCreatePackage accepts a multipart upload ("file" plus an optional
// "title" field) and responds with the finished SCORM zip as an attachment.
// The package is assembled in memory before any response byte is written,
// so a failed invocation never sends a partial archive.
func (s *Server) handleCreatePackage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := s.uploadFile(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer file.Close()

	blob, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read upload"))
		return
	}

	opts := pipeline.Options{
		Title:      r.FormValue("title"),
		UploadName: filepath.Base(header.Filename),
		IDPrefix:   s.cfg.IDPrefix,
		Limits:     s.cfg.CourseLimits(),
	}

	var pkg bytes.Buffer
	result, err := s.runner.Execute(r.Context(), opts, blob, &pkg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Length", strconv.Itoa(pkg.Len()))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.PackageName))
	_, _ = w.Write(pkg.Bytes())
}

// uploadFile extracts the "file" part from the multipart form.
func (s *Server) uploadFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, nil, errors.New(errors.ErrCodeLimitExceeded, "upload exceeds the %d byte limit", tooLarge.Limit)
		}
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse upload form")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "missing file field")
	}
	return file, header, nil
}

// writeError maps pipeline errors onto HTTP responses. User-facing error
// codes become 400s with a machine-readable body; limit breaches become
// 413; everything else is a 500 with the detail kept in the server log.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, errors.ErrCodeLimitExceeded):
		status = http.StatusRequestEntityTooLarge
		msg = errors.UserMessage(err)
	case errors.IsUserError(err):
		status = http.StatusBadRequest
		msg = errors.UserMessage(err)
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("packaging failed",
			"error", err,
			"request_id", middleware.GetReqID(r.Context()))
	}

	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": msg,
		"code":  string(code),
	})
}
