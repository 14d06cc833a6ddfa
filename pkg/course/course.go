// Package course implements the content resolver: it stages an uploaded
// blob (a single HTML document or a zip bundle) into a disposable directory
// tree, enumerates the staged files, and determines the launch document.
//
// A staged Course is ephemeral. It is created per invocation, consumed by the
// manifest builder and the packaging step, and released with [Course.Close].
// Concurrent invocations never interact because every Stage call creates its
// own temporary staging root.
package course

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mreiter/scormpack/pkg/errors"
)

// RootDocument is the conventional launch document name at the tree root.
const RootDocument = "index.html"

// Course is a normalized content tree staged on local disk.
//
// Files holds forward-slash relative paths of every regular file under the
// staging root, sorted lexicographically. LaunchFile is always a member of
// Files and references an HTML document.
type Course struct {
	root       string
	Files      []string
	LaunchFile string
}

// Root returns the absolute path of the staging directory.
func (c *Course) Root() string {
	return c.root
}

// Open opens a staged file by its relative path.
func (c *Course) Open(rel string) (io.ReadCloser, error) {
	if err := errors.ValidateRelPath(rel); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(c.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open staged file %s", rel)
	}
	return f, nil
}

// Close removes the staging directory. It is safe to call more than once.
func (c *Course) Close() error {
	if c.root == "" {
		return nil
	}
	root := c.root
	c.root = ""
	return os.RemoveAll(root)
}

// Stage resolves an uploaded blob into a staged Course.
//
// The declared filename decides the staging mode: a ".zip" extension means
// the blob is extracted as an archive, ".html"/".htm" means it is staged as
// a single document. Single documents are renamed to "index.html" unless the
// name already ends in "index.html" or "index.htm", so the upload can serve
// unambiguously as the launch point.
//
// Error codes: INVALID_INPUT for unsupported names, INVALID_ARCHIVE for
// malformed zips, INVALID_PATH for traversal or symlink entries,
// LIMIT_EXCEEDED when extraction guards trip, and NO_CONTENT_FOUND when the
// staged tree contains no HTML document. The staging directory is removed
// on every failure path.
func Stage(blob []byte, filename string, limits Limits) (*Course, error) {
	if err := errors.ValidateUploadName(filename); err != nil {
		return nil, err
	}

	root, err := os.MkdirTemp("", "scormpack-*")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create staging directory")
	}

	c, err := stage(root, blob, filename, limits.normalized())
	if err != nil {
		_ = os.RemoveAll(root)
		return nil, err
	}
	return c, nil
}

func stage(root string, blob []byte, filename string, limits Limits) (*Course, error) {
	if strings.EqualFold(path.Ext(filename), ".zip") {
		if err := extract(root, blob, limits); err != nil {
			return nil, err
		}
	} else {
		target := RootDocument
		lower := strings.ToLower(filename)
		if strings.HasSuffix(lower, "index.html") || strings.HasSuffix(lower, "index.htm") {
			target = filename
		}
		if err := os.WriteFile(filepath.Join(root, target), blob, 0o644); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "stage document %s", target)
		}
	}

	files, err := enumerate(root)
	if err != nil {
		return nil, err
	}

	launch, err := selectLaunch(files)
	if err != nil {
		return nil, err
	}

	return &Course{root: root, Files: files, LaunchFile: launch}, nil
}

// enumerate walks the staging tree and returns every regular file as a
// forward-slash relative path, sorted lexicographically. Symlinks are
// skipped so nothing staged can point outside the root.
func enumerate(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "enumerate staged files")
	}
	sort.Strings(files)
	return files, nil
}

// selectLaunch applies the launch-file policy: a root-level index.html wins;
// otherwise the first HTML document in sorted path order is used. Nested
// index.html files get no special treatment.
func selectLaunch(files []string) (string, error) {
	for _, f := range files {
		if f == RootDocument {
			return f, nil
		}
	}
	for _, f := range files {
		if IsHTML(f) {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeNoContentFound, "no HTML files found in uploaded content")
}

// IsHTML reports whether the path names an HTML/HTM document.
func IsHTML(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".html", ".htm":
		return true
	}
	return false
}
