// Package archive writes the final SCORM package: a deflate-compressed zip
// holding every staged file at its relative path plus the generated
// imsmanifest.xml at the archive root.
package archive

import (
	"archive/zip"
	"io"

	"github.com/mreiter/scormpack/pkg/course"
	"github.com/mreiter/scormpack/pkg/errors"
	"github.com/mreiter/scormpack/pkg/manifest"
)

// Write streams the packaged course to w. Entry names use forward slashes
// and no directory entries are emitted, matching the layout an LMS expects
// to import.
func Write(w io.Writer, c *course.Course, manifestBytes []byte) error {
	zw := zip.NewWriter(w)

	for _, rel := range c.Files {
		if err := writeFile(zw, c, rel); err != nil {
			zw.Close()
			return err
		}
	}

	mw, err := zw.CreateHeader(&zip.FileHeader{Name: manifest.Filename, Method: zip.Deflate})
	if err != nil {
		zw.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "create manifest entry")
	}
	if _, err := mw.Write(manifestBytes); err != nil {
		zw.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "write manifest entry")
	}

	if err := zw.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "finalize package")
	}
	return nil
}

func writeFile(zw *zip.Writer, c *course.Course, rel string) error {
	f, err := c.Open(rel)
	if err != nil {
		return err
	}
	defer f.Close()

	ew, err := zw.CreateHeader(&zip.FileHeader{Name: rel, Method: zip.Deflate})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create package entry %s", rel)
	}
	if _, err := io.Copy(ew, f); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write package entry %s", rel)
	}
	return nil
}

// PackageName derives the download filename from the course title, e.g.
// "Demo Course" becomes "Demo_Course_SCORM.zip".
func PackageName(title string) string {
	return errors.SanitizeTitle(title) + "_SCORM.zip"
}
