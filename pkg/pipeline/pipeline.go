// Package pipeline provides the core packaging pipeline for scormpack.
//
// This package implements the complete stage → build → package pipeline that
// can be used by CLI and HTTP server components. By centralizing this logic,
// we ensure consistent behavior across all entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Stage: resolve the uploaded blob into a normalized content tree and
//     determine the launch document
//  2. Build: generate the SCORM 1.2 imsmanifest.xml for the staged tree
//  3. Package: zip the staged tree plus the manifest into the final artifact
//
// A single invocation is entirely sequential; each invocation stages into
// its own disposable directory, so concurrent invocations never interact.
//
// # Usage
//
//	runner := pipeline.NewRunner(nil, logger)
//	opts := pipeline.Options{
//	    Title:      "Demo Course",
//	    UploadName: "course.zip",
//	}
//	var out bytes.Buffer
//	result, err := runner.Execute(ctx, opts, blob, &out)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.PackageName, len(result.Files))
package pipeline

import (
	"strings"
	"time"

	"github.com/mreiter/scormpack/pkg/course"
	"github.com/mreiter/scormpack/pkg/errors"
)

// DefaultTitle is used when neither the caller nor the launch document
// provides a course title.
const DefaultTitle = "My HTML Course"

// Options controls a single pipeline invocation.
type Options struct {
	// Title is the course display title. When empty, the pipeline falls
	// back to the launch document's <title>, then to DefaultTitle.
	Title string

	// UploadName is the declared filename of the uploaded blob. Its
	// extension selects the staging mode (.html/.htm/.zip).
	UploadName string

	// IDPrefix overrides the reverse-DNS prefix of generated package
	// identifiers. Empty selects the package default.
	IDPrefix string

	// Limits bounds archive extraction. Zero fields use course.DefaultLimits.
	Limits course.Limits
}

// ValidateAndSetDefaults checks the options. Title may be empty here; the
// runner resolves it during execution.
func (o *Options) ValidateAndSetDefaults() error {
	if err := errors.ValidateUploadName(o.UploadName); err != nil {
		return err
	}
	if strings.TrimSpace(o.Title) != "" {
		if err := errors.ValidateTitle(o.Title); err != nil {
			return err
		}
	}
	return nil
}

// Stats captures timing and size information for one invocation.
type Stats struct {
	StageTime   time.Duration
	BuildTime   time.Duration
	PackageTime time.Duration

	// FileCount is the number of staged files (manifest excluded).
	FileCount int
	// PackageBytes is the size of the produced archive.
	PackageBytes int64
}

// Result describes a completed packaging run.
type Result struct {
	// PackageName is the download filename, e.g. "Demo_Course_SCORM.zip".
	PackageName string
	// Identifier is the generated package identifier in the manifest.
	Identifier string
	// Title is the resolved course title.
	Title string
	// LaunchFile is the resolved launch document path.
	LaunchFile string
	// Files are the staged relative paths, sorted.
	Files []string
	// Manifest holds the generated imsmanifest.xml bytes.
	Manifest []byte

	Stats Stats
}
