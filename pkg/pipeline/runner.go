package pipeline

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mreiter/scormpack/pkg/archive"
	"github.com/mreiter/scormpack/pkg/course"
	"github.com/mreiter/scormpack/pkg/manifest"
)

// Runner encapsulates pipeline execution. It is stateless apart from the
// identifier generator and logger, so multiple goroutines can safely share
// one Runner with different options.
type Runner struct {
	IDGen  manifest.IDGenerator
	Logger *log.Logger
}

// NewRunner creates a runner with the given identifier generator.
// If idgen is nil, a random reverse-DNS generator is used.
// If logger is nil, log.Default() is used.
func NewRunner(idgen manifest.IDGenerator, logger *log.Logger) *Runner {
	if idgen == nil {
		idgen = manifest.NewIDGenerator("")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{IDGen: idgen, Logger: logger}
}

// Execute runs the complete stage → build → package pipeline, writing the
// produced archive to w. Nothing is written to w until staging and manifest
// generation have succeeded, so a failed invocation never emits a partial
// package. The staging directory is released on every exit path.
func (r *Runner) Execute(ctx context.Context, opts Options, blob []byte, w io.Writer) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	idgen := r.IDGen
	if opts.IDPrefix != "" {
		idgen = manifest.NewIDGenerator(opts.IDPrefix)
	}

	result := &Result{}

	// Stage 1: resolve content
	stageStart := time.Now()
	c, err := course.Stage(blob, opts.UploadName, opts.Limits)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	result.Stats.StageTime = time.Since(stageStart)
	result.Stats.FileCount = len(c.Files)
	result.Files = c.Files
	result.LaunchFile = c.LaunchFile

	r.Logger.Info("staged content",
		"files", len(c.Files),
		"launch", c.LaunchFile,
		"duration", result.Stats.StageTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Title = r.resolveTitle(opts, c)

	// Stage 2: build manifest
	buildStart := time.Now()
	result.Identifier = idgen()
	m, err := manifest.Build(manifest.Spec{
		Title:      result.Title,
		Identifier: result.Identifier,
		LaunchFile: c.LaunchFile,
		Files:      c.Files,
	})
	if err != nil {
		return nil, err
	}
	result.Manifest = m
	result.Stats.BuildTime = time.Since(buildStart)

	r.Logger.Info("built manifest",
		"identifier", result.Identifier,
		"title", result.Title,
		"duration", result.Stats.BuildTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: package
	packageStart := time.Now()
	cw := &countingWriter{w: w}
	if err := archive.Write(cw, c, m); err != nil {
		return nil, err
	}
	result.Stats.PackageTime = time.Since(packageStart)
	result.Stats.PackageBytes = cw.n
	result.PackageName = archive.PackageName(result.Title)

	r.Logger.Info("packaged course",
		"name", result.PackageName,
		"bytes", result.Stats.PackageBytes,
		"duration", result.Stats.PackageTime)

	return result, nil
}

// resolveTitle picks the course title: explicit option, then the launch
// document's <title>, then the default.
func (r *Runner) resolveTitle(opts Options, c *course.Course) string {
	if t := strings.TrimSpace(opts.Title); t != "" {
		return t
	}
	if t, ok := c.Title(); ok {
		r.Logger.Debug("using document title", "title", t)
		return t
	}
	return DefaultTitle
}

// countingWriter tracks bytes written to the underlying writer.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
