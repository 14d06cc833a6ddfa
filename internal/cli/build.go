package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mreiter/scormpack/pkg/errors"
	"github.com/mreiter/scormpack/pkg/manifest"
	"github.com/mreiter/scormpack/pkg/pipeline"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	title    string // course title (defaults to the document <title>)
	output   string // output path (derived from the title if empty)
	idPrefix string // reverse-DNS identifier prefix
}

// buildCommand creates the build command for one-shot local packaging.
func (c *CLI) buildCommand() *cobra.Command {
	opts := buildOpts{}

	cmd := &cobra.Command{
		Use:   "build <course.html|course.zip>",
		Short: "Package web content as a SCORM 1.2 zip",
		Long: `Package web content as a SCORM 1.2 zip.

The input is a single HTML document or a zip bundle of course files
(HTML/CSS/JS/assets). The output archive contains every input file plus a
generated imsmanifest.xml and can be imported into any SCORM 1.2 LMS.

Examples:
  scormpack build lesson.html --title "Demo Course"
  scormpack build course.zip -o demo_scorm.zip
  scormpack build course.zip --id-prefix org.example.lms`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "course title (defaults to the document title)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (derived from the title if empty)")
	cmd.Flags().StringVar(&opts.idPrefix, "id-prefix", "", "reverse-DNS prefix for the package identifier")

	return cmd
}

// runBuild reads the input, runs the packaging pipeline, and writes the
// produced archive next to the working directory.
func (c *CLI) runBuild(ctx context.Context, input string, opts buildOpts) error {
	blob, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	runner := pipeline.NewRunner(manifest.NewIDGenerator(opts.idPrefix), c.Logger)

	prog := newProgress(c.Logger)
	spin := newSpinner(ctx, "Packaging course...")
	spin.start()

	var pkg bytes.Buffer
	result, err := runner.Execute(ctx, pipeline.Options{
		Title:      opts.title,
		UploadName: filepath.Base(input),
	}, blob, &pkg)
	spin.stop()
	if err != nil {
		printError("%s", errors.UserMessage(err))
		return err
	}

	output := opts.output
	if output == "" {
		output = result.PackageName
	}
	if err := os.WriteFile(output, pkg.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	prog.done(fmt.Sprintf("Packaged %d files", result.Stats.FileCount))

	printSuccess("SCORM package created")
	printFile(output)
	printKeyValue("title", result.Title)
	printKeyValue("identifier", result.Identifier)
	printKeyValue("launch", result.LaunchFile)
	printKeyValue("files", fmt.Sprintf("%d (%s)", result.Stats.FileCount, formatBytes(result.Stats.PackageBytes)))

	return nil
}

// formatBytes renders a byte count in a short human-readable form.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
