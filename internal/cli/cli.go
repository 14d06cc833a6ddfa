// Package cli implements the scormpack command-line interface.
//
// This package provides commands for packaging web content as SCORM 1.2
// archives and for running the HTTP upload service. The CLI is built using
// cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - build: package a local HTML file or zip bundle into a SCORM zip
//   - serve: run the HTTP upload service
//   - completion: generate shell completion scripts
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mreiter/scormpack/pkg/buildinfo"
)

// appName is the application name used for display.
const appName = "scormpack"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "scormpack wraps web content into SCORM 1.2 packages",
		Long:         `scormpack packages a single HTML document or a zip bundle of web course files (HTML/CSS/JS/assets) into a SCORM 1.2-conformant zip that a Learning Management System can import and launch.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}
