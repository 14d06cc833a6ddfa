package cli

import (
	"github.com/spf13/cobra"

	"github.com/mreiter/scormpack/internal/server"
	"github.com/mreiter/scormpack/pkg/manifest"
	"github.com/mreiter/scormpack/pkg/pipeline"
)

// serveCommand creates the serve command running the HTTP upload service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
		maxUpload  int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP upload service",
		Long: `Run the HTTP upload service.

The service presents an upload form at / and accepts multipart uploads at
POST /packages, responding with the finished SCORM zip as a download. It is
stateless: each request stages into its own disposable directory, so
concurrent uploads never interact.

Configuration is read from an optional TOML file; flags override file
values.

Examples:
  scormpack serve
  scormpack serve --addr 127.0.0.1:9000
  scormpack serve --config /etc/scormpack.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("max-upload") {
				cfg.MaxUploadBytes = maxUpload
			}

			runner := pipeline.NewRunner(manifest.NewIDGenerator(cfg.IDPrefix), c.Logger)
			return server.New(cfg, runner, c.Logger).ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultConfig().Addr, "listen address")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")
	cmd.Flags().Int64Var(&maxUpload, "max-upload", server.DefaultConfig().MaxUploadBytes, "maximum upload size in bytes")

	return cmd
}
