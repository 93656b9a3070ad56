package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/r9s-ai/padfmt/internal/config"
	"github.com/r9s-ai/padfmt/internal/lsp"
)

type ServeRuntimeOptions struct {
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	BuildInfo BuildInfo
	Settings  *config.Settings
	Verbose   bool
}

type ServeRunner func(opts ServeRuntimeOptions) error

func newServeCmd(opts Options, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the formatting language server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeWithOptions(opts, flags)
		},
	}
}

func runServeWithOptions(opts Options, flags *globalFlags) error {
	settings, err := flags.loadSettings(opts)
	if err != nil {
		return err
	}
	return opts.ServeRunner(ServeRuntimeOptions{
		Stdin:     opts.Stdin,
		Stdout:    opts.Stdout,
		Stderr:    opts.Stderr,
		BuildInfo: opts.BuildInfo,
		Settings:  settings,
		Verbose:   flags.verbose,
	})
}

func defaultServeRunner(opts ServeRuntimeOptions) error {
	if opts.BuildInfo.Version != "" {
		lsp.ServerVersion = opts.BuildInfo.Version
	}
	logger := newLogger(opts.Stderr, opts.Verbose)
	defer func() { _ = logger.Sync() }()

	logger.Info("starting language server", zap.String("version", lsp.ServerVersion))
	srv := lsp.NewServerWithSettings(opts.Stdin, opts.Stdout, logger, opts.Settings)
	if err := srv.Run(); err != nil {
		return fmt.Errorf("server exited with error: %w", err)
	}
	return nil
}
