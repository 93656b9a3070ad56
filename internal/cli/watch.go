package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/padfmt/internal/watch"
)

func newWatchCmd(opts Options, flags *globalFlags) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Format files on save",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := flags.loadSettings(opts)
			if err != nil {
				return err
			}
			root := opts.Dir
			if len(args) == 1 {
				root = args[0]
			}

			logger := newLogger(opts.Stderr, flags.verbose)
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return watch.New(root, settings, logger, watch.WithDebounce(debounce)).Run(ctx)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before a changed file is formatted")
	return cmd
}
