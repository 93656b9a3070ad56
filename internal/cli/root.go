package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/r9s-ai/padfmt/internal/config"
)

type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

type Options struct {
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
	BuildInfo   BuildInfo
	ServeRunner ServeRunner
	// Dir is where default config files are looked up.
	Dir string
}

type globalFlags struct {
	configPath string
	verbose    bool
}

func Run(args []string, opts Options) error {
	resolved := normalizeOptions(opts)
	root := newRootCmd(resolved)
	root.SetArgs(args)
	return root.Execute()
}

func normalizeOptions(opts Options) Options {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.ServeRunner == nil {
		opts.ServeRunner = defaultServeRunner
	}
	if opts.Dir == "" {
		if wd, err := os.Getwd(); err == nil {
			opts.Dir = wd
		}
	}
	return opts
}

func newRootCmd(opts Options) *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "padfmt",
		Short:         "Code editor formatter and language server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeWithOptions(opts, flags)
		},
	}
	cmd.SetIn(opts.Stdin)
	cmd.SetOut(opts.Stdout)
	cmd.SetErr(opts.Stderr)

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "settings file (.toml, .yaml); default searches .padfmt.* in the working directory")
	pf.BoolVar(&flags.verbose, "verbose", false, "enable debug logging")

	cmd.AddCommand(
		newServeCmd(opts, flags),
		newFormatCmd(opts, flags),
		newWatchCmd(opts, flags),
		newVersionCmd(opts),
	)
	return cmd
}

func (f *globalFlags) loadSettings(opts Options) (*config.Settings, error) {
	return config.Load(opts.Dir, f.configPath)
}

// newLogger writes console-encoded logs to w.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core).Named("padfmt")
}
