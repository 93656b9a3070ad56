package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/r9s-ai/padfmt/internal/config"
	"github.com/r9s-ai/padfmt/internal/driver"
	"github.com/r9s-ai/padfmt/internal/format"
)

var (
	changedColor = color.New(color.FgGreen)
	checkColor   = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

type formatOptions struct {
	tabSize  int
	useTabs  bool
	language string
	write    bool
	check    bool
	jobs     int
}

func newFormatCmd(opts Options, flags *globalFlags) *cobra.Command {
	formatOpts := formatOptions{tabSize: 2}
	cmd := &cobra.Command{
		Use:   "format [file|dir|-]...",
		Short: "Format source files",
		Long: "Format source files with the generic bracket-depth formatter, or the\n" +
			"keyword-aware formatter for PineScript (.pine) files. Without arguments\n" +
			"the document is read from stdin and written to stdout.",
		Args: func(cmd *cobra.Command, args []string) error {
			if formatOpts.write && formatOpts.check {
				return errors.New("--write cannot be used with --check")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := flags.loadSettings(opts)
			if err != nil {
				return err
			}
			if err := applyFormatFlags(cmd, settings, formatOpts); err != nil {
				return err
			}
			lang, err := resolveLanguage(formatOpts.language)
			if err != nil {
				return err
			}

			paths := normalizePaths(args)
			if len(paths) == 1 && paths[0] == "-" {
				return formatStdin(opts, settings, lang, formatOpts)
			}
			for _, p := range paths {
				if p == "-" {
					return errors.New("stdin cannot be combined with file paths")
				}
			}
			return formatFiles(cmd, opts, settings, lang, formatOpts, paths)
		},
	}

	fs := cmd.Flags()
	fs.IntVar(&formatOpts.tabSize, "tab-size", 2, "indent width when using spaces")
	fs.BoolVar(&formatOpts.useTabs, "tabs", false, "use tabs for indentation")
	fs.StringVar(&formatOpts.language, "language", "", "force a language (e.g. pinescript, javascript); default detects by extension")
	fs.BoolVarP(&formatOpts.write, "write", "w", false, "write result back to file")
	fs.BoolVar(&formatOpts.check, "check", false, "list files whose formatting would change and fail if any")
	fs.IntVar(&formatOpts.jobs, "jobs", 0, "files formatted in parallel (default GOMAXPROCS)")
	return cmd
}

// applyFormatFlags lets explicitly set flags override the loaded settings.
func applyFormatFlags(cmd *cobra.Command, settings *config.Settings, fo formatOptions) error {
	if cmd.Flags().Changed("tab-size") {
		settings.TabSize = fo.tabSize
	}
	if cmd.Flags().Changed("tabs") {
		settings.InsertSpaces = !fo.useTabs
	}
	return settings.Validate()
}

func resolveLanguage(name string) (format.Language, error) {
	if strings.TrimSpace(name) == "" {
		return "", nil
	}
	lang, ok := format.ParseLanguage(name)
	if !ok {
		return "", fmt.Errorf("unknown language %q", name)
	}
	return lang, nil
}

func normalizePaths(args []string) []string {
	paths := make([]string, 0, len(args))
	for _, a := range args {
		if p := strings.TrimSpace(a); p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return []string{"-"}
	}
	return paths
}

func formatStdin(opts Options, settings *config.Settings, lang format.Language, fo formatOptions) error {
	if fo.write {
		return errors.New("--write requires a file path")
	}
	src, err := io.ReadAll(opts.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	if lang == "" {
		lang = format.LanguagePlainText
	}
	formatted := format.FormatFor(lang, string(src), settings.Profile())
	if fo.check {
		if formatted != string(src) {
			_, _ = checkColor.Fprintln(opts.Stdout, "<stdin>")
			return errors.New("formatting changes required")
		}
		return nil
	}
	_, err = io.WriteString(opts.Stdout, formatted)
	return err
}

func formatFiles(cmd *cobra.Command, opts Options, settings *config.Settings, lang format.Language, fo formatOptions, paths []string) error {
	results, err := driver.FormatPaths(cmd.Context(), paths, driver.FormatOptions{
		Settings: settings,
		Language: lang,
		Check:    fo.check,
		Write:    fo.write,
		Jobs:     fo.jobs,
	})
	if err != nil {
		return err
	}

	var failed, changed int
	for _, res := range results {
		switch {
		case res.Err != nil:
			failed++
			_, _ = errorColor.Fprintf(opts.Stderr, "format: %s: %v\n", res.Path, res.Err)
		case fo.check:
			if res.Changed {
				changed++
				_, _ = checkColor.Fprintln(opts.Stdout, res.Path)
			}
		case fo.write:
			if res.Changed {
				_, _ = changedColor.Fprintf(opts.Stdout, "reformatted %s\n", res.Path)
			}
		default:
			if _, err := opts.Stdout.Write(res.Formatted); err != nil {
				return err
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to format %d file(s)", failed)
	}
	if fo.check && changed > 0 {
		return fmt.Errorf("formatting changes required in %d file(s)", changed)
	}
	return nil
}
