package main

import (
	"fmt"
	"io"
	"os"

	"github.com/r9s-ai/padfmt/cli"
)

// Set by -ldflags at build time.
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	err := cli.Run(args, cli.Options{
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		BuildInfo: cli.BuildInfo{
			Version:   version,
			Commit:    commit,
			BuildDate: buildDate,
		},
	})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "padfmt: %v\n", err)
		return 1
	}
	return 0
}
