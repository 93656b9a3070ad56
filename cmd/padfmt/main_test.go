package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunVersion(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run([]string{"version"}, strings.NewReader(""), &out, &errOut); code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr %q)", code, errOut.String())
	}
	if !strings.Contains(out.String(), "padfmt version=dev commit=none build_date=unknown") {
		t.Fatalf("unexpected version output: %q", out.String())
	}
}

func TestRunFormatStdin(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"format", "--language", "pinescript"}, strings.NewReader("if a\nb\n"), &out, &errOut)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr %q)", code, errOut.String())
	}
	if out.String() != "if a\n  b\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRunReportsErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"format", "--write"}, strings.NewReader("x"), &out, &errOut)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(errOut.String(), "padfmt: --write requires a file path") {
		t.Fatalf("unexpected stderr: %q", errOut.String())
	}
}
