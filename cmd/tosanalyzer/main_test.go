package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"TOSAnalyzer/internal/logging"
)

const testConfig = `
logging:
  level: error
summarizer:
  backend: none
cache:
  backend: none
`

func writeConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(testConfig), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	t.Setenv("SUMMARIZER_BACKEND", "")
	t.Setenv("CACHE_BACKEND", "")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeCommand_Stdin(t *testing.T) {
	out, err := runRoot(t, "We may terminate your account.", "--config", writeConfig(t), "analyze")
	if err != nil {
		t.Fatalf("analyze returned error: %v", err)
	}
	if !strings.Contains(out, `"aggressiveLanguage": [`) || !strings.Contains(out, `"terminate"`) {
		t.Fatalf("missing aggressive phrases in output:\n%s", out)
	}
	if !strings.HasSuffix(out, "Overall safety: 43% (Potentially Unsafe)\n") {
		t.Fatalf("missing safety line:\n%s", out)
	}
}

func TestAnalyzeCommand_File(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "tos.txt")
	if err := os.WriteFile(doc, []byte("Disputes go to binding arbitration."), 0o600); err != nil {
		t.Fatalf("write doc: %v", err)
	}

	out, err := runRoot(t, "", "--config", writeConfig(t), "analyze", "-f", doc)
	if err != nil {
		t.Fatalf("analyze returned error: %v", err)
	}
	if !strings.Contains(out, `"binding arbitration"`) {
		t.Fatalf("output missing phrase:\n%s", out)
	}
}

func TestAnalyzeCommand_Errors(t *testing.T) {
	cfg := writeConfig(t)

	if _, err := runRoot(t, "   ", "--config", cfg, "analyze"); err == nil {
		t.Fatal("expected error for empty input")
	}
	if _, err := runRoot(t, "", "--config", cfg, "analyze", "-f", filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

type failingCloser struct{}

func (failingCloser) Close() error { return errors.New("redis: connection reset") }

func TestCloseApplication_LogsError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	closeApplication(failingCloser{}, logging.NewWithWriter(&buf, "info", "text"))

	if !strings.Contains(buf.String(), "close application") || !strings.Contains(buf.String(), "connection reset") {
		t.Fatalf("close error not logged: %s", buf.String())
	}
}
