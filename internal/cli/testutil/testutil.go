// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/maive-lab/mockcsv/internal/cli/output"
)

// SetupTestProject creates a temporary project with a mockcsv.yaml and a
// data directory holding one usable and one unusable source table.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	if err := os.MkdirAll(filepath.Join(tmpDir, "data"), 0755); err != nil {
		t.Fatalf("failed to create data directory: %v", err)
	}

	config := `source_dir: data
out_dir: out
module_path: out/mockData.ts
state_path: .mockcsv/state.db
`
	if err := os.WriteFile(filepath.Join(tmpDir, "mockcsv.yaml"), []byte(config), 0644); err != nil {
		t.Fatalf("failed to create mockcsv.yaml: %v", err)
	}

	sources := map[string]string{
		"trials.csv": `effect,se,n
0.5,0.1,100
0.3,0.2,50`,
		"notes.csv": `effect,se,n
abc,0.1,10`,
	}
	for name, content := range sources {
		if err := os.WriteFile(filepath.Join(tmpDir, "data", name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}

	return tmpDir
}

// CaptureRenderer returns a non-terminal renderer in mode that writes into
// the returned stdout and stderr buffers.
func CaptureRenderer(mode output.OutputMode) (*output.Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return output.NewRendererWithTTY(out, errOut, false, mode), out, errOut
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertContains checks that the string contains the expected substring.
func AssertContains(t *testing.T, s, expected string) {
	t.Helper()
	if !strings.Contains(s, expected) {
		t.Errorf("string %q does not contain expected %q", s, expected)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and basic structure.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	// Check for balanced code fences
	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	// Check that headers have content
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
