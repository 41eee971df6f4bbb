package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Source fixtures used across package tests.
const (
	// ValidSource has three well-formed rows and no study column.
	ValidSource = "effect,se,n\n0.5,0.1,12\n0.2,0.05,30\n1,0.3,8\n"
	// JunkSource resolves by position but no cell is numeric.
	JunkSource = "x,y,z\nfoo,bar,baz\nq,r,s\n"
	// ShortRowSource has only rows narrower than its resolved columns.
	ShortRowSource = "effect,se,n\n1,2\n3\n"
	// StudySource carries an explicit study column.
	StudySource = "estimate,stderr,nobs,study\n0.4,0.2,50,\"Site, A\"\n0.1,0.1,20.0,Site B\n"
)

// WriteSources creates files (name to content) in a fresh temporary
// directory and returns its path.
func WriteSources(t testing.TB, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}
