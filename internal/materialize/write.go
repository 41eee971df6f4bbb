package materialize

import (
	"fmt"
	"os"
	"path/filepath"
)

// Write stores the cleaned tables under outDir and the module at
// modulePath, creating directories as needed. It returns the paths written.
// Nothing is written when no dataset survived.
func (a *Artifacts) Write(outDir, modulePath string) ([]string, error) {
	if a.Empty() {
		return nil, nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	written := make([]string, 0, len(a.Tables)+1)
	for _, f := range a.Tables {
		path := filepath.Join(outDir, f.Name)
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", f.Name, err)
		}
		written = append(written, path)
	}

	if dir := filepath.Dir(modulePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return written, fmt.Errorf("create module directory: %w", err)
		}
	}
	if err := os.WriteFile(modulePath, a.Module, 0o644); err != nil {
		return written, fmt.Errorf("write module: %w", err)
	}
	return append(written, modulePath), nil
}
