package theme

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Load returns the embedded theme, shadowed by overrideDir when set.  The
// view parses every listed override at startup, so a syntax error fails
// boot instead of the first request.
func Load(overrideDir string) (*Theme, error) {
	base := Embedded()
	if overrideDir == "" {
		return New("default", "", base), nil
	}

	if info, err := os.Stat(overrideDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("theme dir %s not found", overrideDir)
	}
	upper := os.DirFS(overrideDir)

	files, err := CollectHTML(upper)
	if err != nil {
		return nil, fmt.Errorf("scan theme overrides: %w", err)
	}
	zap.S().Infow("theme overrides found", "dir", overrideDir, "files", len(files))

	th := New(filepath.Base(overrideDir), overrideDir, overlayFS{upper: upper, lower: base})
	th.Overrides = files
	if info, err := os.Stat(filepath.Join(overrideDir, "assets")); err == nil && info.IsDir() {
		th.Assets = overlayFS{upper: os.DirFS(filepath.Join(overrideDir, "assets")), lower: th.Assets}
	}
	return th, nil
}
