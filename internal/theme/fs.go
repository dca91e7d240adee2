// fs.go holds small filesystem helpers: CollectHTML walks a directory for
// templates, and overlayFS lets override files shadow embedded ones.
package theme

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
)

// CollectHTML walks fsys recursively and returns every *.html path in
// slash form.
func CollectHTML(fsys fs.FS) ([]string, error) {
	var files []string

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			files = append(files, filepath.ToSlash(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// overlayFS serves a file from upper when it exists there and from lower
// otherwise.  Only Open is layered; callers name files explicitly rather
// than globbing.
type overlayFS struct {
	upper, lower fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.upper.Open(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return o.lower.Open(name)
}
