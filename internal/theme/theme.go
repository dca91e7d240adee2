// Package theme holds the data structures that describe the site's visual
// theme.  A Theme combines:
//
//   - Name       – "default" for the embedded templates, or the override
//     directory's base name.
//   - Root       – absolute override directory on disk ("" when none).
//   - FS         – template files; override files shadow embedded ones
//     path by path.
//   - AssetFunc  – helper injected into templates so they can resolve
//     `{{ asset "css/main.css" }}` to a URL.
//
// The embedded set under templates/ and assets/ is complete on its own; an
// override directory only needs the files it changes.  Override assets live
// in <dir>/assets.
package theme

import (
	"embed"
	"io/fs"
)

//go:embed templates
var embedded embed.FS

//go:embed assets
var embeddedAssets embed.FS

// AssetPrefix is where static assets are served.
const AssetPrefix = "/assets/"

// Theme is returned by Load once all templates are checked.
type Theme struct {
	Name      string
	Root      string
	FS        fs.FS
	Overrides []string // override template paths, relative to Root
	Assets    fs.FS    // static files served under AssetPrefix
	AssetFunc func(string) string
}

// New constructs a Theme whose AssetFunc prefixes AssetPrefix.
func New(name, root string, fsys fs.FS) *Theme {
	return &Theme{
		Name:   name,
		Root:   root,
		FS:     fsys,
		Assets: EmbeddedAssets(),
		AssetFunc: func(p string) string {
			return AssetPrefix + p
		},
	}
}

// Embedded returns the built-in template tree rooted at templates/.
func Embedded() fs.FS { return mustSub(embedded, "templates") }

// EmbeddedAssets returns the built-in static files rooted at assets/.
func EmbeddedAssets() fs.FS { return mustSub(embeddedAssets, "assets") }

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic("theme: embedded " + dir + " missing: " + err.Error())
	}
	return sub
}
