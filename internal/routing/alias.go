// internal/routing/alias.go
//
// Friendly-path aliases.
//
// Context
// -------
// Marketing links and printed flyers use short paths (/lessons, /enroll)
// that must land on canonical component paths (/courses, /contact).  The
// table comes from routing.aliases in conf/global.yaml and is fixed at
// start-up, so lookups need no locking.
//
// Workflow
// --------
//  1. main builds the table via routing.NewAliases(cfg.Routing.Aliases).
//  2. Aliases.Middleware runs before the chi router matches routes.
//  3. On a hit r.URL.Path is rewritten; on a miss the request passes through.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.

package routing

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/yanizio/cadence/internal/logger"
)

// Aliases maps friendly paths to canonical paths.  Zero value is an empty
// table.
type Aliases struct {
	data map[string]string
}

// NewAliases validates m and returns a table.  Both sides must be absolute
// paths, and a target may not itself be an alias.
func NewAliases(m map[string]string) (*Aliases, error) {
	data := make(map[string]string, len(m))
	for from, to := range m {
		f, t := clean(from), clean(to)
		if f == "" || t == "" {
			return nil, fmt.Errorf("alias %q → %q: paths must start with /", from, to)
		}
		if f == t {
			return nil, fmt.Errorf("alias %q points at itself", from)
		}
		data[f] = t
	}
	for f, t := range data {
		if _, chained := data[t]; chained {
			return nil, fmt.Errorf("alias %q → %q: target is another alias", f, t)
		}
	}
	return &Aliases{data: data}, nil
}

// Resolve returns the canonical path for p.
func (a *Aliases) Resolve(p string) (string, bool) {
	if a == nil {
		return "", false
	}
	t, ok := a.data[clean(p)]
	return t, ok
}

// Len reports the number of aliases.
func (a *Aliases) Len() int {
	if a == nil {
		return 0
	}
	return len(a.data)
}

// Middleware rewrites alias paths before routing.
func (a *Aliases) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if target, ok := a.Resolve(r.URL.Path); ok {
			logger.FromContext(r.Context()).Debugw("alias rewrite", "from", r.URL.Path, "to", target)
			r.URL.Path = target
			r.URL.RawPath = ""
		}
		next.ServeHTTP(w, r)
	})
}

// clean normalises p ("/lessons/" → "/lessons").  Relative paths yield "".
func clean(p string) string {
	if !strings.HasPrefix(p, "/") {
		return ""
	}
	return path.Clean(p)
}
