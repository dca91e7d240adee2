// internal/session/session.go
//
// Cadence – Visitor identity.
//
// Context
//   The contact form keeps per-visitor state on the server (see
//   internal/contact).  A visitor is identified by a random UUID stored in
//   the “cadence_visitor” cookie.  The cookie carries no personal data and is
//   not signed; malformed values are replaced with a fresh id.
//
//   Middleware ensures every request has an id and puts it in the context so
//   handlers never touch the cookie directly.
//
//------------------------------------------------------------------------------

package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	cookieName = "cadence_visitor"
	cookieTTL  = 30 * 24 * time.Hour
)

type ctxKey struct{}

// Middleware reads or mints the visitor id and stores it in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := fromCookie(r)
		if !ok {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     cookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
				Expires:  time.Now().Add(cookieTTL),
			})
		}
		next.ServeHTTP(w, r.WithContext(WithVisitor(r.Context(), id)))
	})
}

// WithVisitor stores id in ctx.
func WithVisitor(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// VisitorID returns the id set by Middleware.
//
// ok == false when the middleware did not run.
func VisitorID(ctx context.Context) (id string, ok bool) {
	id, ok = ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

func fromCookie(r *http.Request) (string, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return "", false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}
