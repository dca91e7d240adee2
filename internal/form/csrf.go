// internal/form/csrf.go
//
// Cadence – Forms subsystem: stateless CSRF token utilities.
//
// Context
//   The contact page embeds a hidden `csrf_token` input generated at render
//   time, and the JSON API expects the same token in the X-CSRF-Token header.
//   The server verifies it on POST to ensure the request originated from a
//   page it rendered.  The token is *stateless*:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(secret, nonce+unixMicro) )
//
//   •  nonce – 16 random bytes.
//   •  unixMicro – microseconds since Unix epoch, 8 bytes, big-endian.
//   •  HMAC – calculated with the site secret.
//
//   Validation checks the signature and ensures the timestamp is within
//   maxAge.  Any instance holding the same key can verify any token.
//
// Workflow
//   •  SetKey(cfg.Contact.CSRFKey) once at boot (optional).
//   •  GenerateToken()   → returns token string for renderer.
//   •  VerifyToken(tok)  → constant-time verify; false on any failure.
//
//------------------------------------------------------------------------------

package form

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	tokenBytes   = 16 + 8 + sha256.Size // nonce + ts + sig
	maxAge       = 2 * time.Hour
	secretEnvKey = "CADENCE_CSRF_KEY" // 32-byte base64url key
)

var (
	secretMu  sync.Mutex
	secretKey []byte
)

// ErrShortKey is returned by SetKey for keys under 32 bytes.
var ErrShortKey = errors.New("csrf key must decode to at least 32 bytes")

// SetKey installs a base64url-encoded secret.  An empty key leaves the
// env/random fallback in place.
func SetKey(encoded string) error {
	if encoded == "" {
		return nil
	}
	b, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return err
	}
	if len(b) < 32 {
		return ErrShortKey
	}
	secretMu.Lock()
	secretKey = b
	secretMu.Unlock()
	return nil
}

// GenerateToken creates a new CSRF token.  Call once per form render.
func GenerateToken() (string, error) {
	return generateAt(time.Now())
}

func generateAt(now time.Time) (string, error) {
	sec := fetchSecret()

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(now.UnixMicro()))

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, nonce...)
	buf = append(buf, ts...)
	buf = append(buf, sign(sec, nonce, ts)...)

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// VerifyToken returns true if tok passes HMAC and age checks.
func VerifyToken(tok string) bool {
	if tok == "" {
		return false
	}
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}

	nonce, tsBytes, sig := raw[:16], raw[16:24], raw[24:]

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(tsBytes)))
	if time.Since(issued) > maxAge || time.Until(issued) > time.Minute {
		return false
	}

	return hmac.Equal(sig, sign(fetchSecret(), nonce, tsBytes))
}

func sign(sec, nonce, ts []byte) []byte {
	mac := hmac.New(sha256.New, sec)
	mac.Write(nonce)
	mac.Write(ts)
	return mac.Sum(nil)
}

// fetchSecret returns the process-wide secret.  Without SetKey it reads
// CADENCE_CSRF_KEY, and failing that generates an ephemeral random key.
func fetchSecret() []byte {
	secretMu.Lock()
	defer secretMu.Unlock()
	if secretKey != nil {
		return secretKey
	}
	if env := os.Getenv(secretEnvKey); env != "" {
		if b, err := base64.RawURLEncoding.DecodeString(env); err == nil && len(b) >= 32 {
			secretKey = b
			return secretKey
		}
	}
	secretKey = make([]byte, 32)
	_, _ = rand.Read(secretKey)
	zap.S().Warnw("csrf key not configured, using ephemeral random key", "env", secretEnvKey)
	return secretKey
}
