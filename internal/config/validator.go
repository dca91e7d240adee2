// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` once defaults are
// applied.  Any tag mismatch or validation error aborts startup, so the
// binary never runs with partial or malformed configuration.
//
// Cross-field rules that tags cannot express (SMTP host without a recipient,
// for instance) live in `checkMail` below.

package config

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = validator.New()

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	if err := v.Struct(c); err != nil {
		return err
	}
	return checkMail(&c.Mail)
}

// checkMail rejects a half-configured SMTP relay.
func checkMail(m *Mail) error {
	if m.SMTPHost == "" {
		return nil
	}
	if m.SMTPPort == "" {
		return errors.New("mail.smtp_port is required when mail.smtp_host is set")
	}
	if m.To == "" {
		return errors.New("mail.to is required when mail.smtp_host is set")
	}
	return nil
}
