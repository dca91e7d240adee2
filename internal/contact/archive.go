// internal/contact/archive.go
//
// Optional MySQL copy of successful inquiries.
//
// Context
// -------
// When database.archive_dsn is set, the controller hands each successfully
// sent payload to Archive.Save.  The archive is a record for staff, not a
// delivery path: failures are logged by the controller and never change the
// form's state.
package contact

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/cadence/internal/message"
)

// Schema creates the archive table.
const Schema = `CREATE TABLE IF NOT EXISTS contact_inquiry (
  id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
  from_name  VARCHAR(50)   NOT NULL,
  from_email VARCHAR(255)  NOT NULL,
  subject    VARCHAR(100)  NOT NULL,
  message    TEXT          NOT NULL,
  user_agent VARCHAR(512)  NOT NULL DEFAULT '',
  created_at DATETIME(6)   NOT NULL,
  KEY idx_created_at (created_at)
)`

// Inquiry is one archived row.
type Inquiry struct {
	ID        int64     `db:"id"`
	FromName  string    `db:"from_name"`
	FromEmail string    `db:"from_email"`
	Subject   string    `db:"subject"`
	Message   string    `db:"message"`
	UserAgent string    `db:"user_agent"`
	CreatedAt time.Time `db:"created_at"`
}

// Archive writes inquiries through sqlx.
type Archive struct {
	db *sqlx.DB
}

// NewArchive wraps db.
func NewArchive(db *sqlx.DB) *Archive { return &Archive{db: db} }

// EnsureSchema creates the table when it does not exist.
func (a *Archive) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create contact_inquiry: %w", err)
	}
	return nil
}

// Save implements Archiver.
func (a *Archive) Save(ctx context.Context, p message.ContactPayload) error {
	const q = `INSERT INTO contact_inquiry
  (from_name, from_email, subject, message, user_agent, created_at)
VALUES
  (:from_name, :from_email, :subject, :message, :user_agent, :created_at)`

	row := Inquiry{
		FromName:  p.FromName,
		FromEmail: p.FromEmail,
		Subject:   p.Subject,
		Message:   p.Message,
		UserAgent: p.UserAgent,
		CreatedAt: p.Timestamp,
	}
	if _, err := a.db.NamedExecContext(ctx, q, row); err != nil {
		return fmt.Errorf("insert contact_inquiry: %w", err)
	}
	return nil
}

// Recent returns the newest inquiries, newest first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]Inquiry, error) {
	const q = `SELECT id, from_name, from_email, subject, message, user_agent, created_at
FROM contact_inquiry
ORDER BY created_at DESC
LIMIT ?`

	var out []Inquiry
	if err := a.db.SelectContext(ctx, &out, q, limit); err != nil {
		return nil, fmt.Errorf("select contact_inquiry: %w", err)
	}
	return out, nil
}
