// internal/message/smtp.go
//
// SMTP relay for contact messages.
//
// Context
//   Renders an HTML email from the payload and relays it through the
//   configured SMTP host.  The sender's address goes into Reply-To so staff
//   can answer directly; From stays the school's own address so SPF/DKIM
//   alignment holds.
//
//   Dial, TLS, and every SMTP command share one deadline (mail.timeout).
//   That is the only timeout on the send path; the contact controller
//   never cancels a send in flight.
//
//------------------------------------------------------------------------------

package message

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"time"

	"go.uber.org/zap"
)

// SMTPConfig configures an SMTPSender.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       string
	SiteName string
	Timeout  time.Duration
}

// SMTPSender relays messages over SMTP.
type SMTPSender struct {
	cfg  SMTPConfig
	tmpl *template.Template
}

var contactEmail = template.Must(template.New("contact").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>New Contact Form Submission</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <h1>New message from the {{.SiteName}} website</h1>
  <p><strong>From:</strong> {{.P.FromName}} ({{.P.FromEmail}})</p>
  <p><strong>Subject:</strong> {{.P.Subject}}</p>
  <p><strong>Message:</strong></p>
  <div style="white-space: pre-wrap; border-left: 4px solid #14b8a6; padding: 8px 12px;">{{.P.Message}}</div>
  <p style="color: #888; font-size: 12px;">Sent {{.P.Timestamp.Format "2006-01-02 15:04:05 MST"}} from {{.P.UserAgent}}</p>
</body>
</html>`))

// NewSMTPSender returns a sender for cfg.  From defaults to Username.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SMTPSender{cfg: cfg, tmpl: contactEmail}
}

// Send implements Sender.
func (s *SMTPSender) Send(ctx context.Context, p ContactPayload) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid contact payload: %w", err)
	}

	msg, err := s.compose(p)
	if err != nil {
		return Result{}, err
	}
	if err := s.relay(ctx, msg); err != nil {
		zap.S().Errorw("smtp relay failed", "host", s.cfg.Host, "err", err)
		return Result{}, &SendError{Reason: ReasonSendFailed, Err: err}
	}
	zap.S().Infow("contact email relayed", "to", s.cfg.To, "subject", p.Subject)
	return OK, nil
}

func (s *SMTPSender) compose(p ContactPayload) ([]byte, error) {
	var body bytes.Buffer
	if err := s.tmpl.Execute(&body, struct {
		SiteName string
		P        ContactPayload
	}{s.cfg.SiteName, p}); err != nil {
		return nil, fmt.Errorf("execute email template: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", s.cfg.To)
	fmt.Fprintf(&msg, "Reply-To: %s\r\n", headerSafe(p.FromEmail))
	fmt.Fprintf(&msg, "Subject: Contact Form: %s\r\n", headerSafe(p.Subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", p.Timestamp.Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

func (s *SMTPSender) relay(ctx context.Context, msg []byte) error {
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	deadline := time.Now().Add(s.cfg.Timeout)

	d := net.Dialer{Deadline: deadline}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	_ = conn.SetDeadline(deadline)

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return err
		}
	}
	if s.cfg.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
				return err
			}
		}
	}

	if err := c.Mail(s.cfg.From); err != nil {
		return err
	}
	if err := c.Rcpt(s.cfg.To); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
