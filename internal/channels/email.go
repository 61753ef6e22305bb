package channels

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outbox writes one plain-text .eml artifact per send, filename keyed by
// timestamp and recipient address.
type Outbox struct {
	dir      string
	fromName string
	fromAddr string
}

func NewOutbox(dir, fromName, fromAddr string) (*Outbox, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create outbox dir: %w", err)
	}
	return &Outbox{dir: dir, fromName: fromName, fromAddr: fromAddr}, nil
}

func (o *Outbox) Write(toName, toAddr, subject, body string) (string, error) {
	safeTo := strings.ReplaceAll(toAddr, "@", "_at_")
	safeTo = strings.ReplaceAll(safeTo, "/", "_")
	name := fmt.Sprintf("%d-%s.eml", time.Now().Unix(), safeTo)
	path := filepath.Join(o.dir, name)

	content := fmt.Sprintf(
		"From: %s <%s>\nTo: %s <%s>\nSubject: %s\nContent-Type: text/plain; charset=utf-8\n\n%s\n",
		o.fromName, o.fromAddr, toName, toAddr, subject, body,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write eml: %w", err)
	}
	return path, nil
}

// ConsoleEmail is the default transport: the artifact is the delivery.
type ConsoleEmail struct {
	outbox *Outbox
	log    *zap.Logger
}

func NewConsoleEmail(outbox *Outbox, log *zap.Logger) *ConsoleEmail {
	return &ConsoleEmail{outbox: outbox, log: log}
}

func (c *ConsoleEmail) Send(_ context.Context, toName, toAddr, subject, body string) (Receipt, error) {
	path, err := c.outbox.Write(toName, toAddr, subject, body)
	if err != nil {
		return Receipt{}, err
	}
	c.log.Info("console email written", zap.String("to", toAddr), zap.String("path", path))
	return Receipt{SID: "dry_run", Status: "queued", To: toAddr, Path: path}, nil
}

func (c *ConsoleEmail) Compose(toName, toAddr, subject, body string) (string, error) {
	return c.outbox.Write(toName, toAddr, subject, body)
}

// SMTPEmail sends through a real SMTP relay and still writes the outbox
// artifact for audit. Bare SMTP has no provider id, so the receipt carries
// a synthetic one.
type SMTPEmail struct {
	host   string
	port   string
	user   string
	pass   string
	outbox *Outbox
	log    *zap.Logger
}

func NewSMTPEmail(host, port, user, pass string, outbox *Outbox, log *zap.Logger) *SMTPEmail {
	return &SMTPEmail{host: host, port: port, user: user, pass: pass, outbox: outbox, log: log}
}

func (s *SMTPEmail) Send(_ context.Context, toName, toAddr, subject, body string) (Receipt, error) {
	msg := fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s <%s>\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		s.outbox.fromName, s.outbox.fromAddr, toName, toAddr, subject, body,
	)

	var auth smtp.Auth
	if s.user != "" && s.pass != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}
	addr := s.host + ":" + s.port
	if err := smtp.SendMail(addr, auth, s.outbox.fromAddr, []string{toAddr}, []byte(msg)); err != nil {
		return Receipt{}, fmt.Errorf("smtp send: %w", err)
	}

	if path, err := s.outbox.Write(toName, toAddr, subject, body); err != nil {
		s.log.Warn("outbox artifact write failed", zap.Error(err), zap.String("to", toAddr))
	} else {
		s.log.Info("smtp email sent", zap.String("to", toAddr), zap.String("path", path))
	}

	return Receipt{SID: "smtp_" + uuid.NewString(), Status: "sent", To: toAddr}, nil
}

func (s *SMTPEmail) Compose(toName, toAddr, subject, body string) (string, error) {
	return s.outbox.Write(toName, toAddr, subject, body)
}
