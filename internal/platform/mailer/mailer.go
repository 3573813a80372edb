// Package mailer delivers plain-text email.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"dsa_arena/internal/platform/logger"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// New returns an SMTP mailer when a host is configured and a logging mailer otherwise.
func New(cfg SMTPConfig, log *logger.Logger) Mailer {
	if strings.TrimSpace(cfg.Host) == "" {
		log.Warn("SMTP_HOST not set, emails will only be logged")
		return &LogMailer{log: log}
	}
	return &SMTPMailer{cfg: cfg}
}

type SMTPMailer struct {
	cfg SMTPConfig
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := m.cfg.Host + ":" + strconv.Itoa(m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, buildMessage(m.cfg.From, to, subject, body, time.Now())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

func buildMessage(from, to, subject, body string, now time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + sanitizeHeader(subject) + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	log *logger.Logger
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.log.Info("email (not sent, SMTP disabled)", "to", to, "subject", subject, "body", body)
	return nil
}
