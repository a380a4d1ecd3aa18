// Package mail sends account emails.
package mail

//go:generate mockgen -destination=mock/mock_mailer.go -package=mailmock github.com/mcoot/arkham-companion/internal/mail Mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"text/template"
)

// Message is a plain-text email
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds SMTP server settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTP sends mail through an SMTP relay
type SMTP struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// Ensure SMTP implements Mailer
var _ Mailer = (*SMTP)(nil)

// NewSMTP creates an SMTP mailer
func NewSMTP(cfg SMTPConfig) *SMTP {
	return &SMTP{cfg: cfg, send: smtp.SendMail}
}

// Send delivers msg; the context only guards against starting after cancellation
func (m *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.From, []string{msg.To}, m.encode(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

func (m *SMTP) encode(msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + m.cfg.From + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// Log writes messages to the logger instead of sending them
type Log struct {
	logger *slog.Logger
}

// Ensure Log implements Mailer
var _ Mailer = (*Log)(nil)

// NewLog creates a mailer for development that only logs
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger.With("component", "mail")}
}

func (m *Log) Send(_ context.Context, msg Message) error {
	m.logger.Info("mail not sent (log mailer)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body))
	return nil
}

var (
	verificationTemplate = template.Must(template.New("verification").Parse(
		`Hello {{.Name}},

Welcome to the Arkham companion. Confirm your email address with this code:

    {{.Token}}
{{if .Link}}
Or follow this link: {{.Link}}
{{end}}`))

	resetTemplate = template.Must(template.New("reset").Parse(
		`Hello {{.Name}},

Someone asked to reset the password for {{.Email}}. Use this code to choose a new one:

    {{.Token}}
{{if .Link}}
Or follow this link: {{.Link}}
{{end}}
If it was not you, ignore this message.
`))
)

// TokenMail carries the fields rendered into verification and reset mails
type TokenMail struct {
	Name  string
	Email string
	Token string
	// Link is a complete URL carrying the token, or empty
	Link  string
}

// VerificationMessage renders the account verification email
func VerificationMessage(data TokenMail) (Message, error) {
	return render(verificationTemplate, "Verify your email", data)
}

// ResetPasswordMessage renders the password reset email
func ResetPasswordMessage(data TokenMail) (Message, error) {
	return render(resetTemplate, "Reset your password", data)
}

func render(tpl *template.Template, subject string, data TokenMail) (Message, error) {
	var body bytes.Buffer
	if err := tpl.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("render %s mail: %w", tpl.Name(), err)
	}
	return Message{To: data.Email, Subject: subject, Body: body.String()}, nil
}
