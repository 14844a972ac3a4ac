package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"creme-store/apperrors"
	"creme-store/validators"

	"github.com/wneessen/go-mail"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Email struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	HTML    string `json:"html" validate:"required"`
}

type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type Mailer struct {
	from   string
	client sender
}

// New returns a Mailer that refuses to send when SMTP credentials are missing.
func New(cfg Config) (*Mailer, error) {
	m := &Mailer{from: cfg.From}
	if cfg.Host == "" || cfg.Username == "" || cfg.Password == "" {
		log.Printf("Warning: SMTP is not configured, outbound email is disabled")
		return m, nil
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	m.client = client
	return m, nil
}

func (m *Mailer) Configured() bool {
	return m.client != nil
}

// SendBrandedEmail wraps html in the store layout and sends it.
func (m *Mailer) SendBrandedEmail(ctx context.Context, email Email) error {
	email.To = strings.TrimSpace(email.To)
	if violations := validators.Struct(email); violations != nil {
		return apperrors.NewValidationError(violations)
	}
	if !m.Configured() {
		return fmt.Errorf("%w: email sending is not configured", apperrors.ErrFailedPrecondition)
	}

	msg, err := m.buildMessage(email)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email to %s: %w", email.To, err)
	}
	log.Printf("Sent email %q to %s", email.Subject, email.To)
	return nil
}

func (m *Mailer) buildMessage(email Email) (*mail.Msg, error) {
	body, err := renderBranded(email)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(email.To); err != nil {
		return nil, apperrors.NewValidationError(map[string]string{"to": "must be a valid email address"})
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextHTML, body)
	return msg, nil
}

var brandTemplate = template.Must(template.New("branded").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Subject}}</title></head>
<body style="margin:0;background:#f7f1ea;font-family:Georgia,serif;color:#3b2f2a">
<table width="100%" cellpadding="0" cellspacing="0"><tr><td align="center">
<table width="600" cellpadding="24" cellspacing="0" style="background:#ffffff">
<tr><td style="background:#3b2f2a;color:#f7f1ea;font-size:24px;letter-spacing:2px">CREME COLLECTIONS</td></tr>
<tr><td>{{.Body}}</td></tr>
<tr><td style="font-size:12px;color:#8a7b72">Creme Collections, Lahore. You are receiving this email because of activity on your account.</td></tr>
</table>
</td></tr></table>
</body>
</html>`))

func renderBranded(email Email) (string, error) {
	var buf bytes.Buffer
	err := brandTemplate.Execute(&buf, struct {
		Subject string
		Body    template.HTML
	}{
		Subject: email.Subject,
		// Trusted: customers can only address themselves through the send route.
		Body: template.HTML(email.HTML),
	})
	if err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}
