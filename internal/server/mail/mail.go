// Package mail renders and delivers the password reset email.
package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	gomail "github.com/wneessen/go-mail"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	textTmpl = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/reset.txt.tmpl"))
	htmlTmpl = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/reset.html.tmpl"))
)

// ErrNotConfigured is returned by Send when no SMTP host was configured.
var ErrNotConfigured = errors.New("mail: smtp not configured")

// Mailer delivers a reset link to a user.
type Mailer interface {
	SendReset(ctx context.Context, msg ResetMessage) error
}

// ResetMessage is everything the reset template needs.
type ResetMessage struct {
	To       string
	Username string
	Company  string
	Link     string
	Valid    time.Duration
}

// Config holds the SMTP settings. An empty Host disables delivery.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends through a single SMTP relay. A new connection is dialed
// per message, resets are rare enough that pooling buys nothing.
type SMTPMailer struct {
	cfg Config
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendReset(ctx context.Context, msg ResetMessage) error {
	if m.cfg.Host == "" {
		return ErrNotConfigured
	}

	out, err := Compose(m.cfg.From, msg)
	if err != nil {
		return err
	}

	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}

	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("mail: new client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}

// Compose builds the multipart reset message without sending it.
func Compose(from string, msg ResetMessage) (*gomail.Msg, error) {
	text, html, err := Render(msg)
	if err != nil {
		return nil, err
	}

	out := gomail.NewMsg()
	if err := out.From(from); err != nil {
		return nil, fmt.Errorf("mail: from: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("mail: to: %w", err)
	}
	out.Subject(subject(msg.Company))
	out.SetBodyString(gomail.TypeTextPlain, text)
	out.AddAlternativeString(gomail.TypeTextHTML, html)
	return out, nil
}

// Render executes both templates for msg.
func Render(msg ResetMessage) (text, html string, err error) {
	data := struct {
		Username string
		Company  string
		Link     string
		Valid    string
	}{
		Username: msg.Username,
		Company:  msg.Company,
		Link:     msg.Link,
		Valid:    humanize(msg.Valid),
	}

	var tb, hb bytes.Buffer
	if err := textTmpl.Execute(&tb, data); err != nil {
		return "", "", fmt.Errorf("mail: render text: %w", err)
	}
	if err := htmlTmpl.Execute(&hb, data); err != nil {
		return "", "", fmt.Errorf("mail: render html: %w", err)
	}
	return tb.String(), hb.String(), nil
}

func subject(company string) string {
	if company == "" {
		return "Reset your password"
	}
	return "Reset your " + company + " password"
}

func humanize(d time.Duration) string {
	switch {
	case d <= 0:
		return "24 hours"
	case d%time.Hour == 0 && d >= 2*time.Hour:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d == time.Hour:
		return "1 hour"
	default:
		return d.String()
	}
}
