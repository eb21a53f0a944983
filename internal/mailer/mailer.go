// Package mailer delivers account verification and password recovery email.
package mailer

//go:generate mockgen -destination=../mocks/mock_mailer.go -package=mocks github.com/PYROP3/pets-io/internal/mailer Mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	verificationSubject = "Confirmação de conta pets.io"
	recoverySubject     = "Recuperação de conta pets.io"
)

// Mailer composes and dispatches account lifecycle messages. The engine never
// calls it; the route layer does, after the engine has committed its writes.
type Mailer interface {
	SendVerification(ctx context.Context, to, name, token string) error
	SendRecovery(ctx context.Context, to, name, nonce string) error
}

type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	SourceEmail string
	ServerURL   string
}

// SMTPMailer sends mail over SMTP with embedded HTML templates.
type SMTPMailer struct {
	client      *mail.Client
	templates   *template.Template
	sourceEmail string
	serverURL   string
}

func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	templates, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail templates: %w", err)
	}

	return &SMTPMailer{
		client:      client,
		templates:   templates,
		sourceEmail: cfg.SourceEmail,
		serverURL:   cfg.ServerURL,
	}, nil
}

func (m *SMTPMailer) SendVerification(ctx context.Context, to, name, token string) error {
	return m.send(ctx, to, verificationSubject, "verification.html", map[string]string{
		"MainURL":   m.serverURL,
		"Name":      name,
		"AuthToken": token,
	})
}

func (m *SMTPMailer) SendRecovery(ctx context.Context, to, name, nonce string) error {
	return m.send(ctx, to, recoverySubject, "recovery.html", map[string]string{
		"MainURL":       m.serverURL,
		"Name":          name,
		"PasswordNonce": nonce,
	})
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, templateName string, data map[string]string) error {
	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", templateName, err)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.sourceEmail); err != nil {
		return fmt.Errorf("invalid source address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body.String())

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}

	return nil
}
