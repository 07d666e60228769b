package mail

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"github.com/filmotheque/movies-api/config"
)

const (
	welcomeSubject = "Bienvenue sur notre plateforme"
	exportSubject  = "Export CSV des films"
	exportBody     = "Veuillez trouver ci-joint l'export CSV des films."
	exportFilename = "movies_export.csv"
)

// Mailer is the outbound mail transport boundary. Delivery is best effort:
// implementations log failures and callers never retry.
type Mailer interface {
	SendWelcomeEmail(ctx context.Context, to, firstName string) error
	SendCSVExport(ctx context.Context, to string, csvContent []byte) error
}

var _ Mailer = (*SMTPMailer)(nil)

type SMTPMailer struct {
	client *gomail.Client
	from   string
	logger *slog.Logger
}

func NewSMTPMailer(cfg config.MailConfig, logger *slog.Logger) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &SMTPMailer{
		client: client,
		from:   cfg.From,
		logger: logger,
	}, nil
}

// SendWelcomeEmail greets a freshly registered user.
func (m *SMTPMailer) SendWelcomeEmail(ctx context.Context, to, firstName string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return m.logSendError(ctx, to, fmt.Errorf("invalid sender address: %w", err))
	}
	if err := msg.To(to); err != nil {
		return m.logSendError(ctx, to, fmt.Errorf("invalid recipient address: %w", err))
	}
	msg.Subject(welcomeSubject)
	msg.SetBodyString(gomail.TypeTextHTML, fmt.Sprintf(
		"<h1>Bienvenue %s !</h1>"+
			"<p>Nous sommes ravis de vous compter parmi nos utilisateurs.</p>"+
			"<p>Votre compte a été créé avec succès.</p>", firstName))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return m.logSendError(ctx, to, err)
	}
	m.logger.InfoContext(ctx, "Welcome email sent", slog.String("to", to))
	return nil
}

// SendCSVExport mails the movie export as an attachment.
func (m *SMTPMailer) SendCSVExport(ctx context.Context, to string, csvContent []byte) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return m.logSendError(ctx, to, fmt.Errorf("invalid sender address: %w", err))
	}
	if err := msg.To(to); err != nil {
		return m.logSendError(ctx, to, fmt.Errorf("invalid recipient address: %w", err))
	}
	msg.Subject(exportSubject)
	msg.SetBodyString(gomail.TypeTextPlain, exportBody)
	if err := msg.AttachReader(exportFilename, bytes.NewReader(csvContent)); err != nil {
		return m.logSendError(ctx, to, fmt.Errorf("failed to attach csv: %w", err))
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return m.logSendError(ctx, to, err)
	}
	m.logger.InfoContext(ctx, "CSV export email sent", slog.String("to", to))
	return nil
}

// logSendError absorbs delivery failures at the transport boundary. The error
// is still returned so callers can count it, but it must never reach a client.
func (m *SMTPMailer) logSendError(ctx context.Context, to string, err error) error {
	m.logger.ErrorContext(ctx, "Mail delivery failed",
		slog.String("to", to), slog.Any("error", err))
	return err
}
