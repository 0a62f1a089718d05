package mailer

import (
	"context"
	"fmt"
	"os"
	"strings"

	"secret-santa/internal/delivery"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

// Config holds the SMTP settings for the email channel. Port 465 with
// implicit TLS is the default.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	DryRun   bool
}

// Mailer sends one Secret Santa email per giver over SMTP.
type Mailer struct {
	cfg Config
	log zerolog.Logger
}

// New creates a mailer, validating that the required SMTP settings are
// present.
func New(cfg Config) (*Mailer, error) {
	var missing []string
	for key, val := range map[string]string{
		"SMTP_HOST":     cfg.Host,
		"SMTP_USERNAME": cfg.Username,
		"SMTP_PASSWORD": cfg.Password,
		"SMTP_FROM":     cfg.From,
	} {
		if val == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing SMTP settings: %s", strings.Join(missing, ", "))
	}
	if cfg.Port <= 0 {
		cfg.Port = 465
	}

	return &Mailer{
		cfg: cfg,
		log: zerolog.New(os.Stdout).With().Str("component", "mailer").Logger(),
	}, nil
}

// Deliver sends one email per giver that has an address; givers without
// one are skipped silently. With DryRun set, messages are built but not
// sent.
func (m *Mailer) Deliver(ctx context.Context, notifications []delivery.Notification) (int, error) {
	var msgs []*mail.Msg
	for _, n := range notifications {
		if n.GiverEmail == "" {
			continue
		}
		msg, err := m.buildMessage(n)
		if err != nil {
			return 0, fmt.Errorf("failed to build message for %s: %w", n.GiverName, err)
		}
		msgs = append(msgs, msg)
	}

	if len(msgs) == 0 {
		return 0, nil
	}
	if m.cfg.DryRun {
		m.log.Info().Int("count", len(msgs)).Msg("Dry run, skipping SMTP dispatch")
		return len(msgs), nil
	}

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("failed to send emails: %w", err)
	}

	m.log.Info().Int("count", len(msgs)).Msg("Emails sent")
	return len(msgs), nil
}

func (m *Mailer) buildMessage(n delivery.Notification) (*mail.Msg, error) {
	msg := mail.NewMsg()

	var err error
	if m.cfg.FromName != "" {
		err = msg.FromFormat(m.cfg.FromName, m.cfg.From)
	} else {
		err = msg.From(m.cfg.From)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(n.GiverEmail); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject("Secret Santa")
	msg.SetBodyString(mail.TypeTextPlain, messageBody(n))
	return msg, nil
}

// messageBody renders the per-giver email text. Only the giver learns
// anything from it.
func messageBody(n delivery.Notification) string {
	return fmt.Sprintf(
		"Hey %s,\n\n"+
			"Santa told me that this year you get to pick out something nice for %s!\n\n"+
			"Be original, and not a word to anyone. 😉\n\n"+
			"Greetings,\n"+
			"The Super Secret Santa Elf Committee",
		n.GiverName, n.RecipientName,
	)
}
