package whatsapp

import (
	"context"
	"fmt"
	"os"
	"strings"

	"secret-santa/internal/delivery"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

type Config struct {
	DataDir string
	// CountryCode replaces a leading 0 in local numbers, e.g. "32"
	// turns 0477123456 into 32477123456.
	CountryCode string
}

// Service delivers Secret Santa notifications over WhatsApp.
type Service struct {
	client *whatsmeow.Client
	cfg    *Config
	log    zerolog.Logger
}

// NewService creates a WhatsApp service backed by a sqlite session
// store under cfg.DataDir.
func NewService(cfg *Config) (*Service, error) {
	ctx := context.Background()
	logger := zerolog.New(os.Stdout).With().Str("component", "whatsapp").Logger()

	// Nil whatsmeow loggers fall back to no-op logging.
	container, err := sqlstore.New(ctx, "sqlite3", fmt.Sprintf("file:%s/whatsmeow.db?_foreign_keys=on", cfg.DataDir), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	service := &Service{
		client: whatsmeow.NewClient(deviceStore, nil),
		cfg:    cfg,
		log:    logger,
	}
	service.client.AddEventHandler(service.eventHandler)

	return service, nil
}

// NormalizeNumber strips formatting characters and applies the country
// code to local numbers starting with 0.
func NormalizeNumber(number, countryCode string) string {
	for _, ch := range []string{"+", " ", "-", "(", ")"} {
		number = strings.ReplaceAll(number, ch, "")
	}
	if countryCode != "" && strings.HasPrefix(number, "0") {
		number = countryCode + number[1:]
	}
	return number
}

// Connect connects to WhatsApp, showing a pairing QR code in the
// terminal on first use.
func (s *Service) Connect() error {
	if s.client.Store.ID != nil {
		if err := s.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		return nil
	}

	qrChan, _ := s.client.GetQRChannel(context.Background())
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	for evt := range qrChan {
		if evt.Event != "code" {
			s.log.Info().Str("event", evt.Event).Msg("Login event")
			continue
		}
		q, err := qrcode.New(evt.Code, qrcode.Medium)
		if err != nil {
			fmt.Printf("QR Code: %s\n", evt.Code)
		} else {
			fmt.Println("\n" + q.ToSmallString(false))
		}
		fmt.Println("📱 Scan the QR code with WhatsApp: Settings > Linked Devices > Link a Device")
	}
	return nil
}

// Disconnect disconnects from WhatsApp.
func (s *Service) Disconnect() {
	s.client.Disconnect()
}

// Deliver sends one WhatsApp message per giver that has a phone number;
// givers without one are skipped silently.
func (s *Service) Deliver(ctx context.Context, notifications []delivery.Notification) (int, error) {
	sent := 0
	for _, n := range notifications {
		if n.GiverPhone == "" {
			continue
		}
		if err := s.send(ctx, n); err != nil {
			return sent, fmt.Errorf("failed to notify %s: %w", n.GiverName, err)
		}
		sent++
	}
	s.log.Info().Int("count", sent).Msg("WhatsApp notifications sent")
	return sent, nil
}

func (s *Service) send(ctx context.Context, n delivery.Notification) error {
	jid, err := s.resolveJID(ctx, n.GiverPhone)
	if err != nil {
		return err
	}

	message := fmt.Sprintf(
		"🎅 Hey %s!\n\n"+
			"Santa told me that this year you get to pick out something nice for *%s*.\n\n"+
			"Be original, and not a word to anyone! 😉",
		n.GiverName, n.RecipientName,
	)

	s.log.Debug().Str("jid", jid.String()).Msg("Sending notification")
	if _, err := s.client.SendMessage(ctx, jid, &waE2E.Message{Conversation: &message}); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// resolveJID verifies the number is registered on WhatsApp and returns
// the server-confirmed JID.
func (s *Service) resolveJID(ctx context.Context, phone string) (types.JID, error) {
	number := NormalizeNumber(phone, s.cfg.CountryCode)

	resp, err := s.client.IsOnWhatsApp(ctx, []string{number})
	if err != nil {
		return types.JID{}, fmt.Errorf("failed to verify number on WhatsApp: %w", err)
	}
	if len(resp) == 0 || !resp[0].IsIn {
		return types.JID{}, fmt.Errorf("number %s is not registered on WhatsApp", number)
	}
	return resp[0].JID, nil
}

func (s *Service) eventHandler(evt interface{}) {
	switch evt.(type) {
	case *events.Connected:
		s.log.Info().Msg("Connected to WhatsApp")
	case *events.Disconnected:
		s.log.Info().Msg("Disconnected from WhatsApp")
	case *events.LoggedOut:
		s.log.Info().Msg("Logged out from WhatsApp")
	}
}
