package mailer

import (
	"context"
	"testing"

	"secret-santa/internal/delivery"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Host:     "smtp.example.com",
		Username: "santa",
		Password: "hohoho",
		From:     "santa@example.com",
		DryRun:   true,
	}
}

func TestNew(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		m, err := New(validConfig())
		require.NoError(t, err)
		assert.Equal(t, 465, m.cfg.Port)
	})

	t.Run("missing settings", func(t *testing.T) {
		_, err := New(Config{Host: "smtp.example.com"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SMTP_USERNAME")
		assert.Contains(t, err.Error(), "SMTP_PASSWORD")
		assert.Contains(t, err.Error(), "SMTP_FROM")
		assert.NotContains(t, err.Error(), "SMTP_HOST")
	})
}

func TestDeliver_DryRun(t *testing.T) {
	m, err := New(validConfig())
	require.NoError(t, err)

	notifications := []delivery.Notification{
		{GiverName: "Anna", GiverEmail: "anna@example.com", RecipientName: "Cleo"},
		{GiverName: "Ben", RecipientName: "Anna"}, // no email, skipped
		{GiverName: "Cleo", GiverEmail: "cleo@example.com", RecipientName: "Ben"},
	}

	sent, err := m.Deliver(context.Background(), notifications)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
}

func TestDeliver_NothingToSend(t *testing.T) {
	m, err := New(validConfig())
	require.NoError(t, err)

	sent, err := m.Deliver(context.Background(), []delivery.Notification{
		{GiverName: "Ben", RecipientName: "Anna"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}

func TestMessageBody(t *testing.T) {
	body := messageBody(delivery.Notification{
		GiverName:     "Anna",
		RecipientName: "Cleo",
	})
	assert.Contains(t, body, "Anna")
	assert.Contains(t, body, "Cleo")
	// The giver is addressed; nobody else's assignment appears.
	assert.NotContains(t, body, "Ben")
}
