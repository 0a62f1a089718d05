package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Delivery channels.
const (
	ChannelNone     = "none"
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
)

// Config holds the application configuration. Everything the delivery
// gateways need is carried here explicitly; nothing reads ambient
// process state after LoadConfig returns.
type Config struct {
	Channel     string
	SuperSecret bool // conceal the assignment from the organizer
	MaxAttempts int

	HistoryPath  string
	HistoryYears int // 0 disables history exclusion, -1 means never repeat

	WhatsAppDataDir string
	CountryCode     string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPDryRun   bool
}

// LoadConfig loads configuration from a .env file (if present) and the
// environment.
func LoadConfig() (*Config, error) {
	// Best effort; running without a .env file is fine.
	_ = godotenv.Load()

	cfg := &Config{
		Channel:     getEnv("SANTA_CHANNEL", ChannelNone),
		SuperSecret: getEnvBool("SANTA_SUPER_SECRET", false),
		MaxAttempts: getEnvInt("SANTA_MAX_ATTEMPTS", 0),

		HistoryPath:  getEnv("SANTA_HISTORY_PATH", ""),
		HistoryYears: getEnvInt("SANTA_HISTORY_YEARS", 0),

		WhatsAppDataDir: getEnv("WHATSAPP_DATA_DIR", "data"),
		CountryCode:     getEnv("SANTA_COUNTRY_CODE", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 465),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", ""),
		SMTPDryRun:   getEnvBool("SMTP_DRY_RUN", false),
	}

	switch cfg.Channel {
	case ChannelNone, ChannelEmail, ChannelWhatsApp:
	default:
		return nil, fmt.Errorf("unknown SANTA_CHANNEL %q (use %s, %s or %s)",
			cfg.Channel, ChannelNone, ChannelEmail, ChannelWhatsApp)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch getEnv(key, "") {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultValue
}
