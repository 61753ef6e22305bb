package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries everything read from the environment. godotenv is loaded
// in main before this runs, so a local .env works the same as real env vars.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	// Generation backend. An empty APIKey selects the deterministic mock.
	OpenAIKey     string
	OpenAIModel   string
	FollowupModel string

	CalendlyURL string

	SenderName    string
	SenderTitle   string
	SenderCompany string
	SenderPhone   string
	SenderEmail   string

	EmailFrom      string
	EmailTransport string // "console" | "smtp"
	SMTPHost       string
	SMTPPort       string
	SMTPUser       string
	SMTPPass       string
	OutboxDir      string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	DryRunSMS        bool

	AgentEnabled     bool
	AgentMinInterval time.Duration

	WebhookSecret string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "on", "yes":
		return true
	}
	return false
}

// Load reads all env vars and builds the config.
func Load() *Config {
	intervalSec := 30
	if v := os.Getenv("AGENT_MIN_INTERVAL_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			intervalSec = n
		}
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		FollowupModel: getEnv("FOLLOWUP_MODEL", "gpt-4o-mini"),

		CalendlyURL: getEnv("CALENDLY_URL", "https://calendly.com/solisa/new-meeting"),

		SenderName:    getEnv("SENDER_NAME", "XYZ"),
		SenderTitle:   getEnv("SENDER_TITLE", "Founder"),
		SenderCompany: getEnv("SENDER_COMPANY", "Solisa AI"),
		SenderPhone:   os.Getenv("SENDER_PHONE"),
		SenderEmail:   getEnv("SENDER_EMAIL", "hello@solisa.ai"),

		EmailFrom:      getEnv("EMAIL_FROM", "noreply@solisa.ai"),
		EmailTransport: getEnv("EMAIL_TRANSPORT", "console"),
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUser:       os.Getenv("SMTP_USER"),
		SMTPPass:       os.Getenv("SMTP_PASS"),
		OutboxDir:      getEnv("OUTBOX_DIR", "outbox/emails"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),
		DryRunSMS:        getBoolEnv("DRY_RUN_SMS", true),

		AgentEnabled:     getBoolEnv("AGENT_AUTOPILOT", true),
		AgentMinInterval: time.Duration(intervalSec) * time.Second,

		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
	}
}
