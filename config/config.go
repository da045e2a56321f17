package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings, loaded from environment variables.
// Secrets (payment keys, cron token, SMTP credentials) are never read
// from request payloads or config files checked into the repo.
type Config struct {
	ServerPort string `env:"PORT" envDefault:"8080"`
	Env        string `env:"APP_ENV" envDefault:"development"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"milan"`

	// Empty RabbitURL disables the notification bus (local development).
	RabbitURL string `env:"RABBITMQ_URL"`

	PaymentBaseURL       string `env:"PAYMENT_BASE_URL" envDefault:"https://api.razorpay.com/v1"`
	PaymentKeyID         string `env:"PAYMENT_KEY_ID"`
	PaymentKeySecret     string `env:"PAYMENT_KEY_SECRET"`
	PaymentWebhookSecret string `env:"PAYMENT_WEBHOOK_SECRET"`

	// Static bearer token the external scheduler presents on sweep endpoints.
	CronSecret string `env:"CRON_SECRET,required"`

	ReviewWindowDays     int `env:"REVIEW_WINDOW_DAYS" envDefault:"7"`
	DailySubmissionLimit int `env:"DAILY_SUBMISSION_LIMIT" envDefault:"3"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	MailFrom string `env:"MAIL_FROM"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.MailFrom != ""
}
