package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	DatabaseDriver      string // DATABASE_DRIVER: sqlite (default) or postgres
	DatabaseURL         string
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	HealthAdminKey      string
	LogLevel            string
	LogFile             string // LOG_FILE enables rotated file output next to stdout

	SearchDebounce    time.Duration // SEARCH_DEBOUNCE_MS
	FilterSessionTTL  time.Duration // FILTER_SESSION_TTL, e.g. "24h"
	FilterMaxSessions int

	InviteConcurrency    int
	InviteRetries        int
	InviteTimeout        time.Duration // per attempt; 0 disables
	InviteRatePerSec     float64       // 0 disables pacing
	InviteSimulatedDelay time.Duration // used when no mail API key is set
	SendinblueAPIKey     string        // SENDINBLUE_API_KEY (Brevo); empty selects the simulated sender
	MailFrom             string
	InviteBaseURL        string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "file:yuime.db?cache=shared")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SEARCH_DEBOUNCE_MS", 300)
	v.SetDefault("FILTER_SESSION_TTL", "24h")
	v.SetDefault("FILTER_MAX_SESSIONS", 1000)
	v.SetDefault("INVITE_CONCURRENCY", 4)
	v.SetDefault("INVITE_RETRIES", 0)
	v.SetDefault("INVITE_TIMEOUT_MS", 10000)
	v.SetDefault("INVITE_RATE_PER_SEC", 0)
	v.SetDefault("INVITE_SIMULATED_DELAY_MS", 2000)
	v.SetDefault("MAIL_FROM", "noreply@yuime.jp")

	return &Config{
		Env:                 v.GetString("APP_ENV"),
		Port:                v.GetString("PORT"),
		DatabaseDriver:      strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		RedisURL:            v.GetString("REDIS_URL"),
		FrontendURLEndsWith: v.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         v.GetString("DEV_PASSWORD"),
		HealthAdminKey:      v.GetString("HEALTH_ADMIN_KEY"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		LogFile:             v.GetString("LOG_FILE"),

		SearchDebounce:    time.Duration(v.GetInt("SEARCH_DEBOUNCE_MS")) * time.Millisecond,
		FilterSessionTTL:  v.GetDuration("FILTER_SESSION_TTL"),
		FilterMaxSessions: v.GetInt("FILTER_MAX_SESSIONS"),

		InviteConcurrency:    v.GetInt("INVITE_CONCURRENCY"),
		InviteRetries:        v.GetInt("INVITE_RETRIES"),
		InviteTimeout:        time.Duration(v.GetInt("INVITE_TIMEOUT_MS")) * time.Millisecond,
		InviteRatePerSec:     v.GetFloat64("INVITE_RATE_PER_SEC"),
		InviteSimulatedDelay: time.Duration(v.GetInt("INVITE_SIMULATED_DELAY_MS")) * time.Millisecond,
		SendinblueAPIKey:     v.GetString("SENDINBLUE_API_KEY"),
		MailFrom:             v.GetString("MAIL_FROM"),
		InviteBaseURL:        inviteBaseURL(v.GetString("INVITE_BASE_URL")),
	}, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func inviteBaseURL(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	if s == "" {
		return "https://console.yuime.jp"
	}
	return s
}
