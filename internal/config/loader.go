package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/example/roomsync/internal/scheduler"
)

// Prefix is prepended to every environment variable name.
const Prefix = "ROOMSYNC_"

// Config captures environment driven configuration values for the RoomSync service.
type Config struct {
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	SQLiteDSN       string        `env:"SQLITE_DSN"`
	AdminPasskey    string        `env:"ADMIN_PASSKEY"`
	TokenSecret     string        `env:"TOKEN_SECRET"`
	TokenTTL        time.Duration `env:"TOKEN_TTL" envDefault:"12h"`
	SundayPolicy    string        `env:"SUNDAY_POLICY" envDefault:"monday"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"60s"`
	SeedSchedule    bool          `env:"SEED_SCHEDULE" envDefault:"true"`
	PublicBaseURL   string        `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	AssistantAPIKey  string        `env:"ASSISTANT_API_KEY"`
	AssistantModel   string        `env:"ASSISTANT_MODEL" envDefault:"gemini-2.5-flash"`
	AssistantTimeout time.Duration `env:"ASSISTANT_TIMEOUT" envDefault:"20s"`
	AssistantRate    float64       `env:"ASSISTANT_RATE" envDefault:"1"`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"json"`
}

// Sunday returns the parsed Sunday policy. Load has already validated it.
func (c Config) Sunday() scheduler.SundayPolicy {
	policy, _ := scheduler.ParseSundayPolicy(c.SundayPolicy)
	return policy
}

// UseSQLite reports whether a durable store was requested.
func (c Config) UseSQLite() bool {
	return c.SQLiteDSN != ""
}

// Load parses configuration values from the current process environment.
//
// Optional fields receive defaults. Missing required values and malformed
// values are reported together by variable name.
func Load() (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: Prefix})
	if err != nil {
		return Config{}, fmt.Errorf("invalid environment variable values: %w", err)
	}

	cfg.SQLiteDSN = strings.TrimSpace(cfg.SQLiteDSN)
	cfg.AdminPasskey = strings.TrimSpace(cfg.AdminPasskey)
	cfg.TokenSecret = strings.TrimSpace(cfg.TokenSecret)
	cfg.AssistantAPIKey = strings.TrimSpace(cfg.AssistantAPIKey)

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 4)

	if cfg.AdminPasskey == "" {
		missing = append(missing, Prefix+"ADMIN_PASSKEY")
	}
	if cfg.TokenSecret == "" {
		missing = append(missing, Prefix+"TOKEN_SECRET")
	}

	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		invalid = append(invalid, Prefix+"HTTP_PORT")
	}
	if cfg.TokenTTL <= 0 {
		invalid = append(invalid, Prefix+"TOKEN_TTL")
	}
	if _, pErr := scheduler.ParseSundayPolicy(cfg.SundayPolicy); pErr != nil {
		invalid = append(invalid, Prefix+"SUNDAY_POLICY")
	}
	if cfg.RefreshInterval < time.Second {
		invalid = append(invalid, Prefix+"REFRESH_INTERVAL")
	}
	if cfg.AssistantTimeout <= 0 {
		invalid = append(invalid, Prefix+"ASSISTANT_TIMEOUT")
	}
	if cfg.AssistantRate <= 0 {
		invalid = append(invalid, Prefix+"ASSISTANT_RATE")
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "json", "text":
		cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	default:
		invalid = append(invalid, Prefix+"LOG_FORMAT")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
