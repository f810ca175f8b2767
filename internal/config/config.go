package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

var (
	// ErrMissingSecret is returned when neither JWT_SECRET nor JWT_SECRET_FILE is set.
	ErrMissingSecret = errors.New("JWT_SECRET or JWT_SECRET_FILE is required")
)

// Config holds the process configuration read from the environment.
type Config struct {
	HTTPAddr        string        `env:"SHUTTLE_HTTP_ADDR"        envDefault:":8080"`
	DBPath          string        `env:"SHUTTLE_DB_PATH"          envDefault:"data/shuttle.db"`
	TLSCert         string        `env:"SHUTTLE_TLS_CERT"`
	TLSKey          string        `env:"SHUTTLE_TLS_KEY"`
	ShutdownTimeout time.Duration `env:"SHUTTLE_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Environment mirrors NODE_ENV for deployments shared with the web
	// frontend; SHUTTLE_ENV wins when both are set.
	Environment   string   `env:"SHUTTLE_ENV"`
	NodeEnv       string   `env:"NODE_ENV"        envDefault:"development"`
	JWTSecret     string   `env:"JWT_SECRET"`
	JWTSecretFile string   `env:"JWT_SECRET_FILE"`
	JWTExpiresIn  Lifetime `env:"JWT_EXPIRES_IN"  envDefault:"7d"`

	// Timezone is the passengers' zone, used for greetings and dates.
	Timezone string `env:"SHUTTLE_TIMEZONE" envDefault:"Europe/Istanbul"`

	Onboarding OnboardingConfig
	Log        LogConfig
}

// OnboardingConfig tunes the step carousel.
type OnboardingConfig struct {
	Transition     time.Duration `env:"ONBOARDING_TRANSITION"      envDefault:"500ms"`
	SwipeThreshold float64       `env:"ONBOARDING_SWIPE_THRESHOLD" envDefault:"60"`
	SessionTTL     time.Duration `env:"ONBOARDING_SESSION_TTL"     envDefault:"30m"`
	MaxSessions    int           `env:"ONBOARDING_MAX_SESSIONS"    envDefault:"10000"`
}

// LogConfig selects the zap encoder, level and sink.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	File   string `env:"LOG_FILE"`
}

// Parse reads the environment without validating the result. Commands that
// never serve requests, such as migrate, use it directly.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	cfg, err := Parse()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" && strings.TrimSpace(c.JWTSecretFile) == "" {
		return ErrMissingSecret
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("SHUTTLE_DB_PATH must not be empty")
	}
	if c.JWTExpiresIn <= 0 {
		return errors.New("JWT_EXPIRES_IN must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTTLE_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Onboarding.Transition <= 0 {
		return errors.New("ONBOARDING_TRANSITION must be positive")
	}
	if c.Onboarding.SwipeThreshold <= 0 {
		return errors.New("ONBOARDING_SWIPE_THRESHOLD must be positive")
	}
	if c.Onboarding.SessionTTL <= 0 {
		return errors.New("ONBOARDING_SESSION_TTL must be positive")
	}
	if c.Onboarding.MaxSessions < 0 {
		return errors.New("ONBOARDING_MAX_SESSIONS must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return errors.New("SHUTTLE_TLS_CERT and SHUTTLE_TLS_KEY must be set together")
	}
	return nil
}

// Secret returns the token signing secret, reading JWT_SECRET_FILE when
// JWT_SECRET is unset.
func (c Config) Secret() ([]byte, error) {
	if s := strings.TrimSpace(c.JWTSecret); s != "" {
		return []byte(s), nil
	}
	if c.JWTSecretFile == "" {
		return nil, ErrMissingSecret
	}
	data, err := os.ReadFile(c.JWTSecretFile)
	if err != nil {
		return nil, fmt.Errorf("read secret file: %w", err)
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return nil, fmt.Errorf("secret file %s is empty", c.JWTSecretFile)
	}
	return []byte(s), nil
}

// IsProduction reports whether cookies should carry the Secure attribute.
func (c Config) IsProduction() bool {
	name := c.Environment
	if name == "" {
		name = c.NodeEnv
	}
	return strings.EqualFold(strings.TrimSpace(name), "production")
}

// Location loads Timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(strings.TrimSpace(c.Timezone))
	if err != nil {
		return nil, fmt.Errorf("SHUTTLE_TIMEZONE: %w", err)
	}
	return loc, nil
}

// TLSEnabled reports whether both TLS files are configured.
func (c Config) TLSEnabled() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

// Lifetime is a token lifetime written the way JWT_EXPIRES_IN is written
// for the web frontend ("7d", "12h", "2 weeks", "120").
type Lifetime time.Duration

// Duration returns the lifetime as a time.Duration.
func (l Lifetime) Duration() time.Duration { return time.Duration(l) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Lifetime) UnmarshalText(text []byte) error {
	d, err := ParseLifetime(string(text))
	if err != nil {
		return err
	}
	*l = Lifetime(d)
	return nil
}

var lifetimePattern = regexp.MustCompile(`(?i)^(-?(?:\d+)?\.?\d+) *(milliseconds?|msecs?|ms|seconds?|secs?|s|minutes?|mins?|m|hours?|hrs?|h|days?|d|weeks?|w|years?|yrs?|y)?$`)

var lifetimeUnits = map[string]time.Duration{
	"ms": time.Millisecond,
	"s":  time.Second,
	"m":  time.Minute,
	"h":  time.Hour,
	"d":  24 * time.Hour,
	"w":  7 * 24 * time.Hour,
	"y":  time.Duration(365.25 * float64(24*time.Hour)),
}

// ParseLifetime follows the vercel/ms grammar: a number with an optional
// unit from milliseconds to years, where a bare number is milliseconds.
// Compound Go durations such as "1h30m" are accepted as well.
func ParseLifetime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty lifetime")
	}
	m := lifetimePattern.FindStringSubmatch(s)
	if m == nil {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid lifetime %q: %w", s, err)
		}
		return d, nil
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid lifetime %q: %w", s, err)
	}
	return time.Duration(n * float64(lifetimeUnits[lifetimeUnit(m[2])])), nil
}

func lifetimeUnit(name string) string {
	name = strings.ToLower(name)
	switch {
	case name == "":
		return "ms"
	case strings.HasPrefix(name, "ms"), strings.HasPrefix(name, "milli"):
		return "ms"
	case strings.HasPrefix(name, "mi"), name == "m":
		return "m"
	default:
		return name[:1]
	}
}
