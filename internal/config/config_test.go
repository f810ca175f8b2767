package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "data/shuttle.db", cfg.DBPath)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiresIn.Duration())
	assert.Equal(t, 500*time.Millisecond, cfg.Onboarding.Transition)
	assert.Equal(t, 60.0, cfg.Onboarding.SwipeThreshold)
	assert.Equal(t, 10000, cfg.Onboarding.MaxSessions)
	assert.Equal(t, "Europe/Istanbul", cfg.Timezone)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.TLSEnabled())
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_SECRET_FILE", "")

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoadRejectsBadLifetime(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRES_IN", "soon")

	_, err := Load()
	require.Error(t, err)
}

func TestIsProduction(t *testing.T) {
	assert.True(t, Config{NodeEnv: "production"}.IsProduction())
	assert.True(t, Config{Environment: "Production", NodeEnv: "development"}.IsProduction())
	assert.False(t, Config{Environment: "staging", NodeEnv: "production"}.IsProduction())
}

func TestSecretFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jwt.secret")
	require.NoError(t, os.WriteFile(path, []byte("abc123\n"), 0o600))

	secret, err := Config{JWTSecretFile: path}.Secret()
	require.NoError(t, err)
	assert.Equal(t, []byte("abc123"), secret)

	secret, err = Config{JWTSecret: "inline", JWTSecretFile: path}.Secret()
	require.NoError(t, err)
	assert.Equal(t, []byte("inline"), secret)
}

func TestValidateTLSPair(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SHUTTLE_TLS_CERT", "cert.pem")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsBadOnboardingLimits(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ONBOARDING_MAX_SESSIONS", "-1")

	_, err := Load()
	require.Error(t, err)
}

func TestLocation(t *testing.T) {
	loc, err := Config{Timezone: "Europe/Istanbul"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Istanbul", loc.String())

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SHUTTLE_TIMEZONE", "Mars/Olympus")
	_, err = Load()
	require.Error(t, err)
}

func TestParseLifetime(t *testing.T) {
	cases := map[string]time.Duration{
		"7d":      7 * 24 * time.Hour,
		"1.5d":    36 * time.Hour,
		"12h":     12 * time.Hour,
		"90m":     90 * time.Minute,
		"120":     120 * time.Millisecond,
		"1w":      7 * 24 * time.Hour,
		"7 days":  7 * 24 * time.Hour,
		"2 Hours": 2 * time.Hour,
		"30 mins": 30 * time.Minute,
		"500ms":   500 * time.Millisecond,
		"10 secs": 10 * time.Second,
		"1y":      time.Duration(365.25 * float64(24*time.Hour)),
		"1h30m":   90 * time.Minute,
	}
	for in, want := range cases {
		got, err := ParseLifetime(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "d", "x7d", "forever", "7 fortnights"} {
		_, err := ParseLifetime(bad)
		assert.Error(t, err, bad)
	}
}
