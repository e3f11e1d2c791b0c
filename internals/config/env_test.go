package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 30*time.Minute, cfg.ResetTTL)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "smtp", cfg.Mail.Provider)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, 10*time.Second, cfg.Mail.DrainTimeout)
	assert.True(t, cfg.Cookie.IsSecure)
	assert.True(t, cfg.Cookie.HttpOnly)
	assert.False(t, cfg.IsProduction())
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("APP_ENV", "production")
	t.Setenv("OTP_EXPIRATION", "2m")
	t.Setenv("DB_DRIVER", "mongo")
	t.Setenv("MAIL_PROVIDER", "mailgun")
	t.Setenv("SECURE_COOKIE", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 2*time.Minute, cfg.OTPTTL)
	assert.Equal(t, "mongo", cfg.DB.Driver)
	assert.Equal(t, "mailgun", cfg.Mail.Provider)
	assert.False(t, cfg.Cookie.IsSecure)
}

func TestLoadRejectsUnknownDrivers(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")

	t.Run("db driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "postgres")
		_, err := Load()
		assert.ErrorContains(t, err, "DB_DRIVER")
	})

	t.Run("mail provider", func(t *testing.T) {
		t.Setenv("MAIL_PROVIDER", "pigeon")
		_, err := Load()
		assert.ErrorContains(t, err, "MAIL_PROVIDER")
	})
}

func TestLoadRejectsBadEncryptionKey(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("ENCRYPTION_KEY", "short")

	_, err := Load()
	assert.ErrorContains(t, err, "ENCRYPTION_KEY")
}
