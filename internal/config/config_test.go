package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "handoff-secret")
	t.Setenv("JWT_SECRET", "session-secret")
	t.Setenv("SESSION_SECRET", "cookie-secret")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
	assert.Equal(t, 30*time.Minute, cfg.CheckoutTokenTTL)
	assert.Equal(t, 20*time.Second, cfg.ShippingTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "usd", cfg.StripeCurrency)
	assert.Equal(t, "Ecommer_user", cfg.MongoDB)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, int64(10), cfg.CheckoutRateLimit)
	assert.False(t, cfg.TokenSingleUse)
	assert.False(t, cfg.MailEnabled())
}

func TestFromEnvMissingSecretsIsFatal(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("STRIPE_SECRET_KEY", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKEN_SECRET")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "SESSION_SECRET")
	assert.Contains(t, err.Error(), "STRIPE_SECRET_KEY")
}

func TestFromEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("BASE_URL", "https://boltform.buttnetworks.com/")
	t.Setenv("CHECKOUT_TOKEN_TTL", "45m")
	t.Setenv("TOKEN_SINGLE_USE", "TRUE")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SMTP_HOST", "smtp.example")
	t.Setenv("SMTP_USERNAME", "mailer")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://boltform.buttnetworks.com", cfg.BaseURL)
	assert.Equal(t, 45*time.Minute, cfg.CheckoutTokenTTL)
	assert.True(t, cfg.TokenSingleUse)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.MailEnabled())
}

func TestFromEnvRejectsBadDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("SHIPPING_TOKEN_TTL", "soon")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHIPPING_TOKEN_TTL")
}

func TestOAuthProvidersOnlyConfigured(t *testing.T) {
	cfg := &Config{APIBaseURL: "http://localhost:8080"}
	assert.Empty(t, cfg.OAuthProviders())

	cfg.GoogleClientID = "id"
	cfg.GoogleClientSecret = "secret"
	providers := cfg.OAuthProviders()
	require.Len(t, providers, 1)
	assert.Equal(t, "google", providers[0].Name())
}
