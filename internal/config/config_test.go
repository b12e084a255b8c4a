package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017/studio?retryWrites=true")
	t.Setenv("MONGO_DB", "")
	t.Setenv("ADMIN_EMAIL", "owner@example.com")
	t.Setenv("CONTACT_EMAIL", "")
	t.Setenv("RATE_LIMIT_CONTACT", "")
	t.Setenv("RATE_LIMIT_WINDOW_SEC", "")
	t.Setenv("RATE_LIMIT_STORE", "")
	t.Setenv("UPLOAD_MAX_MB", "")
	t.Setenv("TZ", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "studio", cfg.MongoDB)
	assert.Equal(t, 3, cfg.RateLimitContact)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow())
	assert.Equal(t, "memory", cfg.RateLimitStore)
	assert.Equal(t, "owner@example.com", cfg.ContactEmail)
	assert.Equal(t, int64(20<<20), cfg.UploadMaxBytes())
	assert.Equal(t, "Europe/Amsterdam", cfg.Timezone.String())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MONGO_DB", "explicit")
	t.Setenv("RATE_LIMIT_CONTACT", "10")
	t.Setenv("RATE_LIMIT_STORE", "Redis")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("CONTACT_EMAIL", "inbox@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "explicit", cfg.MongoDB)
	assert.Equal(t, 10, cfg.RateLimitContact)
	assert.Equal(t, "redis", cfg.RateLimitStore)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "inbox@example.com", cfg.ContactEmail)
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("TZ", "Mars/Olympus")
	_, err := Load()
	assert.Error(t, err)
}

func TestMongoDBFromURI(t *testing.T) {
	assert.Equal(t, "portfolio", mongoDBFromURI("mongodb://localhost:27017/portfolio"))
	assert.Equal(t, "", mongoDBFromURI("mongodb://localhost:27017"))
	assert.Equal(t, "a", mongoDBFromURI("mongodb+srv://u:p@cluster.example.net/a/b"))
}
