package config

import (
	"net/url"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DIFFUSION_API_KEY", "DIFFUSION_BASE_URL", "DIFFUSION_HTTP_TIMEOUT", "DIFFUSION_WAIT_TIMEOUT",
		"OUTPUT_DIR", "LOG_VERBOSE", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"DB_SSL_MODE", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://diffusion.to", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 5*time.Minute, cfg.WaitTimeout)
	assert.False(t, cfg.Verbose)
	assert.False(t, cfg.HistoryEnabled())
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "disable", cfg.DB.SSLMode)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DIFFUSION_API_KEY", "k")
	t.Setenv("DIFFUSION_WAIT_TIMEOUT", "60")
	t.Setenv("LOG_VERBOSE", "true")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "diffusion")
	t.Setenv("DB_NAME", "images")
	t.Setenv("DB_PORT", "6543")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "k", cfg.APIKey)
	assert.Equal(t, time.Minute, cfg.WaitTimeout)
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.HistoryEnabled())

	u, err := url.Parse(cfg.GetDSN())
	require.NoError(t, err)
	assert.Equal(t, "localhost", u.Hostname())
	assert.Equal(t, "6543", u.Port())
	assert.Equal(t, "diffusion", u.User.Username())
	_, hasPassword := u.User.Password()
	assert.False(t, hasPassword)
	assert.Equal(t, "/images", u.Path)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))

	params, err := pq.ParseURL(cfg.GetDSN())
	require.NoError(t, err)
	assert.Contains(t, params, "dbname=images")
	assert.NotContains(t, params, "password")
}

func TestGetDSNEscapesValues(t *testing.T) {
	cfg := &Config{DB: DBConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "diffusion",
		Password: "p@ss word'/x",
		Database: "images",
		SSLMode:  "require",
	}}

	u, err := url.Parse(cfg.GetDSN())
	require.NoError(t, err)
	password, ok := u.User.Password()
	assert.True(t, ok)
	assert.Equal(t, "p@ss word'/x", password)
	assert.Equal(t, "/images", u.Path)
	assert.Equal(t, "require", u.Query().Get("sslmode"))

	params, err := pq.ParseURL(cfg.GetDSN())
	require.NoError(t, err)
	assert.Contains(t, params, "dbname=images")
	assert.Contains(t, params, "host=db.internal")
}

func TestFromEnvIncompleteDatabase(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "localhost")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "DB_USER")

	t.Setenv("DB_USER", "diffusion")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "DB_NAME")
}
