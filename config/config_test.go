package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, body string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "wizard.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, 3, cfg.Advisor.Limit)
	assert.Equal(t, 10*time.Second, cfg.Intake.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.TTL)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(write(t, `
log_level: debug
listen: 127.0.0.1:9000
routes: routes.yaml
advisor:
  limit: 5
  delay: 2s
intake:
  endpoint: https://crm.example.com/api/onboarding
sessions:
  ttl: 5m
  per_owner: 3
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
	assert.Equal(t, "routes.yaml", cfg.Routes)
	assert.Equal(t, 5, cfg.Advisor.Limit)
	assert.Equal(t, 2*time.Second, cfg.Advisor.Delay)
	assert.Equal(t, "https://crm.example.com/api/onboarding", cfg.Intake.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.Intake.Timeout, "unset keys keep their defaults")
	assert.Equal(t, 5*time.Minute, cfg.Sessions.TTL)
	assert.Equal(t, 3, cfg.Sessions.PerOwner)
	assert.Equal(t, 10000, cfg.Sessions.Max)
}

func TestLoad_Invalid(t *testing.T) {
	for name, body := range map[string]string{
		"syntax":   "listen: [",
		"level":    "log_level: loud",
		"limit":    "advisor: {limit: 0}",
		"timeout":  "intake: {timeout: 0s}",
		"endpoint": "intake: {endpoint: ''}",
		"ttl":      "sessions: {ttl: 0s}",
		"max":      "sessions: {max: 0}",
		"owner":    "sessions: {max: 5, per_owner: 6}",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(write(t, body))
			assert.Error(t, err)
		})
	}
}
