package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "auth_token", cfg.Auth.CookieName)
	assert.Equal(t, "/auth/refresh", cfg.Auth.RefreshPath)
	assert.Equal(t, 30*time.Second, cfg.Proxy.Timeout)
	assert.False(t, cfg.NATS.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	content := `
server:
  port: 9090
auth:
  jwt_secret: file-secret
  service_url: http://auth.internal:8081
redis:
  url: redis://cache:6379/1
proxy:
  timeout: 45s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "http://auth.internal:8081", cfg.Auth.ServiceURL)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
	assert.Equal(t, 45*time.Second, cfg.Proxy.Timeout)
	// Unset values keep their defaults.
	assert.Equal(t, "auth_token", cfg.Auth.CookieName)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0600))

	cfg, err := Load(path)
	assert.Nil(t, cfg)
	assert.Error(t, err)
}

func TestLoadRouteTable_Defaults(t *testing.T) {
	table, err := LoadRouteTable("")
	require.NoError(t, err)

	assert.NotEmpty(t, table.Routes)
	assert.NotEmpty(t, table.Exemptions)

	// The member prefix is both routed and exempt in the default deployment.
	var memberRouted, memberExempt bool
	for _, r := range table.Routes {
		if r.Prefix == "/member" {
			memberRouted = true
		}
	}
	for _, e := range table.Exemptions {
		if e.Path == "/member" {
			memberExempt = true
			assert.Equal(t, "ANY", e.Method)
		}
	}
	assert.True(t, memberRouted)
	assert.True(t, memberExempt)
}

func TestLoadRouteTable_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.yaml")
	content := `
routes:
  - prefix: /api/teams
    target: http://teams.internal:8083
  - prefix: /api
    target: http://contest.internal:8082
exemptions:
  - method: GET
    path: /api/teams
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	table, err := LoadRouteTable(path)
	require.NoError(t, err)

	require.Len(t, table.Routes, 2)
	assert.Equal(t, "/api/teams", table.Routes[0].Prefix)
	assert.Equal(t, "http://teams.internal:8083", table.Routes[0].Target)
	require.Len(t, table.Exemptions, 1)
	assert.Equal(t, "GET", table.Exemptions[0].Method)
}

func TestLoadRouteTable_Invalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{name: "no routes", content: "exemptions:\n  - method: ANY\n    path: /member\n"},
		{name: "route missing target", content: "routes:\n  - prefix: /api\n"},
		{name: "exemption missing path", content: "routes:\n  - prefix: /api\n    target: http://x\nexemptions:\n  - method: GET\n"},
		{name: "not yaml", content: "routes: [broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "routes.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			table, err := LoadRouteTable(path)
			assert.Nil(t, table)
			assert.Error(t, err)
		})
	}
}

func TestLoadRouteTable_MissingFile(t *testing.T) {
	table, err := LoadRouteTable(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Nil(t, table)
	assert.Error(t, err)
}
