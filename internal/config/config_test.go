package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, content string) (*Config, error) {
	t.Helper()
	var path string
	if content != "" {
		path = filepath.Join(t.TempDir(), "seatutor.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	} else {
		originalDir, err := os.Getwd()
		require.NoError(t, err)
		t.Cleanup(func() {
			require.NoError(t, os.Chdir(originalDir))
		})
		require.NoError(t, os.Chdir(t.TempDir()))
	}

	loader, err := NewConfigLoader(path)
	require.NoError(t, err)
	return loader.Load()
}

func TestLoadDefaults(t *testing.T) {
	got, err := load(t, "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", got.Server.Addr)
	assert.Equal(t, 2*time.Hour, got.Server.SessionTTL)
	assert.Equal(t, "sqlite", got.Store.Driver)
	assert.Equal(t, 50, got.Limits.PerStudent)
	assert.Equal(t, 1000, got.Limits.Global)
	assert.Equal(t, "America/Port_of_Spain", got.Tutor.Timezone)
	assert.Equal(t, 5, got.Tutor.FlushBatch)
	assert.Equal(t, 500, got.Tutor.MaxTokens)
	assert.InDelta(t, 0.7, got.Tutor.Temperature, 1e-9)
	assert.InDelta(t, 0.8, got.Tutor.TopP, 1e-9)
	assert.Equal(t, "gemini", got.LLM.Provider)
	assert.Equal(t, 3, got.LLM.Retry.MaxAttempts)
	assert.Equal(t, 30*time.Second, got.LLM.Timeout)
	assert.False(t, got.Sheets.Enabled)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		wantErrorContains []string
		check             func(t *testing.T, cfg *Config)
	}{
		{
			name: "custom values override defaults",
			configContent: `server:
  addr: 127.0.0.1:9000
  session_ttl: 30m
store:
  driver: mysql
  mysql:
    host: db.internal
    database: sea
limits:
  per_student: 20
tutor:
  timezone: UTC
  top_p: 0.95
llm:
  provider: mock
  timeout: 5s
  anthropic:
    base_url: https://llm-gateway.school.tt/anthropic
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
				assert.Equal(t, 30*time.Minute, cfg.Server.SessionTTL)
				assert.Equal(t, "mysql", cfg.Store.Driver)
				assert.Equal(t, "db.internal", cfg.Store.MySQL.Host)
				assert.Equal(t, 3306, cfg.Store.MySQL.Port)
				assert.Equal(t, 20, cfg.Limits.PerStudent)
				assert.Equal(t, 1000, cfg.Limits.Global)
				assert.Equal(t, time.UTC, cfg.Tutor.Location())
				assert.Equal(t, "mock", cfg.LLM.Provider)
				assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
				assert.InDelta(t, 0.95, cfg.Tutor.TopP, 1e-9)
				assert.Equal(t, "https://llm-gateway.school.tt/anthropic", cfg.LLM.Anthropic.BaseURL)
			},
		},
		{
			name: "invalid YAML format",
			configContent: `server:
  addr: x
  invalid yaml format here [[[
`,
			wantErrorContains: []string{
				"configuration file found but could not be read",
			},
		},
		{
			name: "unknown store driver",
			configContent: `store:
  driver: postgres
`,
			wantErrorContains: []string{"invalid configuration", "driver must be one of"},
		},
		{
			name: "bad timezone",
			configContent: `tutor:
  timezone: Mars/Olympus_Mons
`,
			wantErrorContains: []string{"tutor.timezone must be an IANA time zone name"},
		},
		{
			name: "sheets enabled without spreadsheet",
			configContent: `sheets:
  enabled: true
`,
			wantErrorContains: []string{"spreadsheet_id"},
		},
		{
			name: "top_p above one",
			configContent: `tutor:
  top_p: 1.5
`,
			wantErrorContains: []string{"top_p"},
		},
		{
			name: "negative limit",
			configContent: `limits:
  global: -1
`,
			wantErrorContains: []string{"global"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := load(t, tt.configContent)
			if len(tt.wantErrorContains) > 0 {
				assert.Error(t, err)
				assert.Nil(t, got)
				for _, want := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), want)
				}
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SEATUTOR_LIMITS_PER_STUDENT", "12")
	t.Setenv("SEATUTOR_TUTOR_TIMEZONE", "UTC")
	t.Setenv("GEMINI_API_KEY", "vendor-key")
	t.Setenv("SEATUTOR_LLM_ANTHROPIC_API_KEY", "prefixed-key")
	t.Setenv("ANTHROPIC_API_KEY", "vendor-anthropic")

	got, err := load(t, "")
	require.NoError(t, err)

	assert.Equal(t, 12, got.Limits.PerStudent)
	assert.Equal(t, "UTC", got.Tutor.Timezone)
	assert.Equal(t, "vendor-key", got.LLM.Gemini.APIKey)
	assert.Equal(t, "prefixed-key", got.LLM.Anthropic.APIKey)
}

func TestStoreOptions(t *testing.T) {
	c := StoreConfig{
		Driver: "mysql",
		MySQL:  MySQLConfig{Host: "h", Port: 3307, ConnMaxLifetime: 60},
	}
	got := c.Options()
	assert.Equal(t, "mysql", got.Driver)
	assert.Equal(t, "h", got.MySQL.Host)
	assert.Equal(t, 3307, got.MySQL.Port)
	assert.Equal(t, time.Minute, got.MySQL.ConnMaxLifetime)
}
