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
	t.Chdir(t.TempDir())
	for _, key := range []string{"GITHUB_TOKEN", "GITHUB_API_URL", "GEMINI_API_KEY", "FEISHU_WEBHOOK", "PORT", "CORS_ORIGINS", "DATABASE_URL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "https://api.github.com", cfg.GitHub.APIURL)
	assert.Equal(t, 10*time.Second, cfg.GitHub.Timeout)
	assert.Equal(t, 2, cfg.GitHub.MaxRetries)
	assert.Equal(t, "none", cfg.History.Driver)
	assert.Equal(t, "weekly", cfg.Digest.Since)
	assert.Empty(t, cfg.Digest.Cron)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("PORT", "8080")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DATABASE_URL", "file.db")
	t.Setenv("REPOFINDER_HISTORY_DRIVER", "sqlite")
	t.Setenv("REPOFINDER_GITHUB_TIMEOUT", "3s")
	t.Setenv("REPOFINDER_DIGEST_CRON", "0 9 * * *")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "ghp_test", cfg.GitHub.Token)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "sqlite", cfg.History.Driver)
	assert.Equal(t, "file.db", cfg.History.DSN)
	assert.Equal(t, 3*time.Second, cfg.GitHub.Timeout)
	assert.Equal(t, "0 9 * * *", cfg.Digest.Cron)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
github:
  max_retries: 5
  requests_per_second: 1.5
digest:
  since: daily
  language: go
logging:
  level: debug
  format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.GitHub.MaxRetries)
	assert.Equal(t, 1.5, cfg.GitHub.RequestsPerSecond)
	assert.Equal(t, "daily", cfg.Digest.Since)
	assert.Equal(t, "go", cfg.Digest.Language)
	assert.NotNil(t, cfg.Logging.NewLogger())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: 3000},
			GitHub:  GitHubConfig{Timeout: time.Second},
			History: HistoryConfig{Driver: "none"},
			Digest:  DigestConfig{Since: "weekly"},
			Logging: LoggingConfig{Format: "text"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"超时为 0", func(c *Config) { c.GitHub.Timeout = 0 }, "github.timeout"},
		{"重试次数为负", func(c *Config) { c.GitHub.MaxRetries = -1 }, "github.max_retries"},
		{"postgres 缺少 dsn", func(c *Config) { c.History.Driver = "postgres" }, "history.dsn"},
		{"未知驱动", func(c *Config) { c.History.Driver = "mongo" }, "history.driver"},
		{"未知时间窗口", func(c *Config) { c.Digest.Since = "yearly" }, "digest.since"},
		{"未知日志格式", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
