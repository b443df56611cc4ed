package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	GitHub  GitHubConfig  `mapstructure:"github"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	History HistoryConfig `mapstructure:"history"`
	Feishu  FeishuConfig  `mapstructure:"feishu"`
	Digest  DigestConfig  `mapstructure:"digest"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// GitHubConfig 上游客户端配置，构造时注入
type GitHubConfig struct {
	APIURL            string        `mapstructure:"api_url"`
	Token             string        `mapstructure:"token"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// HistoryConfig driver: none | postgres | sqlite
type HistoryConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type FeishuConfig struct {
	Webhook string `mapstructure:"webhook"`
}

// DigestConfig 为空的 Cron 表示不定时推送
type DigestConfig struct {
	Cron     string `mapstructure:"cron"`
	Language string `mapstructure:"language"`
	Since    string `mapstructure:"since"`
	Limit    int    `mapstructure:"limit"`
}

// LoggingConfig format: text | json
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// 常用的环境变量名，和带前缀的写法同时生效
var envAliases = map[string][]string{
	"github.token":        {"GITHUB_TOKEN"},
	"github.api_url":      {"GITHUB_API_URL"},
	"gemini.api_key":      {"GEMINI_API_KEY"},
	"feishu.webhook":      {"FEISHU_WEBHOOK"},
	"server.port":         {"PORT"},
	"server.cors_origins": {"CORS_ORIGINS"},
	"history.dsn":         {"DATABASE_URL"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173", "http://localhost:3000"})
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("github.api_url", "https://api.github.com")
	v.SetDefault("github.token", "")
	v.SetDefault("github.timeout", "10s")
	v.SetDefault("github.max_retries", 2)
	v.SetDefault("github.requests_per_second", 0)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash-lite")

	v.SetDefault("history.driver", "none")
	v.SetDefault("history.dsn", "")

	v.SetDefault("feishu.webhook", "")

	v.SetDefault("digest.cron", "")
	v.SetDefault("digest.language", "all")
	v.SetDefault("digest.since", "weekly")
	v.SetDefault("digest.limit", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Load 读取配置：.env -> 默认值 -> 配置文件 -> 环境变量。
// path 为空时在 . 和 ./config 下查找 config.yaml，找不到文件不算错误。
func Load(path string) (*Config, error) {
	// .env 不存在是正常情况
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	v.SetEnvPrefix("REPOFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		prefixed := "REPOFINDER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg.Server.CORSOrigins = splitOrigins(cfg.Server.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查配置是否合法
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: fmt.Sprintf("invalid port %d", c.Server.Port)}
	}
	if c.GitHub.Timeout <= 0 {
		return &ConfigError{Field: "github.timeout", Message: "must be positive"}
	}
	if c.GitHub.MaxRetries < 0 {
		return &ConfigError{Field: "github.max_retries", Message: "must not be negative"}
	}
	if c.GitHub.RequestsPerSecond < 0 {
		return &ConfigError{Field: "github.requests_per_second", Message: "must not be negative"}
	}

	switch strings.ToLower(c.History.Driver) {
	case "", "none", "sqlite":
	case "postgres":
		if c.History.DSN == "" {
			return &ConfigError{Field: "history.dsn", Message: "required for postgres driver"}
		}
	default:
		return &ConfigError{Field: "history.driver", Message: fmt.Sprintf("unsupported driver %q", c.History.Driver)}
	}

	switch c.Digest.Since {
	case "daily", "weekly", "monthly":
	default:
		return &ConfigError{Field: "digest.since", Message: "must be daily, weekly or monthly"}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be text or json"}
	}
	return nil
}

// NewLogger 按配置创建 slog.Logger
func (c LoggingConfig) NewLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

// CORS_ORIGINS 可能是一个逗号分隔的字符串
func splitOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, origin := range strings.Split(item, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, origin)
			}
		}
	}
	return out
}
