package config

import (
	"fmt"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/abhisek/seatutor/internal/llm"
	"github.com/abhisek/seatutor/internal/sheets"
	"github.com/abhisek/seatutor/internal/storage"
	"github.com/abhisek/seatutor/internal/store"
)

// EnvPrefix is prepended to every environment override, e.g.
// SEATUTOR_LIMITS_PER_STUDENT.
const EnvPrefix = "SEATUTOR"

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Limits LimitsConfig `mapstructure:"limits"`
	Tutor  TutorConfig  `mapstructure:"tutor"`
	LLM    llm.Config   `mapstructure:"llm"`
	Export ExportConfig `mapstructure:"export"`
	Sheets SheetsConfig `mapstructure:"sheets"`
}

type ServerConfig struct {
	Addr       string          `mapstructure:"addr" validate:"required"`
	CORS       CORSConfig      `mapstructure:"cors"`
	SessionTTL time.Duration   `mapstructure:"session_ttl" validate:"gt=0"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig bounds requests per client IP. Zero Rate disables it.
type RateLimitConfig struct {
	Rate  float64 `mapstructure:"rate" validate:"gte=0"`
	Burst int     `mapstructure:"burst" validate:"gte=0"`
}

type StoreConfig struct {
	Driver string      `mapstructure:"driver" validate:"oneof=sqlite mysql"`
	Path   string      `mapstructure:"path"`
	MySQL  MySQLConfig `mapstructure:"mysql"`
}

type MySQLConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	TLS             bool   `mapstructure:"tls"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_seconds"`
}

// LimitsConfig caps graded turns per calendar day. Zero disables a cap.
type LimitsConfig struct {
	PerStudent int `mapstructure:"per_student" validate:"gte=0"`
	Global     int `mapstructure:"global" validate:"gte=0"`
}

type TutorConfig struct {
	Timezone    string  `mapstructure:"timezone" validate:"required,timezone"`
	FlushBatch  int     `mapstructure:"flush_batch" validate:"gte=1"`
	MaxPending  int     `mapstructure:"max_pending" validate:"gte=0"`
	MaxTokens   int     `mapstructure:"max_tokens" validate:"gt=0"`
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	TopP        float64 `mapstructure:"top_p" validate:"gte=0,lte=1"`
	MaxHistory  int     `mapstructure:"max_history" validate:"gte=0"`
}

type ExportConfig struct {
	S3 S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
	Prefix string `mapstructure:"prefix"`
}

// SheetsConfig configures the optional spreadsheet mirror of activity rows.
type SheetsConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	SpreadsheetID string        `mapstructure:"spreadsheet_id" validate:"required_if=Enabled true"`
	Range         string        `mapstructure:"range"`
	AccessToken   string        `mapstructure:"access_token" validate:"required_if=Enabled true"`
	BaseURL       string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// Location resolves the tutor timezone. Validation has already checked the
// name, so a failure here falls back to UTC.
func (c TutorConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Options converts the section into the store package's options.
func (c StoreConfig) Options() store.Config {
	return store.Config{
		Driver: c.Driver,
		Path:   c.Path,
		MySQL: store.MySQLConfig{
			Host:            c.MySQL.Host,
			Port:            c.MySQL.Port,
			Database:        c.MySQL.Database,
			Username:        c.MySQL.Username,
			Password:        c.MySQL.Password,
			TLS:             c.MySQL.TLS,
			MaxOpenConns:    c.MySQL.MaxOpenConns,
			ConnMaxLifetime: time.Duration(c.MySQL.ConnMaxLifetime) * time.Second,
		},
	}
}

// Options converts the section into the S3 exporter's settings.
func (c ExportConfig) Options() storage.Config {
	return storage.Config{Bucket: c.S3.Bucket, Region: c.S3.Region, Prefix: c.S3.Prefix}
}

// Options converts the section into the mirror client's settings.
func (c SheetsConfig) Options() sheets.Config {
	return sheets.Config{
		SpreadsheetID: c.SpreadsheetID,
		Range:         c.Range,
		AccessToken:   c.AccessToken,
		BaseURL:       c.BaseURL,
		Timeout:       c.Timeout,
	}
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("seatutor")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/seatutor")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:8080"})
	v.SetDefault("server.session_ttl", 2*time.Hour)
	v.SetDefault("server.rate_limit.rate", 5.0)
	v.SetDefault("server.rate_limit.burst", 20)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "")
	v.SetDefault("store.mysql.host", "localhost")
	v.SetDefault("store.mysql.port", 3306)
	v.SetDefault("store.mysql.database", "seatutor")
	v.SetDefault("store.mysql.username", "seatutor")
	v.SetDefault("store.mysql.password", "")
	v.SetDefault("store.mysql.tls", false)
	v.SetDefault("store.mysql.max_open_conns", 10)
	v.SetDefault("store.mysql.conn_max_lifetime_seconds", 300)

	v.SetDefault("limits.per_student", 50)
	v.SetDefault("limits.global", 1000)

	v.SetDefault("tutor.timezone", "America/Port_of_Spain")
	v.SetDefault("tutor.flush_batch", 5)
	v.SetDefault("tutor.max_pending", 100)
	v.SetDefault("tutor.max_tokens", 500)
	v.SetDefault("tutor.temperature", 0.7)
	v.SetDefault("tutor.top_p", 0.8)
	v.SetDefault("tutor.max_history", 20)

	llmDefaults := llm.DefaultConfig()
	v.SetDefault("llm.provider", llmDefaults.Provider)
	v.SetDefault("llm.gemini.model", llmDefaults.Gemini.Model)
	v.SetDefault("llm.gemini.base_url", "")
	v.SetDefault("llm.anthropic.model", llmDefaults.Anthropic.Model)
	v.SetDefault("llm.anthropic.base_url", "")
	v.SetDefault("llm.openai.model", llmDefaults.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.openrouter.model", llmDefaults.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.bedrock.region", llmDefaults.Bedrock.Region)
	v.SetDefault("llm.bedrock.model", llmDefaults.Bedrock.Model)
	v.SetDefault("llm.retry.max_attempts", llmDefaults.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", llmDefaults.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", llmDefaults.Retry.MaxWait)
	v.SetDefault("llm.timeout", llmDefaults.Timeout)

	v.SetDefault("export.s3.bucket", "")
	v.SetDefault("export.s3.region", "us-east-1")
	v.SetDefault("export.s3.prefix", "seatutor/reports")

	v.SetDefault("sheets.enabled", false)
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.range", "Activity!A:G")
	v.SetDefault("sheets.base_url", "https://sheets.googleapis.com")
	v.SetDefault("sheets.timeout", 10*time.Second)

	// Secrets come from the environment only; the prefixed name wins over the
	// vendor's conventional one.
	secrets := []struct {
		key  string
		envs []string
	}{
		{"llm.gemini.api_key", []string{"SEATUTOR_LLM_GEMINI_API_KEY", "GEMINI_API_KEY"}},
		{"llm.anthropic.api_key", []string{"SEATUTOR_LLM_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"}},
		{"llm.openai.api_key", []string{"SEATUTOR_LLM_OPENAI_API_KEY", "OPENAI_API_KEY"}},
		{"llm.openrouter.api_key", []string{"SEATUTOR_LLM_OPENROUTER_API_KEY", "OPENROUTER_API_KEY"}},
		{"sheets.access_token", []string{"SEATUTOR_SHEETS_ACCESS_TOKEN"}},
		{"store.mysql.password", []string{"SEATUTOR_STORE_MYSQL_PASSWORD", "DB_PASSWORD"}},
	}
	for _, s := range secrets {
		args := append([]string{s.key}, s.envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", s.envs[0], err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

// ConfigFileUsed reports the file Load read, or "" when running on
// defaults and environment only.
func (loader *ConfigLoader) ConfigFileUsed() string {
	return loader.viper.ConfigFileUsed()
}
