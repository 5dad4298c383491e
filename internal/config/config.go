package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

const (
	sslModeDisable = "disable"
	sslModeRequire = "require"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var Module = fx.Provide(NewConfig)

type (
	Config struct {
		Host     string `mapstructure:"HOST"`
		Port     string `mapstructure:"PORT"`
		GRPCPort string `mapstructure:"GRPC_PORT"`

		DBDriver   string `mapstructure:"DB_DRIVER"`
		DBHost     string `mapstructure:"DB_HOST"`
		DBPort     string `mapstructure:"DB_PORT"`
		DBUser     string `mapstructure:"DB_USER"`
		DBPassword string `mapstructure:"DB_PASSWORD"`
		DBName     string `mapstructure:"DB_NAME"`
		DBSSLMode  string `mapstructure:"DB_SSL_MODE"`
		DBPath     string `mapstructure:"DB_PATH"`

		LLMBaseURL string        `mapstructure:"LLM_BASE_URL"`
		LLMAPIKey  string        `mapstructure:"LLM_API_KEY"`
		LLMModel   string        `mapstructure:"LLM_MODEL"`
		LLMTimeout time.Duration `mapstructure:"LLM_TIMEOUT"`

		PomodoroFile string `mapstructure:"POMODORO_FILE"`

		LogLevel    string `mapstructure:"LOG_LEVEL"`
		DevLogging  bool   `mapstructure:"DEV_LOGGING"`
		CORSOrigins string `mapstructure:"CORS_ORIGINS"`
	}
)

var envs = []string{
	"HOST", "PORT", "GRPC_PORT",
	"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE", "DB_PATH",
	"LLM_BASE_URL", "LLM_API_KEY", "LLM_MODEL", "LLM_TIMEOUT",
	"POMODORO_FILE",
	"LOG_LEVEL", "DEV_LOGGING", "CORS_ORIGINS",
}

func NewConfig() (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("NOTEKEEPER")

	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", "5000")
	v.SetDefault("GRPC_PORT", "9000")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_HOST", "0.0.0.0")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "user")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "notes")
	v.SetDefault("DB_SSL_MODE", sslModeDisable)
	v.SetDefault("DB_PATH", "notes.db")
	v.SetDefault("LLM_BASE_URL", "https://api.moonshot.cn/v1")
	v.SetDefault("LLM_API_KEY", "")
	v.SetDefault("LLM_MODEL", "moonshot-v1-8k")
	v.SetDefault("LLM_TIMEOUT", 30*time.Second)
	v.SetDefault("POMODORO_FILE", "pomodoro_data.json")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DEV_LOGGING", true)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")

	for _, key := range envs {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func validate(cfg *Config) error {
	if cfg.DBDriver != DriverPostgres && cfg.DBDriver != DriverSQLite {
		return errors.New(fmt.Sprintf("DB driver is invalid: %s", cfg.DBDriver))
	}
	if cfg.LLMTimeout <= 0 {
		return errors.New(fmt.Sprintf("LLM timeout must be positive: %s", cfg.LLMTimeout))
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New(fmt.Sprintf("log level is invalid: %s", cfg.LogLevel))
	}

	validSSLValues := []string{sslModeDisable, sslModeRequire}
	for _, validValue := range validSSLValues {
		if cfg.DBSSLMode == validValue {
			return nil
		}
	}
	return errors.New(fmt.Sprintf("DB SSL mode is invalid: %s", cfg.DBSSLMode))
}
