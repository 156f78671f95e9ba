package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		MaxUploadBytes  int64         `yaml:"max_upload_bytes" default:"10485760" validate:"gt=0"`
	} `yaml:"server"`
	Data struct {
		Dir string `yaml:"dir" default:"data" validate:"required"`
	} `yaml:"data"`
	Source struct {
		Provider string `yaml:"provider" default:"none" validate:"oneof=none yahoo"`
		Proxy    string `yaml:"proxy" validate:"omitempty,url"`
		Days     int    `yaml:"days" default:"250" validate:"min=1,max=1250"`
	} `yaml:"source"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" default:"data/forecaster.db"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Schedule struct {
		Enabled    bool     `yaml:"enabled"`
		Cron       string   `yaml:"cron" default:"0 30 18 * * 1-5"`
		Symbols    []string `yaml:"symbols" validate:"required_if=Enabled true,dive,required"`
		Algorithms []string `yaml:"algorithms" validate:"dive,required"`
	} `yaml:"schedule"`
	Algorithms struct {
		SMA struct {
			Window int `yaml:"window" default:"5" validate:"min=2,max=200"`
		} `yaml:"sma"`
		EMA struct {
			Alpha float64 `yaml:"alpha" default:"0.2" validate:"gt=0.0001,lte=1"`
		} `yaml:"ema"`
	} `yaml:"algorithms"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("FORECAST_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("SOURCE_PROVIDER"); v != "" {
		cfg.Source.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("HTTP_PROXY"); v != "" && cfg.Source.Proxy == "" {
		cfg.Source.Proxy = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("FORECAST_SYMBOLS"); v != "" {
		cfg.Schedule.Symbols = strings.Split(v, ",")
		cfg.Schedule.Enabled = true
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if len(cfg.Schedule.Algorithms) == 0 {
		cfg.Schedule.Algorithms = []string{"SMA", "EMA"}
	}

	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
