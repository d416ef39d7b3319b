// Package config — настройки бота: YAML-файл, затем .env и переменные
// окружения поверх него.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	State   StateConfig   `yaml:"state"`
	Gateway GatewayConfig `yaml:"gateway"`
	Bot     BotConfig     `yaml:"bot"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

type StateConfig struct {
	SavePath     string        `yaml:"save_path"`
	StarterPath  string        `yaml:"starter_path"`
	AutosaveEach time.Duration `yaml:"autosave_interval"` // 0 — выключено
}

type GatewayConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type BotConfig struct {
	Name           string `yaml:"name"` // имя автора сообщений бота в истории
	Guild          string `yaml:"guild"`
	Prefix         string `yaml:"prefix"`
	GeneralChannel string `yaml:"general_channel"`
	Timezone       string `yaml:"timezone"`
	HistoryLimit   int    `yaml:"history_limit"`
}

type MetricsConfig struct {
	Address string `yaml:"address"` // пусто — HTTP не поднимаем
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		State: StateConfig{
			SavePath:    "botInfo.json",
			StarterPath: "starterInfo.json",
		},
		Gateway: GatewayConfig{URL: "ws://127.0.0.1:8765/gateway"},
		Bot: BotConfig{
			Name:           "game-picker",
			Prefix:         "!",
			GeneralChannel: "general",
			Timezone:       "Local",
			HistoryLimit:   500,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load читает файл (если его нет — остаются значения по умолчанию),
// подхватывает .env и переопределения из окружения.
func Load(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	// .env необязателен
	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		c.Gateway.Token = v
	}
	if v := os.Getenv("DISCORD_GUILD"); v != "" {
		c.Bot.Guild = v
	}
	if v := os.Getenv("GATEWAY_URL"); v != "" {
		c.Gateway.URL = v
	}
	if v := os.Getenv("SAVE_PATH"); v != "" {
		c.State.SavePath = v
	}
	if v := os.Getenv("STARTER_PATH"); v != "" {
		c.State.StarterPath = v
	}
	if v := os.Getenv("AUTOSAVE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("AUTOSAVE_INTERVAL: %w", err)
		}
		c.State.AutosaveEach = d
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		c.Metrics.Address = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.State.SavePath == "" {
		return fmt.Errorf("state.save_path cannot be empty")
	}
	if c.State.AutosaveEach < 0 {
		return fmt.Errorf("state.autosave_interval must be >= 0")
	}
	if c.Bot.HistoryLimit <= 0 {
		return fmt.Errorf("bot.history_limit must be > 0")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("bot.timezone: %w", err)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// Location — часовой пояс, по которому считается «сегодня» для приветствий.
func (c *Config) Location() (*time.Location, error) {
	if c.Bot.Timezone == "" || strings.EqualFold(c.Bot.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Bot.Timezone)
}

func (c *Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}
