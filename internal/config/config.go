package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage struct {
		Path string `yaml:"path"`

		Backup struct {
			Enabled       bool   `yaml:"enabled"`
			Path          string `yaml:"path"`
			RetentionDays int    `yaml:"retention_days"`
		} `yaml:"backup"`
	} `yaml:"storage"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Key      string `yaml:"key"`
	} `yaml:"redis"`

	Scheduler struct {
		Timezone string `yaml:"timezone"`
	} `yaml:"scheduler"`

	Notifications struct {
		Rate               float64 `yaml:"rate"`
		Burst              int     `yaml:"burst"`
		MaxRetries         int     `yaml:"max_retries"`
		RetryDelaysSeconds []int   `yaml:"retry_delays_seconds"`

		Telegram struct {
			BotToken string `yaml:"bot_token"`
			ChatID   int64  `yaml:"chat_id"`
		} `yaml:"telegram"`
	} `yaml:"notifications"`

	History struct {
		Enabled       bool   `yaml:"enabled"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"history"`

	Bot struct {
		Enabled      bool    `yaml:"enabled"`
		Debug        bool    `yaml:"debug"`
		AllowedChats []int64 `yaml:"allowed_chats"`
	} `yaml:"bot"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Maintenance struct {
		// Cron spec for the daily backup and history prune job.
		Schedule string `yaml:"schedule"`
	} `yaml:"maintenance"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		// No config file: run on defaults.
	} else {
		// Support ${ENV_VAR} placeholders in YAML config.
		data = []byte(os.ExpandEnv(string(data)))
		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyDefaults()

	if err = os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Storage.Path == "" {
		c.Storage.Path = "data/reminders.json"
	}
	if c.Storage.Backup.Path == "" {
		c.Storage.Backup.Path = "data/backups"
	}
	if c.Storage.Backup.RetentionDays == 0 {
		c.Storage.Backup.RetentionDays = 14
	}
	if c.Notifications.Rate <= 0 {
		c.Notifications.Rate = 20
	}
	if c.Notifications.Burst <= 0 {
		c.Notifications.Burst = 30
	}
	if c.Notifications.MaxRetries <= 0 {
		c.Notifications.MaxRetries = 3
	}
	if len(c.Notifications.RetryDelaysSeconds) == 0 {
		c.Notifications.RetryDelaysSeconds = []int{1, 5, 30}
	}
	if c.History.Path == "" {
		c.History.Path = "data/history.db"
	}
	if c.History.RetentionDays == 0 {
		c.History.RetentionDays = 90
	}
	if c.Maintenance.Schedule == "" {
		c.Maintenance.Schedule = "0 3 * * *"
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
}

// Location resolves the scheduler timezone, falling back to local time.
func (c *Config) Location() *time.Location {
	if c.Scheduler.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// RetryDelays converts the configured delays to durations.
func (c *Config) RetryDelays() []time.Duration {
	out := make([]time.Duration, 0, len(c.Notifications.RetryDelaysSeconds))
	for _, s := range c.Notifications.RetryDelaysSeconds {
		out = append(out, time.Duration(s)*time.Second)
	}
	return out
}

// HistoryRetention returns the journal retention window.
func (c *Config) HistoryRetention() time.Duration {
	return time.Duration(c.History.RetentionDays) * 24 * time.Hour
}
