package cardex

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/kractero/cardex/cardex/database"
	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

type Config struct {
	Log       LogConfig         `toml:"log"`
	Server    ServerConfig      `toml:"server"`
	DB        database.DBConfig `toml:"db"`
	Redis     RedisConfig       `toml:"redis"`
	Status    StatusConfig      `toml:"status"`
	RateLimit RateLimitConfig   `toml:"rate_limit"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type LogConfig struct {
	Level slog.Level `toml:"level"`
}

type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

type StatusConfig struct {
	FeedURL string `toml:"feed_url"`
	Cron    string `toml:"cron"`
}

type RateLimitConfig struct {
	Requests      int `toml:"requests"`
	WindowSeconds int `toml:"window_seconds"`
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Redis.TTLSeconds == 0 {
		c.Redis.TTLSeconds = 600
	}
	if c.Status.Cron == "" {
		c.Status.Cron = "0 7 * * *"
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = 50
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = 30
	}
}
