package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/dkeye/relay/internal/adapters/rtc"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	LogLevel   string        `mapstructure:"log_level"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`

	SendBuffer   int           `mapstructure:"send_buffer"`
	RateLimit    int           `mapstructure:"rate_limit"`
	RateInterval time.Duration `mapstructure:"rate_interval"`
	Backpressure string        `mapstructure:"backpressure"`
	MaxSDPBytes  int           `mapstructure:"max_sdp_bytes"`

	Board      Board                 `mapstructure:"board"`
	Redis      Redis                 `mapstructure:"redis"`
	Persist    Persist               `mapstructure:"persist"`
	ICEServers []rtc.ICEServerConfig `mapstructure:"ice_servers"`
}

// Board configures which rooms carry a task board.
type Board struct {
	Prefixes    []string      `mapstructure:"prefixes"`
	Columns     []string      `mapstructure:"columns"`
	LoadTimeout time.Duration `mapstructure:"load_timeout"`
}

// Redis is optional; with an empty Addr boards live in memory only.
type Redis struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type Persist struct {
	Queue        int           `mapstructure:"queue"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	Backoff      time.Duration `mapstructure:"backoff"`
	DrainTimeout time.Duration `mapstructure:"drain_timeout"`
}

func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return load(fmt.Sprintf("config/config.%s.yaml", env))
}

func load(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("relay")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "change-me")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("rate_limit", 50)
	v.SetDefault("rate_interval", "1s")
	v.SetDefault("backpressure", "drop")
	v.SetDefault("max_sdp_bytes", rtc.DefaultMaxSDPBytes)
	v.SetDefault("board.prefixes", []string{"project-", "proj-"})
	v.SetDefault("board.columns", []string{"todo", "inProgress", "review", "done"})
	v.SetDefault("board.load_timeout", "3s")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "relay")
	v.SetDefault("persist.queue", 1024)
	v.SetDefault("persist.max_attempts", 5)
	v.SetDefault("persist.backoff", "200ms")
	v.SetDefault("persist.drain_timeout", "2s")

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("config loaded")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Bool("redis", cfg.Redis.Addr != "").
		Msg("config ready")
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("port %d out of range", c.Port)
	case c.SendBuffer <= 0:
		return errors.New("send_buffer must be positive")
	case c.RateLimit <= 0 || c.RateInterval <= 0:
		return errors.New("rate_limit and rate_interval must be positive")
	case c.PingPeriod <= 0:
		return errors.New("ping_period must be positive")
	}
	return nil
}
