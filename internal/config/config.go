package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime settings for the API process. Values come from an
// optional config.yaml and TASKHIVE_* environment variables, env winning.
type Config struct {
	ListenAddr     string        `mapstructure:"listen_addr"`
	DatabaseURL    string        `mapstructure:"database_url"`
	LogLevel       string        `mapstructure:"log_level"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	RateLimitRPS   int           `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// Load reads configuration from config.yaml (working directory or ./config)
// and the environment. A missing config file is not an error.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("TASKHIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("access_token_ttl", "15m")
	v.SetDefault("rate_limit_rps", 20)
	v.SetDefault("rate_limit_burst", 40)
	v.SetDefault("max_body_bytes", 1<<20)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 15 * time.Minute
	}
	return cfg, nil
}
