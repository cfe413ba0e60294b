// Package config loads runtime configuration from an optional config.yaml
// plus BIZFLOW_-prefixed environment overrides.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Host    string `mapstructure:"host"`
	Port    string `mapstructure:"port"`
	DataDir string `mapstructure:"data_dir"`

	SeedFile string `mapstructure:"seed_file"`

	Executor struct {
		PollInterval   time.Duration `mapstructure:"poll_interval"`
		ExecuteTimeout time.Duration `mapstructure:"execute_timeout"`
	} `mapstructure:"executor"`

	Inbound struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"inbound"`
}

// Load reads config.yaml from the working directory or ./config, applies
// env overrides, and fills defaults. A missing config file is not an error;
// the defaults plus environment are a complete configuration.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("BIZFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", "8090")
	v.SetDefault("data_dir", ".data")
	v.SetDefault("seed_file", "")
	v.SetDefault("executor.poll_interval", 15*time.Second)
	v.SetDefault("executor.execute_timeout", 60*time.Second)
	v.SetDefault("inbound.url", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Executor.PollInterval <= 0 {
		cfg.Executor.PollInterval = 15 * time.Second
	}
	if cfg.Executor.ExecuteTimeout <= 0 {
		cfg.Executor.ExecuteTimeout = 60 * time.Second
	}
	return cfg, nil
}
