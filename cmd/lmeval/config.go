package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const envConfigPath = "LMEVAL_CONFIG"

// Config is the optional lmeval configuration file
// (~/.config/lmeval/config.yaml). Pointer fields distinguish "not set" from
// zero values.
type Config struct {
	Model   string `yaml:"model"`
	Workers *int   `yaml:"workers"`
	OutDir  string `yaml:"out_dir"`

	ServerAddress string   `yaml:"server_address"`
	RateLimit     *float64 `yaml:"rate_limit"`
	RateBurst     *int     `yaml:"rate_burst"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "lmeval", "config.yaml")
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing file yields a zero Config.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyEvalConfig fills model, workers and output directory from the config
// file when the corresponding flag was not given.
func applyEvalConfig(c *cli.Command, cfg Config, modelPath *string, workers *int, outDir *string) {
	if cfg.Model != "" && !c.IsSet("model") {
		*modelPath = cfg.Model
	}
	if workers != nil && cfg.Workers != nil && !c.IsSet("workers") {
		*workers = *cfg.Workers
	}
	if outDir != nil && cfg.OutDir != "" && !c.IsSet("out") {
		*outDir = cfg.OutDir
	}
}

func applyServeConfig(c *cli.Command, cfg Config, addr *string, limit *float64, burst *int) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.RateLimit != nil && !c.IsSet("rate") {
		*limit = *cfg.RateLimit
	}
	if cfg.RateBurst != nil && !c.IsSet("burst") {
		*burst = *cfg.RateBurst
	}
}
