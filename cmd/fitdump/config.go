package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the fitdump configuration file
// (~/.config/fitdump/config.yaml). Fields are pointers where "unset" and
// "explicitly false/zero" must be distinguishable.
type Config struct {
	OutputFormat string `yaml:"output_format"`
	IgnoreCRC    *bool  `yaml:"ignore_crc"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
	ServeAddress string `yaml:"serve_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "fitdump", "config.yaml")
}

// LoadConfig reads the config file. Returns a zero Config if the file
// doesn't exist or fails to parse.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

// applyDumpConfig applies config file defaults to dump command variables
// when the corresponding CLI flag was not explicitly set.
func applyDumpConfig(c *cli.Command, cfg Config, format *string, ignoreCRC *bool) {
	if cfg.OutputFormat != "" && !c.IsSet("type") {
		*format = cfg.OutputFormat
	}
	if cfg.IgnoreCRC != nil && !c.IsSet("ignore-crc") {
		*ignoreCRC = *cfg.IgnoreCRC
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.ServeAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServeAddress
	}
}
