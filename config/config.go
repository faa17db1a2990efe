// Package config loads server configuration from a YAML file with
// ${ENV_VAR} placeholder substitution, so secrets and per-deployment
// values stay out of the file itself.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port        int      `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Payroll struct {
		// OffDays as time.Weekday numbers (0 = Sunday). When non-empty,
		// they are written to the settings store at startup.
		OffDays []int `yaml:"off_days"`
	} `yaml:"payroll"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Database.Path = "attendance.db"
	return cfg
}

// Load reads and parses the YAML file at path. ${NAME} placeholders are
// replaced with the corresponding environment variable before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	content := string(data)
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		placeholder := "${" + pair[0] + "}"
		content = strings.ReplaceAll(content, placeholder, pair[1])
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}
