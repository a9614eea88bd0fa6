package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jsonatlas/jsonatlas/internal/errors"
)

// Config represents the complete configuration for jsonatlas
type Config struct {
	// Mode is the schema building mode: "types" or "samples".
	Mode string `yaml:"mode"`
	// Workers is the flatten worker count; 0 means one per CPU.
	Workers int `yaml:"workers"`
	// Format is the schema output format: "text" or "json".
	Format string       `yaml:"format"`
	Report ReportConfig `yaml:"report"`
}

// ReportConfig controls text schema rendering
type ReportConfig struct {
	TypeNames bool   `yaml:"type_names"`
	RootLabel string `yaml:"root_label"`
}

// Valid mode and format values
const (
	ModeTypes   = "types"
	ModeSamples = "samples"

	FormatText = "text"
	FormatJSON = "json"
)

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Mode:    ModeTypes,
		Workers: 0,
		Format:  FormatText,
		Report: ReportConfig{
			TypeNames: false,
			RootLabel: "root",
		},
	}
}

// LoadConfig loads configuration from a YAML file, starting from the
// defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("failed to read config file '"+path+"'", err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError("failed to parse config file '"+path+"'", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsonatlas.yml", ".jsonatlas.yaml", "jsonatlas.yml", "jsonatlas.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

func (c *Config) validate() error {
	if c.Mode != ModeTypes && c.Mode != ModeSamples {
		return errors.NewConfigError("mode must be 'types' or 'samples', got '"+c.Mode+"'", nil)
	}
	if c.Format != FormatText && c.Format != FormatJSON {
		return errors.NewConfigError("format must be 'text' or 'json', got '"+c.Format+"'", nil)
	}
	if c.Workers < 0 {
		return errors.NewConfigError("workers must not be negative", nil)
	}
	return nil
}
