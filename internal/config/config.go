package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// AppName names the config directory and file prefixes.
const AppName = "infogrep"

// GlobalFile is the config file read from the config directory.
const GlobalFile = "config.yml"

// FileConfig is the on-disk YAML configuration shape. Nil fields are unset
// and fall through to the next layer.
type FileConfig struct {
	Pattern         *string `yaml:"pattern"`
	PatternFile     *string `yaml:"pattern_file"`
	Confidence      *string `yaml:"confidence"`
	Truncate        *int    `yaml:"truncate"`
	Workers         *int    `yaml:"workers"`
	ChunkSize       *int    `yaml:"chunk_size"`
	Recursive       *bool   `yaml:"recursive"`
	Include         *string `yaml:"include"`
	Exclude         *string `yaml:"exclude"`
	DefaultExcludes *bool   `yaml:"default_excludes"`
	SkipBinary      *bool   `yaml:"skip_binary"`
	ExactLines      *bool   `yaml:"exact_lines"`
	Format          *string `yaml:"format"`
	NoColor         *bool   `yaml:"no_color"`
	LogLevel        *string `yaml:"log_level"`
	UpdateURL       *string `yaml:"update_url"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadLocal searches dir for .infogrep.yml/.yaml or infogrep.yml/.yaml.
func LoadLocal(dir string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{"." + AppName + ".yml", "." + AppName + ".yaml", AppName + ".yml", AppName + ".yaml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// Dir returns the infogrep config directory: $XDG_CONFIG_HOME/infogrep or
// ~/.config/infogrep.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", errors.New("no config dir")
	}
	return filepath.Join(base, AppName), nil
}

// LoadGlobal loads config.yml from the config directory.
func LoadGlobal() (FileConfig, error) {
	dir, err := Dir()
	if err != nil {
		return FileConfig{}, err
	}
	return LoadGlobalIn(dir)
}

// LoadGlobalIn loads config.yml from dir.
func LoadGlobalIn(dir string) (FileConfig, error) {
	var cfg FileConfig
	p := filepath.Join(dir, GlobalFile)
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// Settings is the fully resolved scan configuration after flags, local and
// global files have been merged.
type Settings struct {
	Input           string `validate:"required"`
	Pattern         string
	PatternFile     string
	Confidence      string
	Truncate        int `validate:"gte=-1"`
	Workers         int `validate:"gte=0"`
	ChunkSize       int `validate:"gte=0"`
	Recursive       bool
	Include         string
	Exclude         string
	DefaultExcludes bool
	SkipBinary      bool
	ExactLines      bool
	Format          string `validate:"oneof=text json sarif"`
	NoColor         bool
	LogLevel        string `validate:"omitempty,oneof=trace debug info warn warning error"`
}

var validate = validator.New()

// Validate checks value ranges and enumerations.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid setting %s=%v (%s %s)", fe.Field(), fe.Value(), fe.Tag(), fe.Param())
		}
		return err
	}
	return nil
}
