// Package config provides Viper-based configuration loading for the skirmish simulator.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// SKIRMISH_LOGGING_LEVEL=debug.
const EnvPrefix = "SKIRMISH"

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is a zap sink: "stderr", "stdout", or a file path. Game output
	// goes to stdout, so logs default to stderr.
	Output string `mapstructure:"output"`
}

// BoardConfig holds grid settings.
type BoardConfig struct {
	// Size is the side length used when the scenario does not set one.
	Size int `mapstructure:"size"`
}

// DiceConfig selects the random source.
type DiceConfig struct {
	// Seed makes rolls reproducible. Zero selects the crypto/rand source.
	Seed int64 `mapstructure:"seed"`
}

// ContentConfig locates YAML content.
type ContentConfig struct {
	// WeaponsDir is a directory of weapon YAML files. Empty uses only the shortsword.
	WeaponsDir string `mapstructure:"weapons_dir"`
	// Scenario is a scenario YAML file. Empty uses the built-in duel.
	Scenario string `mapstructure:"scenario"`
}

// ScriptingConfig holds Lua hook settings.
type ScriptingConfig struct {
	// Dir is a directory of *.lua hook scripts. Empty disables scripting.
	Dir string `mapstructure:"dir"`
	// InstructionLimit caps the opcodes a single hook call may execute.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// DisplayConfig holds console output settings.
type DisplayConfig struct {
	// Color enables ANSI colour on combat messages.
	Color bool `mapstructure:"color"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Board     BoardConfig     `mapstructure:"board"`
	Dice      DiceConfig      `mapstructure:"dice"`
	Content   ContentConfig   `mapstructure:"content"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Display   DisplayConfig   `mapstructure:"display"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Board.Size < 1 {
		errs = append(errs, fmt.Sprintf("board.size must be >= 1, got %d", c.Board.Size))
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.Output == "" {
		return errors.New("logging.output must not be empty")
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration produced by defaults alone.
func Default() Config {
	cfg, err := LoadFromViper(newViper())
	if err != nil {
		panic(fmt.Sprintf("config: defaults are invalid: %v", err))
	}
	return cfg
}

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("board.size", 10)

	v.SetDefault("dice.seed", 0)

	v.SetDefault("content.weapons_dir", "")
	v.SetDefault("content.scenario", "")

	v.SetDefault("scripting.dir", "")
	v.SetDefault("scripting.instruction_limit", 100000)

	v.SetDefault("display.color", false)
}
