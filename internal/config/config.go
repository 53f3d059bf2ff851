// Package config provides Viper-based configuration loading for RollForge.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/cory-johannsen/rollforge/internal/dice"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// EngineConfig holds dice engine settings.
type EngineConfig struct {
	// Seed selects a deterministic PCG source; 0 uses the crypto source.
	Seed uint64 `mapstructure:"seed"`
	// Trials is the number of rolls sampled for simulated distributions.
	Trials int `mapstructure:"trials"`
}

// GeneratorConfig holds fallback combination search settings.
type GeneratorConfig struct {
	// Limit is the maximum number of candidates returned.
	Limit int `mapstructure:"limit"`
	// D2Bound is the largest range gap closed by adding or subtracting d2 dice.
	D2Bound int `mapstructure:"d2_bound"`
	// LadderBound is the largest span covered by a pure d2 or dF ladder.
	LadderBound int `mapstructure:"ladder_bound"`
	// ScoreScript optionally names a Lua file defining distribution_score.
	ScoreScript string `mapstructure:"score_script"`
	// ScriptInstructionLimit caps Lua opcodes per call; 0 uses the default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// AIConfig holds settings for the Claude-backed enrichment service.
type AIConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
	// Language is the default BCP 47 tag for free-form analyses.
	Language string `mapstructure:"language"`
}

// LabelsConfig holds label catalog settings.
type LabelsConfig struct {
	// Locale is the BCP 47 tag used to render labels, e.g. "en" or "ja".
	Locale string `mapstructure:"locale"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Generator GeneratorConfig `mapstructure:"generator"`
	AI        AIConfig        `mapstructure:"ai"`
	Labels    LabelsConfig    `mapstructure:"labels"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEngine(c.Engine); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGenerator(c.Generator); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateAI(c.AI); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLabels(c.Labels); err != nil {
		errs = append(errs, err.Error())
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
	return nil
}

// MaxTrials is the largest accepted engine.trials value.
const MaxTrials = 1_000_000

func validateEngine(e EngineConfig) error {
	if e.Trials < 1 || e.Trials > MaxTrials {
		return fmt.Errorf("engine.trials must be 1-%d, got %d", MaxTrials, e.Trials)
	}
	return nil
}

func validateGenerator(g GeneratorConfig) error {
	var errs []string
	if g.Limit < 10 || g.Limit > 20 {
		errs = append(errs, fmt.Sprintf("generator.limit must be 10-20, got %d", g.Limit))
	}
	if g.D2Bound < 0 || g.D2Bound > dice.MaxCount {
		errs = append(errs, fmt.Sprintf("generator.d2_bound must be 0-%d, got %d", dice.MaxCount, g.D2Bound))
	}
	if g.LadderBound < 0 || g.LadderBound > dice.MaxCount {
		errs = append(errs, fmt.Sprintf("generator.ladder_bound must be 0-%d, got %d", dice.MaxCount, g.LadderBound))
	}
	if g.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("generator.script_instruction_limit must be >= 0, got %d", g.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateAI(a AIConfig) error {
	var errs []string
	if a.MaxTokens < 1 {
		errs = append(errs, fmt.Sprintf("ai.max_tokens must be >= 1, got %d", a.MaxTokens))
	}
	if a.Timeout <= 0 {
		errs = append(errs, "ai.timeout must be positive")
	}
	if _, err := language.Parse(a.Language); err != nil {
		errs = append(errs, fmt.Sprintf("ai.language must be a BCP 47 tag, got %q", a.Language))
	}
	if a.Enabled {
		if a.APIKey == "" {
			errs = append(errs, "ai.api_key must not be empty when ai.enabled is set")
		}
		if a.Model == "" {
			errs = append(errs, "ai.model must not be empty when ai.enabled is set")
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLabels(l LabelsConfig) error {
	if _, err := language.Parse(l.Locale); err != nil {
		return fmt.Errorf("labels.locale must be a BCP 47 tag, got %q", l.Locale)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path loads defaults and
// environment overrides only.
//
// Precondition: path must be empty or a valid path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with ROLLFORGE_ prefix
	v.SetEnvPrefix("ROLLFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

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

// Defaults returns a viper instance holding only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")

	v.SetDefault("engine.seed", 0)
	v.SetDefault("engine.trials", 10000)

	v.SetDefault("generator.limit", 12)
	v.SetDefault("generator.d2_bound", 3)
	v.SetDefault("generator.ladder_bound", 12)
	v.SetDefault("generator.score_script", "")
	v.SetDefault("generator.script_instruction_limit", 0)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "claude-sonnet-4-5")
	v.SetDefault("ai.max_tokens", 1024)
	v.SetDefault("ai.timeout", "30s")
	v.SetDefault("ai.language", "en")

	v.SetDefault("labels.locale", "en")
}
