// Package config provides Viper-based configuration loading for the skirmish host.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout" or a file path.
	Output string `mapstructure:"output"`
}

// CombatConfig holds the pacing of the combat phases.
type CombatConfig struct {
	// FadeIn is how long InitCombat waits for the screen fade.
	FadeIn time.Duration `mapstructure:"fade_in"`
	// StepDuration is the animation time for one tile of movement.
	StepDuration time.Duration `mapstructure:"step_duration"`
	// ActionBanner is how long the action name stays up before effects resolve.
	ActionBanner time.Duration `mapstructure:"action_banner"`
	// EffectPause is the wait after effects land, letting VFX play.
	EffectPause time.Duration `mapstructure:"effect_pause"`
	// CPUPreview is how long a CPU attack preview is shown.
	CPUPreview time.Duration `mapstructure:"cpu_preview"`
	// Connectivity is the grid adjacency: "four" or "eight".
	Connectivity string `mapstructure:"connectivity"`
	// Tick is the driver period for real-time hosts.
	Tick time.Duration `mapstructure:"tick"`
	// MaxTurns stops an autoplayed encounter that never resolves; 0 means unbounded.
	MaxTurns int `mapstructure:"max_turns"`
}

// AIConfig holds CPU strategy settings.
type AIConfig struct {
	// DefaultStrategy names the strategy used by combatants that name none.
	DefaultStrategy string `mapstructure:"default_strategy"`
	// ScriptDir holds *.lua strategies; empty disables scripted strategies.
	ScriptDir string `mapstructure:"script_dir"`
	// InstructionLimit bounds each Lua hook call; 0 means unlimited.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// ContentConfig locates encounter data.
type ContentConfig struct {
	// Encounter is the YAML encounter file.
	Encounter string `mapstructure:"encounter"`
	// EffectsDir holds effect definitions referenced by abilities.
	EffectsDir string `mapstructure:"effects_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Combat  CombatConfig  `mapstructure:"combat"`
	AI      AIConfig      `mapstructure:"ai"`
	Content ContentConfig `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateAI(c.AI); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
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
	if l.Output == "" {
		return errors.New("logging.output must not be empty")
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	var errs []string
	durations := []struct {
		name string
		d    time.Duration
	}{
		{"combat.fade_in", c.FadeIn},
		{"combat.step_duration", c.StepDuration},
		{"combat.action_banner", c.ActionBanner},
		{"combat.effect_pause", c.EffectPause},
		{"combat.cpu_preview", c.CPUPreview},
	}
	for _, d := range durations {
		if d.d < 0 {
			errs = append(errs, fmt.Sprintf("%s must not be negative", d.name))
		}
	}
	if c.Tick <= 0 {
		errs = append(errs, fmt.Sprintf("combat.tick must be > 0, got %s", c.Tick))
	}
	validConn := map[string]bool{"four": true, "eight": true}
	if !validConn[c.Connectivity] {
		errs = append(errs, fmt.Sprintf("combat.connectivity must be one of [four, eight], got %q", c.Connectivity))
	}
	if c.MaxTurns < 0 {
		errs = append(errs, fmt.Sprintf("combat.max_turns must be >= 0, got %d", c.MaxTurns))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateAI(a AIConfig) error {
	var errs []string
	if a.DefaultStrategy == "" {
		errs = append(errs, "ai.default_strategy must not be empty")
	}
	if a.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("ai.instruction_limit must be >= 0, got %d", a.InstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	if c.Encounter == "" {
		return errors.New("content.encounter must not be empty")
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
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
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("combat.fade_in", "2s")
	v.SetDefault("combat.step_duration", "250ms")
	v.SetDefault("combat.action_banner", "500ms")
	v.SetDefault("combat.effect_pause", "1s")
	v.SetDefault("combat.cpu_preview", "2s")
	v.SetDefault("combat.connectivity", "four")
	v.SetDefault("combat.tick", "16ms")
	v.SetDefault("combat.max_turns", 500)

	v.SetDefault("ai.default_strategy", "seek")
	v.SetDefault("ai.script_dir", "content/scripts")
	v.SetDefault("ai.instruction_limit", 100000)

	v.SetDefault("content.encounter", "content/encounters/meadow.yaml")
	v.SetDefault("content.effects_dir", "content/effects")
}
