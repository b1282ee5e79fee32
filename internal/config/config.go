// Package config holds the settings of a meetlog run.
// Values are layered: defaults, then an optional YAML file, then MEETLOG_*
// environment variables. Command-line flags are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"meetlog/internal/extract"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultInputDir     = "."
	DefaultOutputFile   = "all_meetings.csv"
	DefaultDateFloor    = "2024-01-01"
	DefaultMinAttendees = 2
	DefaultLogLevel     = "info"
	DefaultDomainSuffix = "@group.calendar.google.com"

	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "MEETLOG_"

	dateFloorLayout = "2006-01-02"
)

// PersonalConfig applies to per-contact calendar exports.
type PersonalConfig struct {
	// Exclusions are addresses never reported.
	Exclusions []string `yaml:"exclusions" env:"EXCLUSIONS" envSeparator:","`
}

// GroupConfig applies to the shared group calendar.
type GroupConfig struct {
	// SelfEmail is the owner's address on the group calendar.
	SelfEmail string `yaml:"self_email" env:"SELF_EMAIL"`

	// SelfName is the owner's display name as it appears in event titles.
	SelfName string `yaml:"self_name" env:"SELF_NAME"`

	// TitlePrefix overrides the "between <SelfName> and " title prefix.
	TitlePrefix string `yaml:"title_prefix" env:"TITLE_PREFIX"`

	// DomainSuffix excludes attendee addresses ending with it.
	DomainSuffix string `yaml:"domain_suffix" env:"DOMAIN_SUFFIX"`

	// Exclusions are addresses never reported.
	Exclusions []string `yaml:"exclusions" env:"EXCLUSIONS" envSeparator:","`
}

// Config is the complete run configuration.
type Config struct {
	InputDir     string         `yaml:"input_dir" env:"INPUT_DIR"`
	OutputFile   string         `yaml:"output_file" env:"OUTPUT_FILE"`
	DateFloor    string         `yaml:"date_floor" env:"DATE_FLOOR"`
	MinAttendees int            `yaml:"min_attendees" env:"MIN_ATTENDEES"`
	LogLevel     string         `yaml:"log_level" env:"LOG_LEVEL"`
	Personal     PersonalConfig `yaml:"personal" envPrefix:"PERSONAL_"`
	Group        GroupConfig    `yaml:"group" envPrefix:"GROUP_"`

	floor time.Time
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		InputDir:     DefaultInputDir,
		OutputFile:   DefaultOutputFile,
		DateFloor:    DefaultDateFloor,
		MinAttendees: DefaultMinAttendees,
		LogLevel:     DefaultLogLevel,
		Group: GroupConfig{
			DomainSuffix: DefaultDomainSuffix,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and caches derived values.
// It must be called again after fields are changed.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return errors.New("input directory must not be empty")
	}
	if c.OutputFile == "" {
		return errors.New("output file must not be empty")
	}
	if c.MinAttendees < 0 {
		return fmt.Errorf("min_attendees must not be negative, got %d", c.MinAttendees)
	}

	floor, err := time.Parse(dateFloorLayout, c.DateFloor)
	if err != nil {
		return fmt.Errorf("invalid date_floor %q: %w", c.DateFloor, err)
	}
	c.floor = floor
	return nil
}

// Floor returns the parsed date floor. Validate must have succeeded.
func (c *Config) Floor() time.Time {
	return c.floor
}

// TitlePrefix returns the text that precedes the other person's name in group
// calendar titles, or "" when neither a prefix nor a self name is configured.
func (c *Config) TitlePrefix() string {
	if c.Group.TitlePrefix != "" {
		return c.Group.TitlePrefix
	}
	if c.Group.SelfName != "" {
		return "between " + c.Group.SelfName + " and "
	}
	return ""
}

// PersonalRules returns the extraction rules for a personal calendar owned by selfEmail.
// The empty address is always excluded.
func (c *Config) PersonalRules(selfEmail string) extract.Rules {
	return extract.Rules{
		SelfEmail:    strings.ToLower(selfEmail),
		Excluded:     append(lowerAll(c.Personal.Exclusions), ""),
		DateFloor:    c.floor,
		MinAttendees: c.MinAttendees,
	}
}

// GroupRules returns the extraction rules for the group calendar identified by calendarID.
func (c *Config) GroupRules(calendarID string) extract.Rules {
	excluded := lowerAll(c.Group.Exclusions)
	if calendarID != "" {
		excluded = append(excluded, strings.ToLower(calendarID))
	}
	return extract.Rules{
		SelfEmail:    strings.ToLower(c.Group.SelfEmail),
		Excluded:     excluded,
		DateFloor:    c.floor,
		TitlePrefix:  c.TitlePrefix(),
		DomainSuffix: strings.ToLower(c.Group.DomainSuffix),
	}
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in)+1)
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}
