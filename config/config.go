// Package config loads the process configuration and collapses every
// schedule definition to the canonical slot form. The core only ever sees
// canonical slots; the legacy flat-hours shape stops here.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jakub-k-slys/timetable"
)

// MinuteRange is the legacy randomized-minute sub-range
type MinuteRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// ScheduleConfig is one schedule definition in the config file. Exactly one
// of Hours (legacy flat shape) or Slots (canonical shape) must be set.
type ScheduleConfig struct {
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone,omitempty"`

	// Legacy flat shape: a list of hours, fired at minute 0, every day.
	// An optional minute_range switches the hours to randomized minutes
	// drawn within the sub-range.
	Hours       []int        `yaml:"hours,omitempty"`
	MinuteRange *MinuteRange `yaml:"minute_range,omitempty"`

	// Canonical shape: full per-slot day and minute policies.
	Slots []timetable.Slot `yaml:"slots,omitempty"`
}

// Config covers process-level configuration read from a YAML file
type Config struct {
	Environment string           `yaml:"environment,omitempty"`
	Timezone    string           `yaml:"timezone,omitempty"`
	StateDir    string           `yaml:"state_dir,omitempty"`
	MetricsBind string           `yaml:"metrics_bind,omitempty"`
	EmitWorkers int              `yaml:"emit_workers,omitempty"`
	Schedules   []ScheduleConfig `yaml:"schedules"`
}

// Load reads and validates the config file. Validation failures here are
// configuration errors: fatal before any scheduling begins.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "production"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.MetricsBind == "" {
		c.MetricsBind = ":9090"
	}
	if c.EmitWorkers == 0 {
		c.EmitWorkers = 4
	}
}

func (c *Config) validate() error {
	if len(c.Schedules) == 0 {
		return timetable.NewConfigurationError("no schedules configured")
	}
	seen := make(map[string]bool)
	for _, sc := range c.Schedules {
		if sc.Name == "" {
			return timetable.NewConfigurationError("schedule without a name")
		}
		if seen[sc.Name] {
			return timetable.NewConfigurationError(fmt.Sprintf("duplicate schedule name: %s", sc.Name))
		}
		seen[sc.Name] = true

		if len(sc.Hours) > 0 && len(sc.Slots) > 0 {
			return timetable.NewConfigurationError(fmt.Sprintf("schedule %s: hours and slots are mutually exclusive", sc.Name))
		}
		if len(sc.Hours) == 0 && len(sc.Slots) == 0 {
			return timetable.NewConfigurationError(fmt.Sprintf("schedule %s: no slots configured", sc.Name))
		}
		if sc.MinuteRange != nil {
			if len(sc.Hours) == 0 {
				return timetable.NewConfigurationError(fmt.Sprintf("schedule %s: minute_range only applies to the flat hours shape", sc.Name))
			}
			if sc.MinuteRange.Min < 0 || sc.MinuteRange.Max > 59 || sc.MinuteRange.Min > sc.MinuteRange.Max {
				return timetable.NewConfigurationError(fmt.Sprintf("schedule %s: invalid minute_range [%d,%d]", sc.Name, sc.MinuteRange.Min, sc.MinuteRange.Max))
			}
		}
		if err := timetable.ValidateSlots(sc.canonicalSlots()); err != nil {
			return fmt.Errorf("schedule %s: %w", sc.Name, err)
		}
	}
	return nil
}

// canonicalSlots collapses the legacy flat shape into canonical slots: hours
// fire at minute 0 on every day, or with randomized minutes when a
// minute_range is present.
func (sc *ScheduleConfig) canonicalSlots() []timetable.Slot {
	if len(sc.Slots) > 0 {
		return sc.Slots
	}
	minute := timetable.Minute(0)
	if sc.MinuteRange != nil {
		minute = timetable.RandomMinute
	}
	slots := make([]timetable.Slot, len(sc.Hours))
	for i, h := range sc.Hours {
		slots[i] = timetable.Slot{Hour: h, Minute: minute, Day: timetable.WeekdayAll}
	}
	return slots
}

// Loaded pairs a built schedule with the random source honoring any legacy
// minute sub-range.
type Loaded struct {
	Schedule *timetable.Schedule
	Rand     timetable.Rand
}

// BuildSchedules turns the config into runnable schedules
func (c *Config) BuildSchedules() ([]Loaded, error) {
	loaded := make([]Loaded, 0, len(c.Schedules))
	for _, sc := range c.Schedules {
		tz := sc.Timezone
		if tz == "" {
			tz = c.Timezone
		}

		schedule, err := timetable.NewSchedule(sc.Name, sc.canonicalSlots(), tz)
		if err != nil {
			return nil, fmt.Errorf("schedule %s: %w", sc.Name, err)
		}

		var rng timetable.Rand = timetable.SystemRand()
		if sc.MinuteRange != nil {
			rng = timetable.BoundedRand{Min: sc.MinuteRange.Min, Max: sc.MinuteRange.Max}
		}

		loaded = append(loaded, Loaded{Schedule: schedule, Rand: rng})
	}
	return loaded, nil
}
