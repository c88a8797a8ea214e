package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jakub-k-slys/timetable"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timetable.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadCanonicalShape(t *testing.T) {
	path := writeConfig(t, `
environment: development
timezone: Europe/Warsaw
schedules:
  - name: reports
    slots:
      - hour: 8
        minute: 15
      - hour: 21
        minute: random
        weekday: FRI
      - hour: 12
        minute: "30"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("Expected development, got %s", cfg.Environment)
	}
	if len(cfg.Schedules) != 1 {
		t.Fatalf("Expected 1 schedule, got %d", len(cfg.Schedules))
	}

	slots := cfg.Schedules[0].canonicalSlots()
	if len(slots) != 3 {
		t.Fatalf("Expected 3 slots, got %d", len(slots))
	}
	if slots[0].Hour != 8 || slots[0].Minute != 15 {
		t.Errorf("Unexpected first slot: %+v", slots[0])
	}
	if !slots[1].Minute.IsRandom() || slots[1].Day != timetable.WeekdayFri {
		t.Errorf("Unexpected second slot: %+v", slots[1])
	}
	if slots[2].Minute != 30 {
		t.Errorf("Expected numeric-string minute coerced to 30, got %d", slots[2].Minute)
	}
}

func TestLoadLegacyFlatShape(t *testing.T) {
	path := writeConfig(t, `
schedules:
  - name: legacy
    hours: [12, 16, 21]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	slots := cfg.Schedules[0].canonicalSlots()
	if len(slots) != 3 {
		t.Fatalf("Expected 3 slots, got %d", len(slots))
	}
	for i, want := range []int{12, 16, 21} {
		if slots[i].Hour != want {
			t.Errorf("Expected hour %d, got %d", want, slots[i].Hour)
		}
		if slots[i].Minute != 0 {
			t.Errorf("Legacy hours should collapse to minute 0, got %d", slots[i].Minute)
		}
		if slots[i].Day != timetable.WeekdayAll {
			t.Errorf("Legacy hours should collapse to ALL days, got %s", slots[i].Day)
		}
	}
}

func TestLoadLegacyMinuteRange(t *testing.T) {
	path := writeConfig(t, `
schedules:
  - name: legacy-random
    hours: [9]
    minute_range:
      min: 10
      max: 20
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	slots := cfg.Schedules[0].canonicalSlots()
	if !slots[0].Minute.IsRandom() {
		t.Error("minute_range should collapse to randomized minutes")
	}

	loaded, err := cfg.BuildSchedules()
	if err != nil {
		t.Fatalf("BuildSchedules failed: %v", err)
	}
	for i := 0; i < 200; i++ {
		v := loaded[0].Rand.IntBetween(0, 59)
		if v < 10 || v > 20 {
			t.Fatalf("Draw %d outside legacy sub-range [10,20]", v)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
schedules:
  - name: minimal
    hours: [7]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Environment != "production" {
		t.Errorf("Expected production default, got %s", cfg.Environment)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Expected UTC default, got %s", cfg.Timezone)
	}
	if cfg.MetricsBind != ":9090" {
		t.Errorf("Expected :9090 default, got %s", cfg.MetricsBind)
	}
	if cfg.EmitWorkers != 4 {
		t.Errorf("Expected 4 emit workers, got %d", cfg.EmitWorkers)
	}
}

func TestLoadRejectsInvalidConfigs(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no schedules", `timezone: UTC`},
		{"unnamed schedule", `
schedules:
  - hours: [7]
`},
		{"duplicate names", `
schedules:
  - name: twin
    hours: [7]
  - name: twin
    hours: [9]
`},
		{"both shapes", `
schedules:
  - name: both
    hours: [7]
    slots:
      - hour: 9
        minute: 0
`},
		{"neither shape", `
schedules:
  - name: neither
`},
		{"hour out of range", `
schedules:
  - name: bad-hour
    hours: [25]
`},
		{"minute out of range", `
schedules:
  - name: bad-minute
    slots:
      - hour: 9
        minute: 75
`},
		{"negative minute", `
schedules:
  - name: negative-minute
    slots:
      - hour: 9
        minute: -1
`},
		{"negative minute string", `
schedules:
  - name: negative-minute-string
    slots:
      - hour: 9
        minute: "-1"
`},
		{"bad day token", `
schedules:
  - name: bad-day
    slots:
      - hour: 9
        minute: 0
        weekday: MONDAY
`},
		{"minute_range with slots", `
schedules:
  - name: misplaced-range
    slots:
      - hour: 9
        minute: 0
    minute_range:
      min: 1
      max: 2
`},
		{"inverted minute_range", `
schedules:
  - name: inverted
    hours: [9]
    minute_range:
      min: 30
      max: 10
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Error("Expected a configuration error, got nil")
			}
		})
	}
}

func TestBuildSchedulesTimezones(t *testing.T) {
	path := writeConfig(t, `
timezone: Europe/Warsaw
schedules:
  - name: default-tz
    hours: [7]
  - name: override-tz
    timezone: America/New_York
    hours: [7]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	loaded, err := cfg.BuildSchedules()
	if err != nil {
		t.Fatalf("BuildSchedules failed: %v", err)
	}
	if loaded[0].Schedule.Location.String() != "Europe/Warsaw" {
		t.Errorf("Expected process default timezone, got %s", loaded[0].Schedule.Location)
	}
	if loaded[1].Schedule.Location.String() != "America/New_York" {
		t.Errorf("Expected per-schedule override, got %s", loaded[1].Schedule.Location)
	}
}

func TestBuildSchedulesInvalidTimezone(t *testing.T) {
	path := writeConfig(t, `
timezone: Narnia/Lamppost
schedules:
  - name: lost
    hours: [7]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := cfg.BuildSchedules(); err == nil {
		t.Error("Expected error for invalid timezone")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
