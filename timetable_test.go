package timetable

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        Weekday
		shouldError bool
	}{
		{"empty means all", "", WeekdayAll, false},
		{"all", "ALL", WeekdayAll, false},
		{"monday", "MON", WeekdayMon, false},
		{"lowercase", "fri", WeekdayFri, false},
		{"invalid token", "MONDAY", "", true},
		{"garbage", "xyz", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWeekday(tt.input)
			if tt.shouldError {
				if err == nil {
					t.Errorf("Expected error for %q, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for %q: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestWeekdayMatches(t *testing.T) {
	if !WeekdayAll.Matches(time.Wednesday) {
		t.Error("ALL should match every day")
	}
	if !Weekday("").Matches(time.Saturday) {
		t.Error("Empty constraint should match every day")
	}
	if !WeekdaySun.Matches(time.Sunday) {
		t.Error("SUN should match Sunday")
	}
	if WeekdayMon.Matches(time.Sunday) {
		t.Error("MON should not match Sunday")
	}
}

func TestMinuteUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        Minute
		shouldError bool
	}{
		{"integer", `30`, 30, false},
		{"random string", `"random"`, RandomMinute, false},
		{"random mixed case", `"Random"`, RandomMinute, false},
		{"numeric string", `"45"`, 45, false},
		{"garbage string", `"soon"`, 0, true},
		{"object", `{}`, 0, true},
		{"negative integer", `-1`, 0, true},
		{"negative numeric string", `"-1"`, 0, true},
		{"integer too high", `60`, 0, true},
		{"numeric string too high", `"60"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Minute
			err := json.Unmarshal([]byte(tt.input), &m)
			if tt.shouldError {
				if err == nil {
					t.Errorf("Expected error for %s, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for %s: %v", tt.input, err)
			}
			if m != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, m)
			}
		})
	}
}

func TestMinuteMarshalJSON(t *testing.T) {
	data, err := json.Marshal(Slot{Hour: 9, Minute: RandomMinute})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var decoded Slot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !decoded.Minute.IsRandom() {
		t.Errorf("Random minute lost in round trip: %s", data)
	}
}

func TestValidateSlots(t *testing.T) {
	tests := []struct {
		name        string
		slots       []Slot
		shouldError bool
	}{
		{"valid single", []Slot{{Hour: 12, Minute: 0}}, false},
		{"valid random minute", []Slot{{Hour: 23, Minute: RandomMinute, Day: WeekdayFri}}, false},
		{"empty", nil, true},
		{"hour too high", []Slot{{Hour: 24, Minute: 0}}, true},
		{"hour negative", []Slot{{Hour: -1, Minute: 0}}, true},
		{"minute too high", []Slot{{Hour: 12, Minute: 60}}, true},
		{"minute negative", []Slot{{Hour: 12, Minute: Minute(-1)}}, true},
		{"bad day token", []Slot{{Hour: 12, Minute: 0, Day: "MONDAY"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlots(tt.slots)
			if tt.shouldError {
				if err == nil {
					t.Error("Expected a validation error, got nil")
				} else if !IsConfigurationError(err) {
					t.Errorf("Expected a configuration error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestStateLastTriggerRoundTrip(t *testing.T) {
	var state State
	if _, ok := state.LastTrigger(); ok {
		t.Error("Fresh state should have no last trigger")
	}

	fired := time.Date(2025, 11, 3, 12, 30, 45, 0, time.UTC)
	state.SetLastTrigger(fired)

	got, ok := state.LastTrigger()
	if !ok {
		t.Fatal("Expected a last trigger after setting one")
	}
	if !got.Equal(fired) {
		t.Errorf("Expected %s, got %s", fired, got)
	}
}

func TestStateNilSafe(t *testing.T) {
	var state *State
	if _, ok := state.LastTrigger(); ok {
		t.Error("Nil state should report no last trigger")
	}
}

func TestNewSchedule(t *testing.T) {
	slots := []Slot{{Hour: 8, Minute: 15}}

	schedule, err := NewSchedule("daily-report", slots, "Europe/Warsaw")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if schedule.ID == "" {
		t.Error("Expected a schedule ID")
	}
	if schedule.Location.String() != "Europe/Warsaw" {
		t.Errorf("Expected Europe/Warsaw, got %s", schedule.Location)
	}
	if schedule.Paused {
		t.Error("New schedules should start unpaused")
	}

	if _, err := NewSchedule("bad-tz", slots, "Mars/Olympus"); err == nil {
		t.Error("Expected error for invalid timezone")
	}
	if _, err := NewSchedule("no-slots", nil, "UTC"); err == nil {
		t.Error("Expected error for empty slot collection")
	}
}

func TestScheduleHours(t *testing.T) {
	schedule, err := NewSchedule("hours", []Slot{
		{Hour: 21, Minute: 0},
		{Hour: 12, Minute: 0, Day: WeekdayMon},
		{Hour: 12, Minute: 30, Day: WeekdayFri},
		{Hour: 16, Minute: 0},
	}, "UTC")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	hours := schedule.Hours()
	want := []int{12, 16, 21}
	if len(hours) != len(want) {
		t.Fatalf("Expected %v, got %v", want, hours)
	}
	for i := range want {
		if hours[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, hours)
		}
	}
}

func TestBoundedRand(t *testing.T) {
	rng := BoundedRand{Min: 10, Max: 20}
	for i := 0; i < 200; i++ {
		v := rng.IntBetween(0, 59)
		if v < 10 || v > 20 {
			t.Fatalf("Draw %d outside [10,20]", v)
		}
	}

	// Disjoint ranges collapse to the lower bound rather than panicking.
	if v := (BoundedRand{Min: 50, Max: 55}).IntBetween(0, 10); v != 50 {
		t.Errorf("Expected collapsed draw 50, got %d", v)
	}
}

func TestSystemRandBounds(t *testing.T) {
	rng := SystemRand()
	for i := 0; i < 200; i++ {
		v := rng.IntBetween(0, 59)
		if v < 0 || v > 59 {
			t.Fatalf("Draw %d outside [0,59]", v)
		}
	}
}

func TestTimezoneLabel(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Fatalf("LoadLocation failed: %v", err)
	}

	winter := time.Date(2025, 1, 15, 12, 0, 0, 0, loc)
	if got := TimezoneLabel(winter); got != "Europe/Warsaw (UTC+01:00)" {
		t.Errorf("Unexpected label: %s", got)
	}

	summer := time.Date(2025, 7, 15, 12, 0, 0, 0, loc)
	if got := TimezoneLabel(summer); got != "Europe/Warsaw (UTC+02:00)" {
		t.Errorf("Unexpected label: %s", got)
	}
}
