package timetable

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// Weekday restricts a slot to one day of the week. WeekdayAll matches every day.
type Weekday string

const (
	WeekdayAll Weekday = "ALL"
	WeekdaySun Weekday = "SUN"
	WeekdayMon Weekday = "MON"
	WeekdayTue Weekday = "TUE"
	WeekdayWed Weekday = "WED"
	WeekdayThu Weekday = "THU"
	WeekdayFri Weekday = "FRI"
	WeekdaySat Weekday = "SAT"
)

// weekdayNumbers maps day tokens to Go weekday numbers (Sunday=0 .. Saturday=6)
var weekdayNumbers = map[Weekday]time.Weekday{
	WeekdaySun: time.Sunday,
	WeekdayMon: time.Monday,
	WeekdayTue: time.Tuesday,
	WeekdayWed: time.Wednesday,
	WeekdayThu: time.Thursday,
	WeekdayFri: time.Friday,
	WeekdaySat: time.Saturday,
}

// ParseWeekday parses a day token. The empty string is treated as ALL.
func ParseWeekday(s string) (Weekday, error) {
	if s == "" {
		return WeekdayAll, nil
	}
	d := Weekday(strings.ToUpper(s))
	if d == WeekdayAll {
		return WeekdayAll, nil
	}
	if _, ok := weekdayNumbers[d]; !ok {
		return "", NewConfigurationError(fmt.Sprintf("invalid day token: %s", s))
	}
	return d, nil
}

// Matches reports whether the constraint admits the given calendar weekday
func (d Weekday) Matches(wd time.Weekday) bool {
	if d == "" || d == WeekdayAll {
		return true
	}
	num, ok := weekdayNumbers[d]
	return ok && num == wd
}

// RandomMinute marks a slot whose minute is drawn fresh for every resolution.
// The sentinel sits far outside the configurable range so no numeric input,
// valid or not, can alias it.
const RandomMinute Minute = math.MinInt32

// Minute is a fixed minute in [0,59], or RandomMinute.
type Minute int

// IsRandom reports whether the minute should be drawn from a random source
func (m Minute) IsRandom() bool {
	return m == RandomMinute
}

// parseMinuteString accepts "random" or a decimal integer, the two shapes the
// configuration pathway allows.
func parseMinuteString(s string) (Minute, error) {
	if strings.EqualFold(strings.TrimSpace(s), "random") {
		return RandomMinute, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 59 {
		return 0, NewConfigurationError(fmt.Sprintf("invalid minute: %q", s))
	}
	return Minute(n), nil
}

// UnmarshalYAML accepts an integer in [0,59], a numeric string, or the
// string "random".
func (m *Minute) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var n int
	if err := unmarshal(&n); err == nil {
		if n < 0 || n > 59 {
			return NewConfigurationError(fmt.Sprintf("minute %d out of range [0,59]", n))
		}
		*m = Minute(n)
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return NewConfigurationError("minute must be an integer or \"random\"")
	}
	parsed, err := parseMinuteString(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// UnmarshalJSON mirrors the YAML rules for JSON-carried configurations.
func (m *Minute) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n < 0 || n > 59 {
			return NewConfigurationError(fmt.Sprintf("minute %d out of range [0,59]", n))
		}
		*m = Minute(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return NewConfigurationError("minute must be an integer or \"random\"")
	}
	parsed, err := parseMinuteString(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalJSON writes fixed minutes as numbers and random minutes as "random"
func (m Minute) MarshalJSON() ([]byte, error) {
	if m.IsRandom() {
		return json.Marshal("random")
	}
	return json.Marshal(int(m))
}

// Slot is one configured trigger opportunity: an hour of the day, a minute
// policy, and an optional day-of-week constraint. Slots are immutable once a
// schedule is activated.
type Slot struct {
	Hour   int     `json:"hour" yaml:"hour"`
	Minute Minute  `json:"minute" yaml:"minute"`
	Day    Weekday `json:"weekday,omitempty" yaml:"weekday,omitempty"`
}

// MatchesDay reports whether the slot's day constraint admits the weekday
func (s Slot) MatchesDay(wd time.Weekday) bool {
	return s.Day.Matches(wd)
}

// ValidateSlots checks a slot collection for use as a schedule. An empty
// collection is invalid: a schedule needs at least one slot to be usable.
func ValidateSlots(slots []Slot) error {
	if len(slots) == 0 {
		return ErrNoSlots
	}
	for i, s := range slots {
		if s.Hour < 0 || s.Hour > 23 {
			return NewConfigurationError(fmt.Sprintf("slot %d: hour %d out of range [0,23]", i, s.Hour))
		}
		if !s.Minute.IsRandom() && (s.Minute < 0 || s.Minute > 59) {
			return NewConfigurationError(fmt.Sprintf("slot %d: minute %d out of range [0,59]", i, int(s.Minute)))
		}
		if _, err := ParseWeekday(string(s.Day)); err != nil {
			return NewConfigurationError(fmt.Sprintf("slot %d: invalid day token: %s", i, s.Day))
		}
	}
	return nil
}

// ResolvedSlot is the outcome of a next-slot search. IsTomorrow is true only
// when the chosen day is exactly the next calendar day; matches two or more
// days out report false. Downstream consumers rely on the literal boolean for
// today-vs-not-today framing, so this asymmetry is kept.
type ResolvedSlot struct {
	Hour       int
	IsTomorrow bool
}

// NextRun pairs the evaluation instant with the fully resolved next-fire
// candidate (date, hour and minute set, seconds zeroed).
type NextRun struct {
	ReferenceNow time.Time
	Candidate    time.Time
}

// State is the per-schedule mutable state: when the schedule last fired, in
// epoch milliseconds, or nil if it never has. It is written only from within
// the tick handler of its owning driver.
type State struct {
	LastTriggerTime *int64 `json:"last_trigger_time,omitempty"`
}

// LastTrigger returns the last fire instant, if any
func (s *State) LastTrigger() (time.Time, bool) {
	if s == nil || s.LastTriggerTime == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*s.LastTriggerTime), true
}

// SetLastTrigger records a fire instant
func (s *State) SetLastTrigger(t time.Time) {
	ms := t.UnixMilli()
	s.LastTriggerTime = &ms
}

// Rand draws uniformly distributed integers over an inclusive range. It is an
// injected capability so tests can supply deterministic sequences.
type Rand interface {
	IntBetween(min, max int) int
}

type systemRand struct{}

func (systemRand) IntBetween(min, max int) int {
	return min + rand.Intn(max-min+1)
}

// SystemRand returns a Rand backed by the process-wide random source
func SystemRand() Rand {
	return systemRand{}
}

// BoundedRand narrows every draw to the intersection with [Min,Max]. Legacy
// configurations could restrict randomized minutes to a sub-range; the
// restriction is honored through the injected capability so the core never
// sees the legacy shape.
type BoundedRand struct {
	Min  int
	Max  int
	Base Rand
}

func (r BoundedRand) IntBetween(min, max int) int {
	if r.Min > min {
		min = r.Min
	}
	if r.Max < max {
		max = r.Max
	}
	if max < min {
		max = min
	}
	base := r.Base
	if base == nil {
		base = SystemRand()
	}
	return base.IntBetween(min, max)
}
