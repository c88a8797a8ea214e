package timetable

import (
	"fmt"
	"sort"
	"time"

	"github.com/jakub-k-slys/timetable/id"
)

// Schedule is one registered trigger schedule: a named, immutable slot
// collection evaluated in a fixed timezone. The mutable fire state lives in
// storage, not here.
type Schedule struct {
	ID       string
	Name     string
	Slots    []Slot
	Location *time.Location
	Paused   bool
}

// NewSchedule creates a schedule from a slot collection. The timezone is an
// IANA name; the empty string means UTC. The slot collection is validated
// here, before any scheduling begins.
func NewSchedule(name string, slots []Slot, timezone string) (*Schedule, error) {
	if err := ValidateSlots(slots); err != nil {
		return nil, err
	}

	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, NewConfigurationError(fmt.Sprintf("invalid timezone %s: %v", timezone, err))
	}

	return &Schedule{
		ID:       id.GenerateScheduleID(name),
		Name:     name,
		Slots:    slots,
		Location: loc,
	}, nil
}

// Hours returns the distinct configured hours in ascending order
func (s *Schedule) Hours() []int {
	seen := make(map[int]bool)
	hours := make([]int, 0, len(s.Slots))
	for _, slot := range s.Slots {
		if !seen[slot.Hour] {
			seen[slot.Hour] = true
			hours = append(hours, slot.Hour)
		}
	}
	sort.Ints(hours)
	return hours
}
