// Package resolver computes, for a slot collection and an evaluation instant,
// which configured hour fires next and the full next-run candidate time. All
// functions are pure apart from drawing random minutes from the injected Rand.
package resolver

import (
	"fmt"
	"sort"
	"time"

	"github.com/jakub-k-slys/timetable"
)

// lookaheadDays is the day-by-day search horizon; one full week covers every
// day-of-week constraint.
const lookaheadDays = 7

// FindNextSlot returns the next qualifying (hour, day) pair strictly after
// now. IsTomorrow is true only when the chosen day is exactly one calendar day
// ahead; a match further out reports false, and that asymmetry is part of the
// contract (consumers use the boolean for today-vs-not-today framing).
func FindNextSlot(now time.Time, slots []timetable.Slot) (timetable.ResolvedSlot, error) {
	if len(slots) == 0 {
		return timetable.ResolvedSlot{}, timetable.ErrNoSlots
	}

	// A later hour today wins outright.
	todayHours := hoursForDay(slots, now.Weekday())
	for _, h := range todayHours {
		if h > now.Hour() {
			return timetable.ResolvedSlot{Hour: h, IsTomorrow: false}, nil
		}
	}

	// Otherwise scan forward one day at a time.
	for daysAhead := 1; daysAhead <= lookaheadDays; daysAhead++ {
		day := now.AddDate(0, 0, daysAhead)
		hours := hoursForDay(slots, day.Weekday())
		if len(hours) > 0 {
			return timetable.ResolvedSlot{Hour: hours[0], IsTomorrow: daysAhead == 1}, nil
		}
	}

	// Unreachable with any valid day constraint, but fall back to the
	// globally smallest configured hour rather than failing.
	min := slots[0].Hour
	for _, s := range slots[1:] {
		if s.Hour < min {
			min = s.Hour
		}
	}
	return timetable.ResolvedSlot{Hour: min, IsTomorrow: true}, nil
}

// NextRunTime resolves the full next-fire instant: the hour from FindNextSlot,
// the minute from the first slot configured for that hour (drawn from rng when
// the slot's minute policy is random), and the nearest calendar date on which
// a slot with that hour also matches the weekday. Seconds are zeroed. When rng
// is nil the system random source is used.
func NextRunTime(now time.Time, slots []timetable.Slot, rng timetable.Rand) (timetable.NextRun, error) {
	next, err := FindNextSlot(now, slots)
	if err != nil {
		return timetable.NextRun{}, err
	}

	// First-match semantics: when several slots share the hour, the first
	// one in declaration order decides the minute.
	var chosen *timetable.Slot
	for i := range slots {
		if slots[i].Hour == next.Hour {
			chosen = &slots[i]
			break
		}
	}
	if chosen == nil {
		return timetable.NextRun{}, fmt.Errorf("resolved hour %d has no configured slot", next.Hour)
	}

	minute := int(chosen.Minute)
	if chosen.Minute.IsRandom() {
		if rng == nil {
			rng = timetable.SystemRand()
		}
		minute = rng.IntBetween(0, 59)
	}

	runDay, ok := resolveRunDay(now, slots, next.Hour)
	if !ok {
		runDay = now.AddDate(0, 0, 1)
	}

	candidate := time.Date(runDay.Year(), runDay.Month(), runDay.Day(), next.Hour, minute, 0, 0, now.Location())
	return timetable.NextRun{ReferenceNow: now, Candidate: candidate}, nil
}

// resolveRunDay finds the nearest date, today first, on which some slot with
// the given hour matches that date's weekday. Each slot's day constraint is
// checked independently per candidate day, so an hour shared by slots with
// different day constraints resolves to whichever day comes first.
func resolveRunDay(now time.Time, slots []timetable.Slot, hour int) (time.Time, bool) {
	if now.Hour() < hour && anySlotMatches(slots, hour, now.Weekday()) {
		return now, true
	}
	for daysAhead := 1; daysAhead <= lookaheadDays; daysAhead++ {
		day := now.AddDate(0, 0, daysAhead)
		if anySlotMatches(slots, hour, day.Weekday()) {
			return day, true
		}
	}
	return time.Time{}, false
}

func anySlotMatches(slots []timetable.Slot, hour int, wd time.Weekday) bool {
	for _, s := range slots {
		if s.Hour == hour && s.MatchesDay(wd) {
			return true
		}
	}
	return false
}

// hoursForDay collects the hours of all slots admitting the weekday, sorted
// ascending
func hoursForDay(slots []timetable.Slot, wd time.Weekday) []int {
	var hours []int
	for _, s := range slots {
		if s.MatchesDay(wd) {
			hours = append(hours, s.Hour)
		}
	}
	sort.Ints(hours)
	return hours
}
