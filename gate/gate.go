// Package gate decides, for a single evaluation instant, whether a schedule
// should fire. The gate runs on a fast cadence (every minute or faster) while
// fires are rare, so it suppresses repeats within the same clock hour using
// only elapsed time and hour equality. No per-hour bookkeeping is persisted.
package gate

import (
	"time"

	"github.com/jakub-k-slys/timetable"
)

// ShouldTrigger reports whether the schedule should fire at now. lastFiredAt
// is nil when the schedule has never fired; the first qualifying check is
// always admitted. A fire is suppressed only when the previous one happened
// less than an hour ago AND within the same clock hour as now.
func ShouldTrigger(now time.Time, lastFiredAt *time.Time, slots []timetable.Slot) bool {
	if !Matches(now, slots) {
		return false
	}

	if lastFiredAt == nil {
		return true
	}

	last := lastFiredAt.In(now.Location())
	if now.Sub(last) < time.Hour && last.Hour() == now.Hour() {
		return false
	}

	return true
}

// Matches reports whether any slot admits now's hour and weekday. It is the
// schedule-eligibility half of admission; callers distinguishing "not a
// qualifying instant" from "suppressed duplicate" check this separately.
func Matches(now time.Time, slots []timetable.Slot) bool {
	for _, s := range slots {
		if s.Hour == now.Hour() && s.MatchesDay(now.Weekday()) {
			return true
		}
	}
	return false
}
