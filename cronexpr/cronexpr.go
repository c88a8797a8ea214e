// Package cronexpr derives a coarse cron expression from a slot collection.
// The expression is a best-effort convenience for hosts that register
// callbacks with cron syntax: it ticks every minute of the configured hours,
// and fine-grained admission (day constraints, duplicate suppression) stays
// with the trigger gate.
package cronexpr

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/jakub-k-slys/timetable"
)

// FromSlots builds a minute-granularity cron expression restricted to the
// hours configured in slots, e.g. "* 12,16,21 * * *" for hours 12, 16 and 21.
// The result is validated against the standard five-field parser before it is
// returned.
func FromSlots(slots []timetable.Slot) (string, error) {
	if len(slots) == 0 {
		return "", timetable.ErrNoSlots
	}

	seen := make(map[int]bool)
	hours := make([]int, 0, len(slots))
	for _, s := range slots {
		if !seen[s.Hour] {
			seen[s.Hour] = true
			hours = append(hours, s.Hour)
		}
	}
	sort.Ints(hours)

	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = strconv.Itoa(h)
	}
	expr := fmt.Sprintf("* %s * * *", strings.Join(parts, ","))

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(expr); err != nil {
		return "", fmt.Errorf("derived cron expression %q is invalid: %w", expr, err)
	}

	return expr, nil
}
