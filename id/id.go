package id

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Namespace UUIDs for the two entity kinds (UUIDv5 requires a namespace)
var (
	ScheduleNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	FireNamespace     = uuid.MustParse("6ba7b812-9dad-11d1-80b4-00c04fd430c8")
)

// GenerateScheduleID generates a deterministic ID for a schedule based on its name
func GenerateScheduleID(name string) string {
	id := uuid.NewSHA1(ScheduleNamespace, []byte(name))
	return fmt.Sprintf("sched_%s", id.String())
}

// GenerateFireID generates a deterministic ID for a fire based on the schedule
// ID and the capture time, so the same (schedule, instant) pair names the same
// fire everywhere
func GenerateFireID(scheduleID string, capturedAt time.Time) string {
	timeStr := capturedAt.UTC().Format(time.RFC3339)
	combined := fmt.Sprintf("%s:%s", scheduleID, timeStr)
	id := uuid.NewSHA1(FireNamespace, []byte(combined))
	return fmt.Sprintf("fire_%s", id.String())
}
