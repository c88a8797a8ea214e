package timetable

import (
	"context"
	"fmt"
	"time"
)

// Record is one emitted output item. Scheduled fires carry the full
// decomposition plus the active slot configuration and a next-run preview;
// manual fires carry the simpler snapshot shape with ManualExecution set.
type Record struct {
	FireID    string `json:"fire_id,omitempty"`
	Timestamp string `json:"timestamp"`

	ReadableDate string `json:"readable_date,omitempty"`
	ReadableTime string `json:"readable_time,omitempty"`

	Weekday string `json:"day_of_week,omitempty"`
	Year    int    `json:"year,omitempty"`
	Month   string `json:"month,omitempty"`
	Day     int    `json:"day,omitempty"`
	Hour    int    `json:"hour"`
	Minute  int    `json:"minute"`
	Second  int    `json:"second"`

	Timezone string `json:"timezone,omitempty"`

	Slots           []Slot `json:"slot_config,omitempty"`
	NextRun         string `json:"next_run,omitempty"`
	NextRunReadable string `json:"next_run_readable,omitempty"`

	// Error explains a failed next-run computation on an otherwise
	// successful fire; the fire itself is never dropped for it.
	Error string `json:"error,omitempty"`

	ManualExecution bool `json:"manual_execution"`
}

// Emitter is the sink for fire output. One call per fire, one array of
// records per call.
type Emitter interface {
	Emit(ctx context.Context, records []Record) error
}

// EmitterFunc adapts a function to the Emitter interface
type EmitterFunc func(ctx context.Context, records []Record) error

func (f EmitterFunc) Emit(ctx context.Context, records []Record) error {
	return f(ctx, records)
}

// TimezoneLabel renders the zone of t as "Europe/Warsaw (UTC+02:00)"
func TimezoneLabel(t time.Time) string {
	return fmt.Sprintf("%s (UTC%s)", t.Location().String(), t.Format("-07:00"))
}
