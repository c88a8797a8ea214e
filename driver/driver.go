// Package driver bridges the pure slot-resolution and gate logic to the
// host's cadence and state store. One Driver owns one schedule's fire state.
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jakub-k-slys/timetable"
	"github.com/jakub-k-slys/timetable/gate"
	"github.com/jakub-k-slys/timetable/id"
	"github.com/jakub-k-slys/timetable/metrics"
	"github.com/jakub-k-slys/timetable/resolver"
	"github.com/jakub-k-slys/timetable/storage"
)

// nextRunFunc matches resolver.NextRunTime; tests swap it to exercise the
// fallback-record path.
type nextRunFunc func(now time.Time, slots []timetable.Slot, rng timetable.Rand) (timetable.NextRun, error)

// Driver evaluates one schedule on each tick and emits records on admission.
// Tick must not be re-entered concurrently for the same Driver: the fire
// state has a single writer, and the serialized-tick invariant replaces
// locking.
type Driver struct {
	schedule *timetable.Schedule
	store    storage.StateStore
	emitter  timetable.Emitter
	rng      timetable.Rand
	metrics  metrics.Collector
	logger   zerolog.Logger
	nextRun  nextRunFunc
}

// Option customizes a Driver
type Option func(*Driver)

// WithRand sets the random-minute source
func WithRand(rng timetable.Rand) Option {
	return func(d *Driver) { d.rng = rng }
}

// WithMetrics sets the metrics collector
func WithMetrics(c metrics.Collector) Option {
	return func(d *Driver) { d.metrics = c }
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Driver) { d.logger = logger }
}

// New creates a driver for the schedule. The store holds the schedule's fire
// state; the emitter receives output records.
func New(schedule *timetable.Schedule, store storage.StateStore, emitter timetable.Emitter, opts ...Option) *Driver {
	d := &Driver{
		schedule: schedule,
		store:    store,
		emitter:  emitter,
		rng:      timetable.SystemRand(),
		metrics:  metrics.NewNoOpCollector(),
		logger:   zerolog.Nop(),
		nextRun:  resolver.NextRunTime,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Schedule returns the driven schedule
func (d *Driver) Schedule() *timetable.Schedule {
	return d.schedule
}

// Tick evaluates one instant. On admission the fire state is persisted before
// any output is built, so a failure while constructing or emitting the record
// cannot cause a duplicate fire on the next tick.
func (d *Driver) Tick(ctx context.Context, now time.Time) error {
	started := time.Now()
	now = now.In(d.schedule.Location)

	d.metrics.IncTicks(d.schedule.Name)
	defer func() {
		d.metrics.ObserveTickDuration(d.schedule.Name, time.Since(started))
	}()

	state, err := d.store.LoadState(ctx, d.schedule.ID)
	if err != nil {
		return fmt.Errorf("load state for %s: %w", d.schedule.Name, err)
	}

	var lastFiredAt *time.Time
	if t, ok := state.LastTrigger(); ok {
		lastFiredAt = &t
	}

	if !gate.ShouldTrigger(now, lastFiredAt, d.schedule.Slots) {
		if gate.Matches(now, d.schedule.Slots) {
			d.metrics.IncSuppressed(d.schedule.Name)
			d.logger.Debug().
				Str("schedule", d.schedule.Name).
				Time("now", now).
				Msg("fire suppressed: already fired this hour")
		}
		d.logNextRun(now)
		return nil
	}

	// Admitted. Capture the wall-clock instant and persist it first.
	if state == nil {
		state = &timetable.State{}
	}
	state.SetLastTrigger(now)
	if err := d.store.SaveState(ctx, d.schedule.ID, state); err != nil {
		return fmt.Errorf("persist fire state for %s: %w", d.schedule.Name, err)
	}

	record := d.buildFireRecord(now)
	kind := metrics.FireKindScheduled
	if record.Error != "" {
		kind = metrics.FireKindFallback
	}
	d.metrics.IncFires(d.schedule.Name, kind)

	d.logger.Info().
		Str("schedule", d.schedule.Name).
		Str("fire_id", record.FireID).
		Str("next_run", record.NextRun).
		Msg("schedule fired")

	if err := d.emitter.Emit(ctx, []timetable.Record{record}); err != nil {
		return fmt.Errorf("emit fire for %s: %w", d.schedule.Name, err)
	}
	return nil
}

// ManualRun emits a snapshot of the current time in the schedule's timezone.
// It bypasses the gate entirely and neither reads nor writes fire state.
func (d *Driver) ManualRun(ctx context.Context, now time.Time) error {
	now = now.In(d.schedule.Location)

	record := timetable.Record{
		Timestamp:       now.Format(time.RFC3339),
		ReadableDate:    now.Format("January 2, 2006"),
		ReadableTime:    now.Format("15:04:05"),
		Weekday:         now.Weekday().String(),
		Year:            now.Year(),
		Month:           now.Month().String(),
		Day:             now.Day(),
		Hour:            now.Hour(),
		Minute:          now.Minute(),
		Second:          now.Second(),
		ManualExecution: true,
	}

	d.metrics.IncFires(d.schedule.Name, metrics.FireKindManual)
	if err := d.emitter.Emit(ctx, []timetable.Record{record}); err != nil {
		return fmt.Errorf("emit manual run for %s: %w", d.schedule.Name, err)
	}
	return nil
}

// buildFireRecord assembles the full output record for an admitted fire. The
// next-run preview is best-effort: a failure turns into an explanatory error
// field on the record, never a dropped fire.
func (d *Driver) buildFireRecord(now time.Time) timetable.Record {
	record := timetable.Record{
		FireID:          id.GenerateFireID(d.schedule.ID, now),
		Timestamp:       now.Format(time.RFC3339),
		ReadableDate:    now.Format("January 2, 2006"),
		ReadableTime:    now.Format("15:04:05"),
		Weekday:         now.Weekday().String(),
		Year:            now.Year(),
		Month:           now.Month().String(),
		Day:             now.Day(),
		Hour:            now.Hour(),
		Minute:          now.Minute(),
		Second:          now.Second(),
		Timezone:        timetable.TimezoneLabel(now),
		Slots:           d.schedule.Slots,
		ManualExecution: false,
	}

	next, err := d.nextRun(now, d.schedule.Slots, d.rng)
	if err != nil {
		record.Error = fmt.Sprintf("failed to compute next run: %v", err)
		return record
	}
	record.NextRun = next.Candidate.Format(time.RFC3339)
	record.NextRunReadable = next.Candidate.Format("Monday, January 2, 2006 15:04")
	return record
}

// logNextRun reports the upcoming run on a non-firing tick. Purely
// diagnostic: failures are counted and swallowed.
func (d *Driver) logNextRun(now time.Time) {
	next, err := d.nextRun(now, d.schedule.Slots, d.rng)
	if err != nil {
		d.metrics.IncDiagnosticFailures(d.schedule.Name)
		d.logger.Debug().
			Str("schedule", d.schedule.Name).
			Err(err).
			Msg("next-run diagnostic failed")
		return
	}
	d.logger.Debug().
		Str("schedule", d.schedule.Name).
		Time("next_run", next.Candidate).
		Msg("not a qualifying instant")
}
