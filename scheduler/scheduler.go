// Package scheduler runs many schedules at once: one driver per schedule,
// each fed by its own ticker, with emissions dispatched through a bounded
// worker pool.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jakub-k-slys/timetable"
	"github.com/jakub-k-slys/timetable/concurrency"
	"github.com/jakub-k-slys/timetable/driver"
	"github.com/jakub-k-slys/timetable/gate"
	"github.com/jakub-k-slys/timetable/metrics"
	"github.com/jakub-k-slys/timetable/storage"
	"github.com/jakub-k-slys/timetable/ticker"
)

// Config holds scheduler-level configuration
type Config struct {
	EmitWorkers int
	Metrics     metrics.Collector
	Logger      zerolog.Logger
}

type entry struct {
	driver *driver.Driver
	ticker ticker.Ticker
}

// Scheduler is the orchestrator that bridges tickers to drivers
type Scheduler struct {
	config  Config
	store   storage.StateStore
	pool    *concurrency.Pool
	metrics metrics.Collector
	logger  zerolog.Logger
	emitter timetable.Emitter

	entries   map[string]*entry
	entriesMu sync.RWMutex

	running   bool
	runningMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a scheduler. Emissions go to emitter via the dispatch pool.
func New(config Config, store storage.StateStore, emitter timetable.Emitter) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	mc := config.Metrics
	if mc == nil {
		mc = metrics.NewNoOpCollector()
	}

	s := &Scheduler{
		config:  config,
		store:   store,
		pool:    concurrency.NewPool(config.EmitWorkers),
		metrics: mc,
		logger:  config.Logger,
		entries: make(map[string]*entry),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.emitter = s.pooledEmitter(emitter)
	return s
}

// pooledEmitter hands each emission to the dispatch pool so a slow sink
// cannot stall tick handling. The driver has already persisted state by the
// time Emit is called, so deferred delivery cannot duplicate a fire.
func (s *Scheduler) pooledEmitter(sink timetable.Emitter) timetable.Emitter {
	return timetable.EmitterFunc(func(ctx context.Context, records []timetable.Record) error {
		s.pool.Submit(func() {
			if err := sink.Emit(ctx, records); err != nil {
				s.logger.Error().Err(err).Msg("emission sink failed")
			}
		})
		return nil
	})
}

// Register registers a schedule with its cadence ticker. Extra driver
// options, such as a schedule-specific random source, are applied after the
// scheduler's own.
func (s *Scheduler) Register(schedule *timetable.Schedule, tick ticker.Ticker, opts ...driver.Option) error {
	s.entriesMu.Lock()
	defer s.entriesMu.Unlock()

	if _, exists := s.entries[schedule.ID]; exists {
		return fmt.Errorf("schedule already registered: %s", schedule.Name)
	}

	driverOpts := []driver.Option{
		driver.WithMetrics(s.metrics),
		driver.WithLogger(s.logger),
	}
	driverOpts = append(driverOpts, opts...)

	s.entries[schedule.ID] = &entry{
		driver: driver.New(schedule, s.store, s.emitter, driverOpts...),
		ticker: tick,
	}
	return nil
}

// Start starts the dispatch pool, all tickers, and one watch goroutine per
// schedule.
func (s *Scheduler) Start() error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	s.entriesMu.RLock()
	defer s.entriesMu.RUnlock()

	// Start every ticker before spawning any watcher, so a failure partway
	// through can be unwound without leaking goroutines or leaving earlier
	// tickers running.
	started := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		s.logMissedWindow(e.driver.Schedule())

		if err := e.ticker.Start(); err != nil {
			for _, prev := range started {
				prev.ticker.Stop()
			}
			return fmt.Errorf("start ticker for %s: %w", e.driver.Schedule().Name, err)
		}
		started = append(started, e)
	}

	s.pool.Start()
	for _, e := range started {
		s.wg.Add(1)
		go s.watch(e)
	}

	s.updateGauges()
	s.running = true
	return nil
}

// watch feeds one schedule's ticks into its driver. This goroutine is the
// sole caller of Tick for its schedule, which keeps the single-writer
// invariant on fire state.
func (s *Scheduler) watch(e *entry) {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case tick := <-e.ticker.Channel():
			if err := e.driver.Tick(s.ctx, tick.ActualTime); err != nil {
				s.logger.Error().
					Str("schedule", e.driver.Schedule().Name).
					Err(err).
					Msg("tick failed")
			}
		}
	}
}

// logMissedWindow reports, at startup, a qualifying hour window that passed
// while the process was down. Diagnostic only: the polling model never
// catches up missed windows.
func (s *Scheduler) logMissedWindow(schedule *timetable.Schedule) {
	state, err := s.store.LoadState(s.ctx, schedule.ID)
	if err != nil || state == nil {
		return
	}
	last, ok := state.LastTrigger()
	if !ok {
		return
	}

	now := time.Now().In(schedule.Location)
	recent, found := lastQualifyingHour(now, schedule.Slots)
	if found && last.Before(recent) {
		s.logger.Warn().
			Str("schedule", schedule.Name).
			Time("last_fired", last).
			Time("missed_window", recent).
			Msg("qualifying window passed without a fire; not catching up")
	}
}

// lastQualifyingHour walks back hour by hour, up to a week, to the most
// recent hour that some slot admits. The current hour is excluded: the gate
// can still fire it.
func lastQualifyingHour(now time.Time, slots []timetable.Slot) (time.Time, bool) {
	hourStart := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	for i := 1; i <= 7*24; i++ {
		candidate := hourStart.Add(-time.Duration(i) * time.Hour)
		if gate.Matches(candidate, slots) {
			return candidate, true
		}
	}
	return time.Time{}, false
}

// TriggerManual runs the manual evaluation path for a registered schedule
func (s *Scheduler) TriggerManual(ctx context.Context, scheduleID string) error {
	s.entriesMu.RLock()
	e, exists := s.entries[scheduleID]
	s.entriesMu.RUnlock()

	if !exists {
		return fmt.Errorf("schedule not registered: %s", scheduleID)
	}
	return e.driver.ManualRun(ctx, time.Now())
}

// Pause pauses a schedule's ticker. Fire state is untouched while paused.
func (s *Scheduler) Pause(scheduleID string) error {
	s.entriesMu.RLock()
	e, exists := s.entries[scheduleID]
	s.entriesMu.RUnlock()

	if !exists {
		return fmt.Errorf("schedule not registered: %s", scheduleID)
	}
	if err := e.ticker.Pause(); err != nil {
		return err
	}
	e.driver.Schedule().Paused = true
	s.updateGauges()
	return nil
}

// Resume resumes a paused schedule
func (s *Scheduler) Resume(scheduleID string) error {
	s.entriesMu.RLock()
	e, exists := s.entries[scheduleID]
	s.entriesMu.RUnlock()

	if !exists {
		return fmt.Errorf("schedule not registered: %s", scheduleID)
	}
	if err := e.ticker.Resume(); err != nil {
		return err
	}
	e.driver.Schedule().Paused = false
	s.updateGauges()
	return nil
}

// Schedules returns the registered schedules
func (s *Scheduler) Schedules() []*timetable.Schedule {
	s.entriesMu.RLock()
	defer s.entriesMu.RUnlock()

	schedules := make([]*timetable.Schedule, 0, len(s.entries))
	for _, e := range s.entries {
		schedules = append(schedules, e.driver.Schedule())
	}
	return schedules
}

// Shutdown stops tickers and waits for in-flight ticks up to the timeout
func (s *Scheduler) Shutdown(timeout time.Duration) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return nil
	}

	s.entriesMu.RLock()
	for _, e := range s.entries {
		e.ticker.Stop()
	}
	s.entriesMu.RUnlock()

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		// Timeout - force shutdown
	}

	s.pool.Stop()
	s.running = false
	return nil
}

func (s *Scheduler) updateGauges() {
	s.entriesMu.RLock()
	defer s.entriesMu.RUnlock()

	active, paused := 0, 0
	for _, e := range s.entries {
		if e.driver.Schedule().Paused {
			paused++
		} else {
			active++
		}
	}
	s.metrics.SetSchedulesActive(active)
	s.metrics.SetSchedulesPaused(paused)
}
