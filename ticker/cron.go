package ticker

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// CronTicker implements the Ticker interface using a cron expression. The
// trigger core is driven at minute granularity; see NewMinuteTicker.
type CronTicker struct {
	expression string
	schedule   cron.Schedule

	ch       chan TickContext
	stopCh   chan struct{}
	pauseCh  chan bool
	running  bool
	paused   bool
	location *time.Location
	mu       sync.RWMutex
}

// NewCronTicker creates a cron-based ticker evaluated in the given IANA
// timezone. The empty timezone means UTC.
func NewCronTicker(expression, timezone string) (*CronTicker, error) {
	if timezone == "" {
		timezone = "UTC"
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", timezone, err)
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %s: %w", expression, err)
	}

	return &CronTicker{
		expression: expression,
		schedule:   schedule,
		location:   loc,
		ch:         make(chan TickContext, 10),
		stopCh:     make(chan struct{}),
		pauseCh:    make(chan bool, 1),
	}, nil
}

// NewMinuteTicker creates a ticker firing at the top of every minute, the
// standard cadence for trigger evaluation.
func NewMinuteTicker(timezone string) (*CronTicker, error) {
	return NewCronTicker("* * * * *", timezone)
}

// Start begins emitting ticks
func (t *CronTicker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return nil
	}

	t.running = true
	go t.run()
	return nil
}

// run is the main ticker loop
func (t *CronTicker) run() {
	for {
		t.mu.RLock()
		paused := t.paused
		t.mu.RUnlock()

		if paused {
			select {
			case <-t.stopCh:
				return
			case resume := <-t.pauseCh:
				t.mu.Lock()
				t.paused = !resume
				t.mu.Unlock()
			}
			continue
		}

		now := time.Now().In(t.location)
		next := t.schedule.Next(now)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-timer.C:
			tick := TickContext{
				ScheduledTime: next,
				ActualTime:    time.Now().In(t.location),
			}

			// Non-blocking send: a wedged consumer drops ticks
			// rather than deadlocking the loop.
			select {
			case t.ch <- tick:
			default:
			}
		case <-t.stopCh:
			timer.Stop()
			return
		case pause := <-t.pauseCh:
			timer.Stop()
			t.mu.Lock()
			t.paused = pause
			t.mu.Unlock()
		}
	}
}

// Channel returns the tick context channel
func (t *CronTicker) Channel() <-chan TickContext {
	return t.ch
}

// Stop halts the ticker
func (t *CronTicker) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return nil
	}

	close(t.stopCh)
	t.running = false
	return nil
}

// Pause temporarily pauses the ticker
func (t *CronTicker) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.paused {
		return nil
	}

	select {
	case t.pauseCh <- true:
		t.paused = true
	default:
	}
	return nil
}

// Resume resumes a paused ticker
func (t *CronTicker) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.paused {
		return nil
	}

	select {
	case t.pauseCh <- false:
		t.paused = false
	default:
	}
	return nil
}

// IsPaused returns whether the ticker is paused
func (t *CronTicker) IsPaused() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.paused
}

// NextTick calculates the next scheduled tick time
func (t *CronTicker) NextTick() (*time.Time, error) {
	now := time.Now().In(t.location)
	next := t.schedule.Next(now)
	return &next, nil
}
