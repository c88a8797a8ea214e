// Package ticker provides the periodic cadence that drives schedule
// evaluation. A ticker emits tick contexts on a channel; it does not decide
// anything about firing.
package ticker

import (
	"time"
)

// TickContext carries timing info for one evaluation tick
type TickContext struct {
	ScheduledTime time.Time
	ActualTime    time.Time
}

// Ticker defines the cadence mechanism interface
type Ticker interface {
	// Channel returns a read-only channel that emits tick contexts
	Channel() <-chan TickContext

	// Control methods
	Start() error
	Stop() error
	Pause() error
	Resume() error

	// Status checks
	IsPaused() bool
	NextTick() (*time.Time, error)
}
