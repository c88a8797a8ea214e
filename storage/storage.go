package storage

import (
	"context"

	"github.com/jakub-k-slys/timetable"
)

// StateStore is the key-value persistence cell for per-schedule fire state.
// One State per schedule ID, created on first save; the driver is the only
// writer for a given schedule.
type StateStore interface {
	// LoadState returns the persisted state for the schedule, or (nil, nil)
	// when the schedule has never fired.
	LoadState(ctx context.Context, scheduleID string) (*timetable.State, error)

	// SaveState persists the state for the schedule, overwriting any
	// previous value.
	SaveState(ctx context.Context, scheduleID string, state *timetable.State) error

	// DeleteState removes the state cell, used on schedule re-registration.
	DeleteState(ctx context.Context, scheduleID string) error

	// Close closes the storage connection
	Close() error
}
