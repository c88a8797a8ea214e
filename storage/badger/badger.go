package badger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/jakub-k-slys/timetable"
)

// BadgerStore implements the StateStore interface using BadgerDB, keeping
// fire state across process restarts.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a BadgerDB at path
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable default logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) stateKey(scheduleID string) []byte {
	return []byte(fmt.Sprintf("schedule/%s/state", scheduleID))
}

func (s *BadgerStore) LoadState(ctx context.Context, scheduleID string) (*timetable.State, error) {
	var state timetable.State

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.stateKey(scheduleID))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &state)
		})
	})

	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state for %s: %w", scheduleID, err)
	}

	return &state, nil
}

func (s *BadgerStore) SaveState(ctx context.Context, scheduleID string, state *timetable.State) error {
	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("failed to marshal state: %w", err)
		}

		return txn.Set(s.stateKey(scheduleID), data)
	})
}

func (s *BadgerStore) DeleteState(ctx context.Context, scheduleID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(s.stateKey(scheduleID))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
