package ticker

import (
	"testing"
	"time"
)

func TestCronTickerCreation(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		timezone    string
		shouldError bool
	}{
		{"valid every minute", "* * * * *", "UTC", false},
		{"valid hourly", "0 * * * *", "Europe/Warsaw", false},
		{"empty timezone defaults to UTC", "* * * * *", "", false},
		{"invalid expression", "invalid", "UTC", true},
		{"too many fields", "* * * * * *", "UTC", true},
		{"invalid timezone", "* * * * *", "Atlantis/Depths", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCronTicker(tt.expression, tt.timezone)

			if tt.shouldError && err == nil {
				t.Errorf("Expected error for %q in %q, got nil", tt.expression, tt.timezone)
			}
			if !tt.shouldError && err != nil {
				t.Errorf("Unexpected error for %q in %q: %v", tt.expression, tt.timezone, err)
			}
		})
	}
}

func TestMinuteTickerNextTick(t *testing.T) {
	ticker, err := NewMinuteTicker("UTC")
	if err != nil {
		t.Fatalf("Failed to create ticker: %v", err)
	}

	next, err := ticker.NextTick()
	if err != nil {
		t.Fatalf("Failed to get next tick: %v", err)
	}
	if next == nil {
		t.Fatal("Next tick should not be nil")
	}

	now := time.Now().UTC()
	if next.Before(now) {
		t.Errorf("Next tick should be in the future, got %s (now: %s)", next, now)
	}
	if next.Sub(now) > time.Minute {
		t.Errorf("Minute ticker next tick more than a minute away: %s", next)
	}
	if next.Second() != 0 {
		t.Errorf("Minute ticker should tick at second 0, got %d", next.Second())
	}
}

func TestCronTickerPauseResume(t *testing.T) {
	ticker, err := NewMinuteTicker("UTC")
	if err != nil {
		t.Fatalf("Failed to create ticker: %v", err)
	}

	if ticker.IsPaused() {
		t.Error("New ticker should not be paused")
	}

	if err := ticker.Pause(); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if !ticker.IsPaused() {
		t.Error("Ticker should be paused after Pause")
	}

	// Pausing twice is a no-op
	if err := ticker.Pause(); err != nil {
		t.Fatalf("Second pause failed: %v", err)
	}

	if err := ticker.Resume(); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if ticker.IsPaused() {
		t.Error("Ticker should not be paused after Resume")
	}
}

func TestCronTickerStartStop(t *testing.T) {
	ticker, err := NewMinuteTicker("UTC")
	if err != nil {
		t.Fatalf("Failed to create ticker: %v", err)
	}

	if err := ticker.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	// Starting twice is a no-op
	if err := ticker.Start(); err != nil {
		t.Fatalf("Second start failed: %v", err)
	}

	if err := ticker.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	// Stopping twice is a no-op
	if err := ticker.Stop(); err != nil {
		t.Fatalf("Second stop failed: %v", err)
	}
}
