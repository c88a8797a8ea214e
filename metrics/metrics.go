package metrics

import (
	"sync"
	"time"
)

// Fire kinds reported to IncFires
const (
	FireKindScheduled = "scheduled"
	FireKindFallback  = "fallback"
	FireKindManual    = "manual"
)

// Collector defines the interface for collecting trigger metrics
type Collector interface {
	// Gauges - current state
	SetSchedulesActive(count int)
	SetSchedulesPaused(count int)

	// Counters - event tracking
	IncTicks(scheduleName string)
	IncFires(scheduleName, kind string)
	IncSuppressed(scheduleName string)
	IncDiagnosticFailures(scheduleName string)

	// Histograms - duration tracking
	ObserveTickDuration(scheduleName string, duration time.Duration)

	// Query methods for testing and monitoring
	GetSchedulesActive() int
	GetSchedulesPaused() int
	GetTicks(scheduleName string) int64
	GetFires(scheduleName, kind string) int64
	GetSuppressed(scheduleName string) int64
	GetDiagnosticFailures(scheduleName string) int64
}

// NoOpCollector is a collector that does nothing
type NoOpCollector struct{}

func NewNoOpCollector() *NoOpCollector {
	return &NoOpCollector{}
}

func (c *NoOpCollector) SetSchedulesActive(count int)                                     {}
func (c *NoOpCollector) SetSchedulesPaused(count int)                                     {}
func (c *NoOpCollector) IncTicks(scheduleName string)                                     {}
func (c *NoOpCollector) IncFires(scheduleName, kind string)                               {}
func (c *NoOpCollector) IncSuppressed(scheduleName string)                                {}
func (c *NoOpCollector) IncDiagnosticFailures(scheduleName string)                        {}
func (c *NoOpCollector) ObserveTickDuration(scheduleName string, duration time.Duration)  {}
func (c *NoOpCollector) GetSchedulesActive() int                                          { return 0 }
func (c *NoOpCollector) GetSchedulesPaused() int                                          { return 0 }
func (c *NoOpCollector) GetTicks(scheduleName string) int64                               { return 0 }
func (c *NoOpCollector) GetFires(scheduleName, kind string) int64                         { return 0 }
func (c *NoOpCollector) GetSuppressed(scheduleName string) int64                          { return 0 }
func (c *NoOpCollector) GetDiagnosticFailures(scheduleName string) int64                  { return 0 }

// InMemoryCollector is a simple in-memory collector for testing and basic monitoring
type InMemoryCollector struct {
	mu sync.RWMutex

	// Gauges
	schedulesActive int
	schedulesPaused int

	// Counters - using map with composite key
	ticks              map[string]int64 // key: "schedule"
	fires              map[string]int64 // key: "schedule:kind"
	suppressed         map[string]int64 // key: "schedule"
	diagnosticFailures map[string]int64 // key: "schedule"

	// Histograms - storing observations
	tickDurations map[string][]time.Duration // key: "schedule"
}

func NewInMemoryCollector() *InMemoryCollector {
	return &InMemoryCollector{
		ticks:              make(map[string]int64),
		fires:              make(map[string]int64),
		suppressed:         make(map[string]int64),
		diagnosticFailures: make(map[string]int64),
		tickDurations:      make(map[string][]time.Duration),
	}
}

// Gauges
func (c *InMemoryCollector) SetSchedulesActive(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schedulesActive = count
}

func (c *InMemoryCollector) SetSchedulesPaused(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schedulesPaused = count
}

func (c *InMemoryCollector) GetSchedulesActive() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.schedulesActive
}

func (c *InMemoryCollector) GetSchedulesPaused() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.schedulesPaused
}

// Counters
func (c *InMemoryCollector) IncTicks(scheduleName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks[scheduleName]++
}

func (c *InMemoryCollector) IncFires(scheduleName, kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := scheduleName + ":" + kind
	c.fires[key]++
}

func (c *InMemoryCollector) IncSuppressed(scheduleName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suppressed[scheduleName]++
}

func (c *InMemoryCollector) IncDiagnosticFailures(scheduleName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnosticFailures[scheduleName]++
}

func (c *InMemoryCollector) GetTicks(scheduleName string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ticks[scheduleName]
}

func (c *InMemoryCollector) GetFires(scheduleName, kind string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := scheduleName + ":" + kind
	return c.fires[key]
}

func (c *InMemoryCollector) GetSuppressed(scheduleName string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.suppressed[scheduleName]
}

func (c *InMemoryCollector) GetDiagnosticFailures(scheduleName string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.diagnosticFailures[scheduleName]
}

// Histograms
func (c *InMemoryCollector) ObserveTickDuration(scheduleName string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickDurations[scheduleName] = append(c.tickDurations[scheduleName], duration)
}

// GetTickDurations returns a copy of the recorded tick durations
func (c *InMemoryCollector) GetTickDurations(scheduleName string) []time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	durations := c.tickDurations[scheduleName]
	result := make([]time.Duration, len(durations))
	copy(result, durations)
	return result
}

// Reset clears all metrics (useful for testing)
func (c *InMemoryCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schedulesActive = 0
	c.schedulesPaused = 0
	c.ticks = make(map[string]int64)
	c.fires = make(map[string]int64)
	c.suppressed = make(map[string]int64)
	c.diagnosticFailures = make(map[string]int64)
	c.tickDurations = make(map[string][]time.Duration)
}
