package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector exposes trigger metrics through a prometheus registry.
// Query methods are backed by local counters so tests and the scheduler can
// read values without scraping.
type PrometheusCollector struct {
	schedulesActive prometheus.Gauge
	schedulesPaused prometheus.Gauge
	ticks           *prometheus.CounterVec
	fires           *prometheus.CounterVec
	suppressed      *prometheus.CounterVec
	diagFailures    *prometheus.CounterVec
	tickDuration    *prometheus.HistogramVec

	mu         sync.RWMutex
	active     int
	paused     int
	tickCounts map[string]int64
	fireCounts map[string]int64
	suppCounts map[string]int64
	diagCounts map[string]int64
}

// NewPrometheusCollector creates the collector and registers its metrics with
// reg. Pass prometheus.DefaultRegisterer for the process-wide registry.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		schedulesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "timetable_schedules_active",
			Help: "Number of active schedules",
		}),
		schedulesPaused: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "timetable_schedules_paused",
			Help: "Number of paused schedules",
		}),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_ticks_total",
			Help: "Evaluation ticks processed per schedule",
		}, []string{"schedule"}),
		fires: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_fires_total",
			Help: "Admitted fires per schedule and kind",
		}, []string{"schedule", "kind"}),
		suppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_suppressed_total",
			Help: "Fires suppressed by the same-hour rule per schedule",
		}, []string{"schedule"}),
		diagFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_diagnostic_failures_total",
			Help: "Next-run diagnostic computation failures per schedule",
		}, []string{"schedule"}),
		tickDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "timetable_tick_duration_seconds",
			Help:    "Tick handling duration per schedule",
			Buckets: prometheus.DefBuckets,
		}, []string{"schedule"}),
		tickCounts: make(map[string]int64),
		fireCounts: make(map[string]int64),
		suppCounts: make(map[string]int64),
		diagCounts: make(map[string]int64),
	}

	reg.MustRegister(c.schedulesActive, c.schedulesPaused, c.ticks, c.fires, c.suppressed, c.diagFailures, c.tickDuration)
	return c
}

func (c *PrometheusCollector) SetSchedulesActive(count int) {
	c.mu.Lock()
	c.active = count
	c.mu.Unlock()
	c.schedulesActive.Set(float64(count))
}

func (c *PrometheusCollector) SetSchedulesPaused(count int) {
	c.mu.Lock()
	c.paused = count
	c.mu.Unlock()
	c.schedulesPaused.Set(float64(count))
}

func (c *PrometheusCollector) IncTicks(scheduleName string) {
	c.mu.Lock()
	c.tickCounts[scheduleName]++
	c.mu.Unlock()
	c.ticks.WithLabelValues(scheduleName).Inc()
}

func (c *PrometheusCollector) IncFires(scheduleName, kind string) {
	c.mu.Lock()
	c.fireCounts[scheduleName+":"+kind]++
	c.mu.Unlock()
	c.fires.WithLabelValues(scheduleName, kind).Inc()
}

func (c *PrometheusCollector) IncSuppressed(scheduleName string) {
	c.mu.Lock()
	c.suppCounts[scheduleName]++
	c.mu.Unlock()
	c.suppressed.WithLabelValues(scheduleName).Inc()
}

func (c *PrometheusCollector) IncDiagnosticFailures(scheduleName string) {
	c.mu.Lock()
	c.diagCounts[scheduleName]++
	c.mu.Unlock()
	c.diagFailures.WithLabelValues(scheduleName).Inc()
}

func (c *PrometheusCollector) ObserveTickDuration(scheduleName string, duration time.Duration) {
	c.tickDuration.WithLabelValues(scheduleName).Observe(duration.Seconds())
}

func (c *PrometheusCollector) GetSchedulesActive() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

func (c *PrometheusCollector) GetSchedulesPaused() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paused
}

func (c *PrometheusCollector) GetTicks(scheduleName string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tickCounts[scheduleName]
}

func (c *PrometheusCollector) GetFires(scheduleName, kind string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fireCounts[scheduleName+":"+kind]
}

func (c *PrometheusCollector) GetSuppressed(scheduleName string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.suppCounts[scheduleName]
}

func (c *PrometheusCollector) GetDiagnosticFailures(scheduleName string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.diagCounts[scheduleName]
}
