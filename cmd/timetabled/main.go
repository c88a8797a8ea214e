package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jakub-k-slys/timetable"
	"github.com/jakub-k-slys/timetable/config"
	"github.com/jakub-k-slys/timetable/cronexpr"
	"github.com/jakub-k-slys/timetable/driver"
	"github.com/jakub-k-slys/timetable/logging"
	"github.com/jakub-k-slys/timetable/metrics"
	"github.com/jakub-k-slys/timetable/scheduler"
	"github.com/jakub-k-slys/timetable/storage"
	badgerstore "github.com/jakub-k-slys/timetable/storage/badger"
	"github.com/jakub-k-slys/timetable/ticker"
)

var (
	logger  zerolog.Logger
	cfg     *config.Config
	cfgPath string
)

var rootCmd = &cobra.Command{
	Use:   "timetabled",
	Short: "Timetable - hour-slot trigger scheduler",
	Long:  "Timetable evaluates configured hour slots on a minute cadence and emits a record whenever a schedule fires.",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run all configured schedules",
	RunE:  runServe,
}

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Emit a manual snapshot for one schedule",
	Long:  "Runs the manual evaluation path: emits the current time in the schedule's timezone without touching fire state.",
	RunE:  runTrigger,
}

var cronCmd = &cobra.Command{
	Use:   "cron",
	Short: "Print the derived cron expressions for all schedules",
	RunE:  runCron,
}

var triggerSchedule string

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "timetable.yaml", "path to the configuration file")
	triggerCmd.Flags().StringVar(&triggerSchedule, "schedule", "", "schedule name to trigger")
	triggerCmd.MarkFlagRequired("schedule")
	rootCmd.AddCommand(serveCmd, triggerCmd, cronCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it)
func loadConfig() error {
	var err error
	cfg, err = config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger = logging.Setup(cfg.Environment)
	return nil
}

// stdoutEmitter writes one JSON line per record
type stdoutEmitter struct{}

func (stdoutEmitter) Emit(ctx context.Context, records []timetable.Record) error {
	enc := json.NewEncoder(os.Stdout)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

func openStore() (storage.StateStore, error) {
	if cfg.StateDir == "" {
		logger.Warn().Msg("no state_dir configured; fire state will not survive restarts")
		return storage.NewMemoryStore(), nil
	}
	return badgerstore.NewBadgerStore(cfg.StateDir)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	logger.Info().Str("config", cfgPath).Msg("timetabled starting")

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer store.Close()

	collector := metrics.NewPrometheusCollector(prometheus.DefaultRegisterer)

	sched := scheduler.New(scheduler.Config{
		EmitWorkers: cfg.EmitWorkers,
		Metrics:     collector,
		Logger:      logger,
	}, store, stdoutEmitter{})

	loaded, err := cfg.BuildSchedules()
	if err != nil {
		return err
	}
	for _, l := range loaded {
		tick, err := ticker.NewMinuteTicker(l.Schedule.Location.String())
		if err != nil {
			return fmt.Errorf("schedule %s: %w", l.Schedule.Name, err)
		}
		if err := sched.Register(l.Schedule, tick, driver.WithRand(l.Rand)); err != nil {
			return err
		}
		logger.Info().
			Str("schedule", l.Schedule.Name).
			Ints("hours", l.Schedule.Hours()).
			Str("timezone", l.Schedule.Location.String()).
			Msg("schedule registered")
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	metricsSrv := &http.Server{Addr: cfg.MetricsBind, Handler: promhttp.Handler()}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()
	logger.Info().Str("bind", cfg.MetricsBind).Msg("metrics endpoint up")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	metricsSrv.Shutdown(shutdownCtx)
	return sched.Shutdown(10 * time.Second)
}

func runTrigger(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	loaded, err := cfg.BuildSchedules()
	if err != nil {
		return err
	}
	for _, l := range loaded {
		if l.Schedule.Name != triggerSchedule {
			continue
		}
		d := driver.New(l.Schedule, storage.NewMemoryStore(), stdoutEmitter{}, driver.WithLogger(logger))
		return d.ManualRun(context.Background(), time.Now())
	}
	return fmt.Errorf("schedule not found: %s", triggerSchedule)
}

func runCron(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	loaded, err := cfg.BuildSchedules()
	if err != nil {
		return err
	}
	for _, l := range loaded {
		expr, err := cronexpr.FromSlots(l.Schedule.Slots)
		if err != nil {
			return fmt.Errorf("schedule %s: %w", l.Schedule.Name, err)
		}
		fmt.Printf("%s\t%s\n", l.Schedule.Name, expr)
	}
	return nil
}
