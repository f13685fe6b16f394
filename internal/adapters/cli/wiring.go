package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/andrescamacho/portscheduler-go/internal/adapters/logging"
	"github.com/andrescamacho/portscheduler-go/internal/adapters/metrics"
	"github.com/andrescamacho/portscheduler-go/internal/adapters/persistence"
	"github.com/andrescamacho/portscheduler-go/internal/application/scheduler"
	"github.com/andrescamacho/portscheduler-go/internal/application/search"
	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
	"github.com/andrescamacho/portscheduler-go/internal/infrastructure/config"
	"github.com/andrescamacho/portscheduler-go/internal/infrastructure/database"
)

// runtime holds the ambient services shared by every scheduler run: the
// run logger, the optional journal database and the optional metrics server.
// Close releases them in reverse order.
type runtime struct {
	runID  string
	logger *logging.RunLogger

	db      *gorm.DB
	runRepo *persistence.GormRunRepository

	registry      *prometheus.Registry
	metricsServer *metrics.Server
	oracleMetrics *metrics.OracleMetricsCollector

	closers []func()
}

func newRuntime(cfg *config.Config, runID string) (*runtime, error) {
	rt := &runtime{runID: runID}

	out, closeOut, err := openLogOutput(cfg.Logging)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, closeOut)

	var logRepo persistence.RunLogRepository
	if cfg.Database.Enabled {
		db, err := database.NewConnection(&cfg.Database)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		rt.closers = append(rt.closers, func() { _ = database.Close(db) })

		if err := database.AutoMigrate(db); err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to migrate journal tables: %w", err)
		}
		rt.db = db
		rt.runRepo = persistence.NewGormRunRepository(db, nil)
		logRepo = persistence.NewGormRunLogRepository(db, nil)
	}

	rt.logger = logging.NewRunLogger(runID, logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: out,
		Repo:   logRepo,

		PersistLevel: cfg.Logging.PersistLevel,
	})
	rt.closers = append(rt.closers, rt.logger.Flush)

	if cfg.Metrics.Enabled {
		rt.registry = metrics.NewRegistry()
		server, err := metrics.NewServer(rt.registry, cfg.Metrics.Address, cfg.Metrics.Path)
		if err != nil {
			rt.Close()
			return nil, err
		}
		server.Start()
		rt.metricsServer = server
		rt.closers = append(rt.closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		})
	}

	return rt, nil
}

// Close releases everything newRuntime opened
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}

// options builds the scheduler and search options for the enabled services
func (rt *runtime) options(cfg *config.Config) ([]scheduler.Option, []search.Option, error) {
	var schedOpts []scheduler.Option
	searchOpts := []search.Option{search.WithRateLimit(cfg.Search.RateLimit, cfg.Search.Burst)}

	if rt.registry != nil {
		schedMetrics := metrics.NewSchedulerMetricsCollector()
		if err := schedMetrics.Register(rt.registry); err != nil {
			return nil, nil, fmt.Errorf("failed to register scheduler metrics: %w", err)
		}
		searchMetrics := metrics.NewSearchMetricsCollector()
		if err := searchMetrics.Register(rt.registry); err != nil {
			return nil, nil, fmt.Errorf("failed to register search metrics: %w", err)
		}
		rt.oracleMetrics = metrics.NewOracleMetricsCollector()
		if err := rt.oracleMetrics.Register(rt.registry); err != nil {
			return nil, nil, fmt.Errorf("failed to register oracle metrics: %w", err)
		}
		schedOpts = append(schedOpts, scheduler.WithMetrics(schedMetrics))
		searchOpts = append(searchOpts, search.WithMetrics(searchMetrics))
	}

	return schedOpts, searchOpts, nil
}

// journalSink wraps sink with the GORM event journal when the database is enabled
func (rt *runtime) journalSink(sink port.EventSink) port.EventSink {
	if rt.db == nil {
		return sink
	}
	return persistence.NewJournalSink(sink, rt.db, rt.runID, nil)
}

// credentialStore returns the GORM credential table, or nil without a database
func (rt *runtime) credentialStore() port.AuthStringStore {
	if rt.db == nil {
		return nil
	}
	return persistence.NewGormAuthStringStore(rt.db, rt.runID, nil)
}

// startRun records the run in the journal, if any
func (rt *runtime) startRun(ctx context.Context, mode string, docks, workers int) error {
	if rt.runRepo == nil {
		return nil
	}
	return rt.runRepo.Start(ctx, rt.runID, mode, docks, workers)
}

// finishRun stamps the run's outcome in the journal, if any
func (rt *runtime) finishRun(summary *scheduler.RunSummary, runErr error) {
	if rt.runRepo == nil {
		return
	}

	status := persistence.RunStatusCompleted
	if runErr != nil {
		status = persistence.RunStatusFailed
	}

	fields := map[string]interface{}{}
	if summary != nil {
		fields = summaryFields(summary)
	}
	if runErr != nil {
		fields["error"] = runErr.Error()
	}

	// The run context may already be cancelled
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.runRepo.Finish(ctx, rt.runID, status, fields); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record run outcome: %v\n", err)
	}
}

func summaryFields(summary *scheduler.RunSummary) map[string]interface{} {
	return map[string]interface{}{
		"timesteps":     summary.Timesteps,
		"ships_docked":  summary.ShipsDocked,
		"cargo_moves":   summary.CargoMoves,
		"credentials":   summary.Credentials,
		"stalled_docks": summary.StalledDocks,
	}
}

func openLogOutput(cfg config.LoggingConfig) (io.Writer, func(), error) {
	switch cfg.Output {
	case "stderr":
		return os.Stderr, func() {}, nil
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return f, func() { _ = f.Close() }, nil
	default:
		return os.Stdout, func() {}, nil
	}
}
