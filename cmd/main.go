package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/okian/clubhouse/internal/adapters/http/api"
	"github.com/okian/clubhouse/internal/adapters/http/swagger"
	"github.com/okian/clubhouse/internal/adapters/repository"
	app "github.com/okian/clubhouse/internal/app"
	"github.com/okian/clubhouse/internal/config"
	"github.com/okian/clubhouse/internal/domain/division"
	"github.com/okian/clubhouse/internal/domain/skill"
	"github.com/okian/clubhouse/pkg/logger"
	"github.com/okian/clubhouse/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Our metrics live on a custom registry; drop the default collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> dotenv -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Get().Error(ctx, "failed to load config", logger.Error(err))
		os.Exit(1)
	}
	if err := initLogging(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "failed to initialize log file", logger.Error(err))
		os.Exit(1)
	}

	err = run(ctx, cfg)
	if err != nil {
		logger.Get().Error(ctx, "clubhouse stopped with error", logger.Error(err))
	}
	if syncErr := logger.Sync(); syncErr != nil {
		_, _ = os.Stderr.WriteString("failed to close log file: " + syncErr.Error() + "\n")
	}
	if err != nil {
		os.Exit(1)
	}
}

// initLogging re-initializes the global logger with the configured level
// and optional rotating file.
func initLogging(ctx context.Context, cfg *config.Config) error {
	level, levelErr := logger.ParseLevel(cfg.LogLevel)
	opts := []logger.Option{logger.WithLevel(level)}
	if cfg.LogJSON {
		opts = append(opts, logger.WithJSON())
	}
	if cfg.LogFile != "" {
		opts = append(opts, logger.WithFile(cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxAgeDays))
	}
	if err := logger.Init(opts...); err != nil {
		return err
	}
	if levelErr != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel),
			logger.Error(levelErr),
		)
	}
	return nil
}

// newService opens the configured store and builds the service on top of it.
// The caller owns the returned store.
func newService(ctx context.Context, cfg *config.Config) (*app.Service, repository.Store, error) {
	store, err := repository.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	logger.Get().Info(ctx, "store ready", logger.String("driver", cfg.DBDriver))

	divider := division.New(
		division.WithMaxIterations(cfg.MaxIterations),
		division.WithScoreThreshold(cfg.ScoreThreshold),
		division.WithPositionThreshold(cfg.PositionThreshold),
	)
	rater := skill.NewHeuristicRater(
		skill.WithBase(cfg.SkillBase),
		skill.WithMembershipBonus(cfg.SkillMembershipBonus),
		skill.WithGoalkeeperBonus(cfg.SkillPositionBonus),
	)

	svc := app.New(
		app.WithLogger(logger.Named("service")),
		app.WithStore(store),
		app.WithDivider(divider),
		app.WithSkillRater(rater),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
	)
	return svc, store, nil
}

// newHTTPServer registers the API and docs routes on a fresh mux.
func newHTTPServer(ctx context.Context, addr string, svc *app.Service) *http.Server {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// run serves until ctx is cancelled or the server fails, then shuts down.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	svc, store, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "store close failed", logger.Error(err))
		}
	}()

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	srv := newHTTPServer(ctx, cfg.Addr, svc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		startSystemMetricsUpdater(gctx, svc)
		return nil
	})

	err = g.Wait()
	log.Info(ctx, "server stopped")
	return err
}

// startSystemMetricsUpdater refreshes process and service gauges until ctx ends.
func startSystemMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
			svc.GetStats()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
