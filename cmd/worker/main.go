// Package main is the entry point of the depth chart worker.
//
// The worker builds one depth chart per enabled sport, consumes each sport's
// Redis queue and writes one result line per command to stdout. Logs go to
// stderr so stdout stays a clean command transcript.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/depthchart-hub/depth-chart-hub/config"
	"github.com/depthchart-hub/depth-chart-hub/internal/infrastructure/messaging"
	"github.com/depthchart-hub/depth-chart-hub/internal/infrastructure/metrics"
	"github.com/depthchart-hub/depth-chart-hub/internal/infrastructure/persistence/postgres"
	"github.com/depthchart-hub/depth-chart-hub/internal/infrastructure/scheduler"
	"github.com/depthchart-hub/depth-chart-hub/internal/infrastructure/scheduler/jobs"
	"github.com/depthchart-hub/depth-chart-hub/internal/interface/http"
	"github.com/depthchart-hub/depth-chart-hub/internal/interface/http/handlers"
	"github.com/depthchart-hub/depth-chart-hub/internal/interface/interpreter"
	"github.com/depthchart-hub/depth-chart-hub/internal/sport"
	"github.com/depthchart-hub/depth-chart-hub/pkg/circuitbreaker"
	"github.com/depthchart-hub/depth-chart-hub/pkg/logger"
	"github.com/depthchart-hub/depth-chart-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "worker",
		Short:         "Consume depth chart commands from the sport queues",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}
	root.AddCommand(newMigrateCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	var status bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply command journal migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Database.URL == "" {
				return errors.New("DATABASE_URL is required")
			}

			ctx := cmd.Context()
			conn, err := postgres.NewConnection(ctx, postgresConfig(cfg))
			if err != nil {
				return err
			}
			defer conn.Close()

			migrator := postgres.NewMigrator(conn)
			if !status {
				n, err := migrator.Migrate(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
			}
			migrations, err := migrator.Status(ctx)
			if err != nil {
				return err
			}
			for _, m := range migrations {
				state := "pending"
				if m.AppliedAt != nil {
					state = "applied " + m.AppliedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%03d %-28s %s\n", m.Version, m.Name, state)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "only print migration status")
	return cmd
}

// ══════════════════════════════════════════════════════════════════════════════
// RUN
// ══════════════════════════════════════════════════════════════════════════════

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. Configuration & logging
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	log.Info("starting depth chart worker",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Any("sports", cfg.Sports.Enabled),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. Metrics
	// ─────────────────────────────────────────────────────────────────────────
	var recorder *metrics.Recorder
	if cfg.Observability.MetricsEnabled {
		recorder = metrics.NewRecorder()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. Redis transport
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to Redis...", logger.String("addr", cfg.Redis.Addr()))
	var queue *messaging.RedisQueue
	connectRetrier := retry.New(
		retry.WithMaxAttempts(5),
		retry.WithInitialDelay(500*time.Millisecond),
		retry.WithRetryIf(func(err error) bool { return ctx.Err() == nil }),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			log.Warn("dependency not reachable, retrying",
				logger.Int("attempt", attempt), logger.Err(err), logger.Duration("delay", delay))
		}),
	)
	err = connectRetrier.Do(ctx, func(ctx context.Context) error {
		q, err := messaging.NewRedisQueue(ctx, redisConfig(cfg))
		if err != nil {
			return err
		}
		queue = q
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer func() {
		log.Info("closing Redis connection...")
		_ = queue.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 4. Command journal (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var journal *postgres.JournalRepository
	if cfg.Database.JournalEnabled {
		log.Info("connecting to database...")
		var conn *postgres.Connection
		err := connectRetrier.Do(ctx, func(ctx context.Context) error {
			c, err := postgres.NewConnection(ctx, postgresConfig(cfg))
			if err != nil {
				return err
			}
			conn = c
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection...")
			conn.Close()
		}()

		applied, err := postgres.NewMigrator(conn).Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		if applied > 0 {
			log.Info("journal migrations applied", logger.Int("count", applied))
		}

		breaker := circuitbreaker.JournalBreaker(func(name string, from, to circuitbreaker.State) {
			log.Warn("circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
			recorder.SetBreakerState(name, int(to))
		})
		journal = postgres.NewJournalRepository(conn,
			postgres.WithBreaker(breaker),
			postgres.WithWriteTimeout(cfg.Database.QueryTimeout),
			postgres.WithJournalLogger(log),
		)
		log.Info("command journal enabled")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. Sports
	// ─────────────────────────────────────────────────────────────────────────
	opts := []interpreter.Option{interpreter.WithLogger(log)}
	if recorder != nil {
		opts = append(opts, interpreter.WithObserver(recorder))
	}
	if journal != nil {
		opts = append(opts, interpreter.WithObserver(journal))
	}

	defs := make([]sport.Definition, 0, len(cfg.Sports.Enabled))
	for _, id := range cfg.Sports.Enabled {
		defs = append(defs, sport.Definition{
			ID:    id,
			Queue: sport.QueueName(cfg.Sports.QueuePrefix, id),
			Seed:  cfg.Sports.SeedPlayers,
		})
	}
	sports, err := sport.Build(defs, interpreter.NewSyncWriter(os.Stdout), opts...)
	if err != nil {
		return fmt.Errorf("failed to build sports: %w", err)
	}

	bindings := make([]messaging.Binding, 0, sports.Len())
	for _, sp := range sports.All() {
		bindings = append(bindings, messaging.Binding{Queue: sp.Queue, Processor: sp.Interpreter})
		log.Info("sport ready",
			logger.Sport(sp.ID),
			logger.Queue(sp.Queue),
			logger.Int("positions", sp.Taxonomy.Len()),
		)
	}

	listener := messaging.NewListener(queue, bindings,
		messaging.WithPollTimeout(cfg.Redis.PollTimeout),
		messaging.WithTransportErrorHook(recorder.RecordTransportError),
		messaging.WithListenerLogger(log),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. Housekeeping jobs
	// ─────────────────────────────────────────────────────────────────────────
	sched, err := setupScheduler(cfg, log, queue, recorder, journal, sports)
	if err != nil {
		return fmt.Errorf("failed to set up scheduler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. Run until shutdown
	// ─────────────────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return listener.Run(gctx)
	})
	if sched.Len() > 0 {
		g.Go(func() error {
			return sched.Run(gctx)
		})
	}

	if cfg.HTTP.Enabled {
		health := handlers.NewChecker(cfg.App.Version, 2*time.Second)
		health.Add("redis", handlers.PingCheck(queue))

		deps := http.Dependencies{
			Sports: sports,
			Health: health,
			Logger: log,
		}
		if recorder != nil {
			deps.Metrics = recorder.Handler()
		}
		if journal != nil {
			deps.Journal = journal
		}

		server := http.NewServer(http.Config{
			Addr:            cfg.HTTP.Address(),
			ReadTimeout:     cfg.HTTP.ReadTimeout,
			WriteTimeout:    cfg.HTTP.WriteTimeout,
			ShutdownTimeout: cfg.App.ShutdownTimeout,
			Version:         cfg.App.Version,
		}, deps)
		g.Go(func() error {
			return server.Run(gctx)
		})
	}

	log.Info("depth chart worker is running")
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger writes JSON logs to stderr.
func setupLogger(cfg *config.Config) *logger.Logger {
	level := logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		level = logger.LevelDebug
	}
	return logger.New(logger.Options{
		Output:    os.Stderr,
		Level:     level,
		AddCaller: cfg.App.Debug,
	}).With(logger.String("service", cfg.App.Name))
}

// setupScheduler registers the queue depth sampler when metrics are on and
// the journal pruner when a retention window is configured.
func setupScheduler(
	cfg *config.Config,
	log *logger.Logger,
	queue *messaging.RedisQueue,
	recorder *metrics.Recorder,
	journal *postgres.JournalRepository,
	sports *sport.Registry,
) (*scheduler.Scheduler, error) {
	sched := scheduler.New(scheduler.Config{
		Logger: log,
		OnJobComplete: func(r scheduler.JobResult) {
			recorder.RecordJobRun(r.JobName, r.Success())
		},
	})

	if recorder != nil && cfg.Observability.QueueDepthInterval > 0 {
		targets := make([]jobs.QueueTarget, 0, sports.Len())
		for _, sp := range sports.All() {
			targets = append(targets, jobs.QueueTarget{Sport: sp.ID, Queue: sp.Queue})
		}
		job := jobs.NewQueueDepthJob(queue, recorder, targets, log)
		if err := sched.Register(job, cfg.Observability.QueueDepthInterval); err != nil {
			return nil, err
		}
	}

	if journal != nil && cfg.Database.JournalRetention > 0 {
		job, err := jobs.NewPruneJournalJob(journal, cfg.Database.JournalRetention, log)
		if err != nil {
			return nil, err
		}
		if err := sched.Register(job, cfg.Database.JournalPruneInterval); err != nil {
			return nil, err
		}
	}

	return sched, nil
}

func redisConfig(cfg *config.Config) messaging.Config {
	c := messaging.DefaultConfig()
	c.Host = cfg.Redis.Host
	c.Port = cfg.Redis.Port
	c.Password = cfg.Redis.Password
	c.DB = cfg.Redis.DB
	c.PoolSize = cfg.Redis.PoolSize
	c.MinIdleConns = cfg.Redis.MinIdleConns
	c.DialTimeout = cfg.Redis.DialTimeout
	c.ReadTimeout = cfg.Redis.ReadTimeout
	c.WriteTimeout = cfg.Redis.WriteTimeout

	// Every listener parks one connection in BLPOP.
	if need := len(cfg.Sports.Enabled) + 2; c.PoolSize < need {
		c.PoolSize = need
	}
	return c
}

func postgresConfig(cfg *config.Config) postgres.Config {
	c := postgres.DefaultConfig(cfg.Database.URL)
	c.MaxConns = cfg.Database.MaxConns
	c.ApplicationName = cfg.App.Name
	return c
}
