package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/student-enrollment/enrollment-api/internal/adapters/httpapi"
	memidempotency "github.com/student-enrollment/enrollment-api/internal/adapters/memory/idempotency"
	memstudentrepo "github.com/student-enrollment/enrollment-api/internal/adapters/memory/studentrepo"
	mysqladapter "github.com/student-enrollment/enrollment-api/internal/adapters/mysql"
	mysqlstudentrepo "github.com/student-enrollment/enrollment-api/internal/adapters/mysql/studentrepo"
	postgres "github.com/student-enrollment/enrollment-api/internal/adapters/postgres"
	pgidempotency "github.com/student-enrollment/enrollment-api/internal/adapters/postgres/idempotency"
	pgstudentrepo "github.com/student-enrollment/enrollment-api/internal/adapters/postgres/studentrepo"
	redisadapter "github.com/student-enrollment/enrollment-api/internal/adapters/redis"
	redisidempotency "github.com/student-enrollment/enrollment-api/internal/adapters/redis/idempotency"
	"github.com/student-enrollment/enrollment-api/internal/app/students"
	platformclock "github.com/student-enrollment/enrollment-api/internal/platform/clock"
	"github.com/student-enrollment/enrollment-api/internal/platform/config"
	"github.com/student-enrollment/enrollment-api/internal/platform/logger"
	"github.com/student-enrollment/enrollment-api/internal/platform/metrics"
	idempotencyport "github.com/student-enrollment/enrollment-api/internal/ports/out/idempotency"
	studentrepoport "github.com/student-enrollment/enrollment-api/internal/ports/out/studentrepo"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(2)
	}
	log, err := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid logger config: %v\n", err)
		os.Exit(2)
	}
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("exiting", slog.Any("error", err))
		os.Exit(1)
	}
}

// backends holds the selected adapters and the resources to close on exit.
type backends struct {
	repo  studentrepoport.Repository
	idem  idempotencyport.Store
	purge func(context.Context, time.Time) (int64, error)

	closers []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close()

	m := metrics.New()
	svc := students.NewService(b.repo, platformclock.NewSystemClock())
	svc.Logger = log
	svc.Metrics = m

	if cfg.SeedData {
		n, err := svc.SeedStudents(ctx)
		if err != nil {
			return fmt.Errorf("seed students: %w", err)
		}
		log.Info("seed complete", slog.Int("created", n))
	}

	api := httpapi.NewServer(svc, b.idem)
	api.Logger = log
	api.Metrics = m

	handler := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{
		Logger:       log,
		Metrics:      m,
		ServeMetrics: cfg.MetricsAddr == "",
	})

	servers := []*http.Server{{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}}
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		servers = append(servers, &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			log.Info("listening", slog.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	if b.purge != nil {
		g.Go(func() error {
			purgeLoop(gctx, log, b.purge, cfg.IdempotencyTTL)
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

func openBackends(ctx context.Context, cfg config.Config, log *slog.Logger) (*backends, error) {
	b := &backends{}
	fail := func(err error) (*backends, error) {
		b.close()
		return nil, err
	}

	var pool *pgxpool.Pool
	if cfg.StorageBackend == config.StoragePostgres || cfg.IdempotencyBackend == config.IdempotencyPostgres {
		p, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			return fail(fmt.Errorf("invalid postgres config: %w", err))
		}
		b.closers = append(b.closers, p.Close)
		if err := postgres.Migrate(ctx, p); err != nil {
			return fail(fmt.Errorf("postgres migrate: %w", err))
		}
		pool = p
	}

	switch cfg.StorageBackend {
	case config.StoragePostgres:
		b.repo = pgstudentrepo.NewRepo(pool)
	case config.StorageMySQL:
		db, err := mysqladapter.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			return fail(fmt.Errorf("invalid mysql config: %w", err))
		}
		b.closers = append(b.closers, closeDB(db))
		if err := mysqladapter.Migrate(ctx, db); err != nil {
			return fail(fmt.Errorf("mysql migrate: %w", err))
		}
		b.repo = mysqlstudentrepo.NewRepo(db)
	default:
		b.repo = memstudentrepo.NewRepo()
	}

	switch cfg.IdempotencyBackend {
	case config.IdempotencyPostgres:
		store := pgidempotency.NewStore(pool)
		b.idem = store
		b.purge = store.PurgeOlderThan
	case config.IdempotencyRedis:
		client, err := redisadapter.NewClient(ctx, redisadapter.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return fail(fmt.Errorf("invalid redis config: %w", err))
		}
		b.closers = append(b.closers, func() { _ = client.Close() })
		b.idem = redisidempotency.NewStore(client, cfg.IdempotencyTTL)
	default:
		store := memidempotency.NewStore()
		b.idem = store
		b.purge = store.PurgeOlderThan
	}

	log.Info("backends ready",
		slog.String("storage", cfg.StorageBackend),
		slog.String("idempotency", cfg.IdempotencyBackend),
	)
	return b, nil
}

// purgeLoop drops expired idempotency records for stores without native expiry.
func purgeLoop(ctx context.Context, log *slog.Logger, purge func(context.Context, time.Time) (int64, error), ttl time.Duration) {
	interval := ttl / 24
	if interval < time.Minute {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := purge(ctx, now.Add(-ttl))
			if err != nil {
				log.Warn("idempotency purge failed", slog.Any("error", err))
				continue
			}
			if n > 0 {
				log.Debug("idempotency purge", slog.Int64("removed", n))
			}
		}
	}
}

func closeDB(db *sql.DB) func() {
	return func() { _ = db.Close() }
}
