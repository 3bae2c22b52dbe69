package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"ingresso-go/internal/config"
	"ingresso-go/internal/domain"
	"ingresso-go/internal/postgres"
	"ingresso-go/internal/redis"
	"ingresso-go/internal/repository"
	postgresrepo "ingresso-go/internal/repository/postgres"
	redisrepo "ingresso-go/internal/repository/redis"
	"ingresso-go/internal/service"
	"ingresso-go/internal/state"
	httpgin "ingresso-go/internal/transport/http/gin"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	store      *postgresrepo.Store
	feed       *redisrepo.ChangeFeed
	mirror     *state.Mirror
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize dependencies
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Name,
		cfg.Postgres.SSLMode,
	)

	pgxPool, err := postgres.New(context.Background(), postgres.Config{DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redis.New(context.Background(), redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	feed := redisrepo.NewChangeFeed(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, "sales", cfg.App.SaleRateLimit, 1*time.Minute)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)

	mirror := state.NewMirror()

	// Initialize services
	services := service.NewServices(store, cache, feed, mirror, service.Config{
		CheckinMode: cfg.App.CheckinMode,
		QRSecret:    cfg.App.QRSecret,
	})

	// Initialize Gin router
	router := httpgin.NewRouter(
		services,
		idempotencyStore,
		limiter,
		httpgin.RouterConfig{QRSecret: cfg.App.QRSecret},
		logger,
	)

	return &App{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
		store:  store,
		feed:   feed,
		mirror: mirror,
	}, nil
}

// seedMirror loads the current events and tickets into the in-memory
// mirror. A missing schema is tolerated so the server can come up and
// report the remediation over HTTP instead of crash-looping.
func (a *App) seedMirror(ctx context.Context) error {
	events, err := a.store.Events().List(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrSchemaMissing) {
			a.logger.Warn("database schema missing, starting with an empty mirror")
			return nil
		}
		return fmt.Errorf("failed to seed mirror: %w", err)
	}

	var tickets []domain.Ticket
	for _, e := range events {
		ts, err := a.store.Tickets().ListByEvent(ctx, e.ID)
		if err != nil {
			return fmt.Errorf("failed to seed mirror: %w", err)
		}
		tickets = append(tickets, ts...)
	}

	a.mirror.Seed(events, tickets)
	a.logger.Info("mirror seeded", "events", len(events), "tickets", len(tickets))
	return nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.seedMirror(ctx); err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Keep the mirror in sync with the change feed
	g.Go(func() error {
		return a.feed.Subscribe(gCtx, func(_ context.Context, ch domain.Change) {
			if err := a.mirror.Apply(ch); err != nil {
				a.logger.Error("failed to apply change", "table", ch.Table, "action", ch.Action, "error", err)
			}
		})
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
