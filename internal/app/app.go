package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okhirenko/gavel-go/internal/auction"
	"github.com/okhirenko/gavel-go/internal/catalog"
	"github.com/okhirenko/gavel-go/internal/config"
	"github.com/okhirenko/gavel-go/internal/postgres"
	redisx "github.com/okhirenko/gavel-go/internal/redis"
	postgresrepo "github.com/okhirenko/gavel-go/internal/repository/postgres"
	redisrepo "github.com/okhirenko/gavel-go/internal/repository/redis"
	httpgin "github.com/okhirenko/gavel-go/internal/transport/http/gin"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	house      *auction.House
	httpServer *http.Server
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

	rdb, err := redisx.New(context.Background(), redisx.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	auctionRepo := postgresrepo.NewAuctionRepo(store)
	cache := redisrepo.New(rdb)
	pubsub := redisx.NewAreaPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, redisx.KeyRateLimit("bids", "ip"), 10, 1*time.Second)

	// Initialize the auction engine
	source := catalog.NewClient(catalog.Config{BaseURL: cfg.Catalog.BaseURL}, logger)
	broadcast := &areaBroadcaster{pubsub: pubsub, cache: cache, logger: logger}

	house := auction.NewHouse(auctionRepo, source, broadcast, logger, auction.Config{
		FloorSeconds: cfg.Auction.FloorSeconds,
		HouseFloors:  cfg.Auction.HouseFloors,
		PoolLowWater: cfg.Auction.PoolLowWater,
	})

	// Initialize Gin router
	router := httpgin.NewRouter(house, cache, limiter, logger)

	return &App{
		cfg:    cfg,
		logger: logger,
		house:  house,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.openHouse(ctx); err != nil {
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

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		a.house.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

// openHouse restores the artwork pool and opens the configured number
// of house floors. A dry pool at boot is not fatal: an operator can
// seed artworks or replenish later through the admin API.
func (a *App) openHouse(ctx context.Context) error {
	loaded, err := a.house.LoadPool(ctx)
	if err != nil {
		return fmt.Errorf("failed to load artwork pool: %w", err)
	}
	a.logger.Info("artwork pool loaded", "count", loaded)

	for i := 0; i < a.cfg.Auction.HouseFloors; i++ {
		floorID, err := a.house.CreateHouseFloor(ctx, 0)
		if err != nil {
			a.logger.Warn("could not open house floor", "error", err)
			break
		}
		if err := a.house.StartFloor(ctx, floorID); err != nil {
			a.logger.Warn("could not start house floor", "floor_id", floorID, "error", err)
		}
	}

	return nil
}
