package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jobmatrimony/access"
	"jobmatrimony/catalog"
	"jobmatrimony/config"
	"jobmatrimony/db"
	"jobmatrimony/events"
	"jobmatrimony/httpapi"
	"jobmatrimony/matrimony"
	"jobmatrimony/memstore"
	"jobmatrimony/messaging"
	"jobmatrimony/platform"
	"jobmatrimony/profile"
	"jobmatrimony/recommend"
)

func newServeCmd(load loader) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving (postgres store only)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger, migrate bool) error {
	deps, cleanup, err := buildDeps(ctx, cfg, logger, migrate)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := platform.New(deps)
	handler := httpapi.NewRouter(httpapi.Options{
		RateLimitPerMin: cfg.HTTP.RateLimitPerMin,
		CORSOrigins:     cfg.HTTP.CORSOrigins,
	}, svc, access.NewTokens(cfg.Auth.JWTSecret), logger)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildDeps wires the repositories, recommendation cache and event publisher
// selected by cfg. cleanup releases every opened resource.
func buildDeps(ctx context.Context, cfg *config.Config, logger *zap.Logger, migrate bool) (platform.Deps, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (platform.Deps, func(), error) {
		cleanup()
		return platform.Deps{}, func() {}, err
	}

	deps := platform.Deps{
		BootstrapAdmins: cfg.Auth.BootstrapAdmins,
		Logger:          logger,
	}

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, pool.Close)
		if migrate {
			applied, err := db.Migrate(ctx, pool, logger)
			if err != nil {
				return fail(err)
			}
			logger.Info("migrations applied", zap.Int("count", applied))
		}
		deps.Repos = platform.Repositories{
			Roles:     access.NewRepository(pool),
			Profiles:  profile.NewRepository(pool),
			Catalog:   catalog.NewRepository(pool),
			Matrimony: matrimony.NewRepository(pool),
			Messages:  messaging.NewRepository(pool),
			Purger:    platform.NewPGPurger(pool),
		}
	default:
		store := memstore.New()
		deps.Repos = platform.Repositories{
			Roles:     store.Roles,
			Profiles:  store.Profiles,
			Catalog:   store.Catalog,
			Matrimony: store.Matrimony,
			Messages:  store.Messages,
		}
	}

	engine := recommend.NewEngine(logger).WithLimit(cfg.Recommend.Limit)
	if cfg.RedisEnabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, recommendations are computed uncached", zap.Error(err))
		} else {
			engine.WithCache(recommend.NewRedisCache(client, cfg.Redis.TTL))
		}
	}
	deps.Engine = engine

	if cfg.KafkaEnabled() {
		pub, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, pub.Close)
		deps.Publisher = pub
	}

	return deps, cleanup, nil
}
