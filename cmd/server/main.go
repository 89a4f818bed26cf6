// @title                       Tasks API
// @version                     1.0
// @description                 Per-user task lists behind stateless bearer tokens.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/rsandoval/tasks-api/internal/api"
	"github.com/rsandoval/tasks-api/internal/api/handler"
	"github.com/rsandoval/tasks-api/internal/core/ports"
	"github.com/rsandoval/tasks-api/internal/core/service"
	"github.com/rsandoval/tasks-api/internal/infrastructure/db/memory"
	mongostore "github.com/rsandoval/tasks-api/internal/infrastructure/db/mongo"
	redisstore "github.com/rsandoval/tasks-api/internal/infrastructure/db/redis"
	"github.com/rsandoval/tasks-api/internal/pkg/config"
	"github.com/rsandoval/tasks-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// stores is what the selected STORE_DRIVER provides.
type stores struct {
	users       ports.UserRepository
	cachedUsers ports.UserRepository
	tasks       ports.TaskRepository
	checks      map[string]handler.Check
	close       func(context.Context)
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is not configured yet; fall back to a plain JSON writer.
		fallback := zerolog.New(os.Stderr).With().Timestamp().Logger()
		fallback.Error().Err(err).Msg("failed to load configuration")
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "tasks-api",
	})

	tokens, err := service.NewTokenService(cfg.JWTSecret, service.DefaultTokenTTL)
	if err != nil {
		log.Error().Err(err).Msg("invalid token configuration")
		return err
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open stores")
		return err
	}

	guard := service.NewOwnershipGuard(st.cachedUsers, st.tasks, logger.Component("guard"))
	e := api.NewRouter(api.Dependencies{
		Auth:   service.NewAuthService(st.users, service.NewBcryptHasher(cfg.BcryptCost), tokens, logger.Component("auth")),
		Tasks:  service.NewTaskService(st.tasks, guard, logger.Component("tasks")),
		Tokens: tokens,
		Users:  st.cachedUsers,
		Checks: st.checks,
		Logger: logger.Component("http"),
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("driver", cfg.StoreDriver).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			st.close(context.Background())
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	st.close(shutdownCtx)

	log.Info().Msg("server stopped")
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		users := memory.NewUserRepository()
		return &stores{
			users:       users,
			cachedUsers: users,
			tasks:       memory.NewTaskRepository(),
			close:       func(context.Context) {},
		}, nil
	}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}

	users := mongostore.NewUserRepository(db)
	tasks := mongostore.NewTaskRepository(db)
	if err := mongostore.EnsureIndexes(ctx, users, tasks); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &stores{
		users:       users,
		cachedUsers: redisstore.NewUserCache(rdb, users, cfg.Redis.UserTTL, logger.Component("user_cache")),
		tasks:       tasks,
		checks: map[string]handler.Check{
			"mongodb": handler.MongoCheck(db),
			"redis":   handler.RedisCheck(rdb),
		},
		close: func(ctx context.Context) {
			if err := rdb.Close(); err != nil {
				log.Warn().Err(err).Msg("redis close")
			}
			if err := client.Disconnect(ctx); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect")
			}
		},
	}, nil
}
