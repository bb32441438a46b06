package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/astrochat/astrochat-backend/internal/chat"
	"github.com/astrochat/astrochat-backend/internal/config"
	"github.com/astrochat/astrochat-backend/internal/domain"
	"github.com/astrochat/astrochat-backend/internal/federated"
	httptransport "github.com/astrochat/astrochat-backend/internal/http"
	"github.com/astrochat/astrochat-backend/internal/http/handler"
	"github.com/astrochat/astrochat-backend/internal/http/middleware"
	"github.com/astrochat/astrochat-backend/internal/metrics"
	"github.com/astrochat/astrochat-backend/internal/notify"
	"github.com/astrochat/astrochat-backend/internal/repository"
	"github.com/astrochat/astrochat-backend/internal/server"
	"github.com/astrochat/astrochat-backend/internal/service"
	"github.com/astrochat/astrochat-backend/internal/token"
	"github.com/astrochat/astrochat-backend/internal/verification"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newPGXPool,
			newUserStore,
			newChallengeStore,
			newChatStore,
			newIssuer,
			newTokenService,
			newDispatcher,
			newVerifiers,
			newRateLimiter,
			newAuthMiddleware,
			metrics.NewCollector,
			newAuthService,
			newChatService,
			handler.NewAuthHandler,
			handler.NewChatHandler,
			newRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// newPGXPool connects to Postgres and runs pending migrations. The
// memory backend gets a nil pool.
func newPGXPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.StoreBackend != "postgres" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

func newUserStore(cfg config.Config, pool *pgxpool.Pool) repository.UserStore {
	if cfg.StoreBackend == "postgres" {
		return repository.NewPostgresUserStore(pool)
	}
	return repository.NewMemoryUserStore()
}

// newChallengeStore prefers Redis when configured so codes keep their
// expiry across restarts, falling back to the primary backend.
func newChallengeStore(lc fx.Lifecycle, cfg config.Config, pool *pgxpool.Pool) repository.ChallengeStore {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		return repository.NewRedisChallengeStore(client)
	}
	if cfg.StoreBackend == "postgres" {
		return repository.NewPostgresChallengeStore(pool)
	}
	return repository.NewMemoryChallengeStore()
}

func newChatStore(cfg config.Config, pool *pgxpool.Pool) repository.ChatStore {
	if cfg.StoreBackend == "postgres" {
		return repository.NewPostgresChatStore(pool)
	}
	return repository.NewMemoryChatStore()
}

func newIssuer(store repository.ChallengeStore) *verification.Issuer {
	return verification.NewIssuer(store)
}

func newTokenService(cfg config.Config) *token.Service {
	return token.NewService(cfg.JWTSecret, cfg.TokenTTL)
}

func newDispatcher(logger *zap.Logger) notify.Dispatcher {
	return notify.NewLogDispatcher(logger)
}

func newVerifiers(cfg config.Config, logger *zap.Logger) (map[domain.IdentifierKind]federated.Verifier, error) {
	verifiers := make(map[domain.IdentifierKind]federated.Verifier)
	if !cfg.GoogleEnabled() {
		logger.Info("federated sign-in disabled: no google credentials configured")
		return verifiers, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	google, err := federated.NewGoogleVerifier(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	if err != nil {
		return nil, fmt.Errorf("google verifier init: %w", err)
	}
	verifiers[domain.IdentifierGoogle] = google
	return verifiers, nil
}

func newRateLimiter(lc fx.Lifecycle, cfg config.Config) *middleware.RateLimiter {
	rl := middleware.NewRateLimiter(cfg.RateLimitRPM)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			rl.Stop()
			return nil
		},
	})
	return rl
}

func newAuthMiddleware(tokens *token.Service) *middleware.Auth {
	return &middleware.Auth{Tokens: tokens}
}

func newAuthService(
	users repository.UserStore,
	issuer *verification.Issuer,
	tokens *token.Service,
	dispatcher notify.Dispatcher,
	verifiers map[domain.IdentifierKind]federated.Verifier,
	logger *zap.Logger,
) *service.AuthService {
	return service.NewAuthService(users, issuer, tokens, dispatcher, verifiers, logger)
}

func newChatService(entries repository.ChatStore, logger *zap.Logger) *service.ChatService {
	return service.NewChatService(entries, chat.CannedResponder, logger)
}

func newRouter(
	cfg config.Config,
	logger *zap.Logger,
	auth *handler.AuthHandler,
	chatHandler *handler.ChatHandler,
	guard *middleware.Auth,
	limiter *middleware.RateLimiter,
	collector *metrics.Collector,
) *gin.Engine {
	return httptransport.NewRouter(httptransport.RouterParams{
		Config:    cfg,
		Logger:    logger,
		Auth:      auth,
		Chat:      chatHandler,
		Guard:     guard,
		Limiter:   limiter,
		Collector: collector,
	})
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}
