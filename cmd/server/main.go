package main // Entry point package

import (
	"context"   // root context cancelled on shutdown signals
	"errors"    // detect the normal server-closed error
	"net/http"  // http.ErrServerClosed
	"os"        // exit codes
	"os/signal" // SIGINT/SIGTERM handling
	"syscall"   // SIGTERM
	"time"      // shutdown grace period

	"github.com/labstack/echo/v4" // middleware type
	"go.uber.org/zap"             // structured logging

	"github.com/iliyamo/finance-account-api/internal/config"     // environment config
	"github.com/iliyamo/finance-account-api/internal/database"   // MySQL pool and migrations
	"github.com/iliyamo/finance-account-api/internal/handler"    // HTTP handlers
	"github.com/iliyamo/finance-account-api/internal/logger"     // zap setup
	"github.com/iliyamo/finance-account-api/internal/metrics"    // Prometheus collectors
	"github.com/iliyamo/finance-account-api/internal/middleware" // auth gate and rate limiter
	"github.com/iliyamo/finance-account-api/internal/queue"      // audit event publisher
	"github.com/iliyamo/finance-account-api/internal/repository" // SQL repositories
	"github.com/iliyamo/finance-account-api/internal/router"     // route registration
	"github.com/iliyamo/finance-account-api/internal/service"    // session and user services
	"github.com/iliyamo/finance-account-api/internal/utils"      // token codec
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		// no logger yet; the bootstrap logger prints to stdout
		logger.New("info", false).Error("invalid configuration", zap.Error(err))
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.IsCloud())
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// Teardown: stop background work and wait for it, then close the store,
	// then the publisher and Redis.
	td := &teardown{cancel: stop}
	defer td.run()

	// ---- storage ----
	store, err := database.Open(ctx, cfg.DB)
	if err != nil {
		log.Error("database unavailable", zap.Error(err))
		return err
	}
	td.onClose(func() {
		if err := store.Close(); err != nil {
			log.Warn("database close", zap.Error(err))
		}
	})
	if cfg.DB.Migrate {
		if err := database.Migrate(ctx, store.DB, logger.WithComponent(log, "migrate")); err != nil {
			log.Error("migrations failed", zap.Error(err))
			return err
		}
	}

	codec, err := utils.NewTokenCodec(cfg.Tokens.AccessSecret, cfg.Tokens.RefreshSecret)
	if err != nil {
		log.Error("token codec", zap.Error(err))
		return err
	}

	users := repository.NewUserRepo(store.DB)
	tokens := repository.NewTokenRepo(store.DB)
	accounts := repository.NewAccountRepo(store.DB)
	cards := repository.NewCardRepo(store.DB)

	// ---- audit events ----
	var events queue.Publisher = queue.NopPublisher{}
	if cfg.AMQPURL != "" {
		events = queue.NewAMQPPublisher(cfg.AMQPURL, logger.WithComponent(log, "audit"))
	}
	td.onClose(func() { _ = events.Close() })

	m := metrics.New()
	deps := service.Deps{Events: events, Metrics: m, Log: logger.WithComponent(log, "service")}
	sessions := service.NewSessionManager(users, tokens, codec, cfg.Tokens, deps)
	userSvc := service.NewUserService(users, cfg.BcryptCost, deps)

	janitor := service.NewLedgerJanitor(tokens, cfg.LedgerPurgeInterval, service.Deps{Metrics: m, Log: logger.WithComponent(log, "janitor")})
	td.goTracked(func() { janitor.Run(ctx) })

	// ---- rate limiting on /auth (optional) ----
	var authLimiter echo.MiddlewareFunc // nil leaves /auth unthrottled
	rlCfg := config.LoadRateLimitConfig()
	if rlCfg.Enabled {
		if rdb := config.NewRedisClient(ctx); rdb != nil {
			td.onClose(func() { _ = rdb.Close() })
			authLimiter = middleware.NewTokenBucket(rlCfg, rdb, m, logger.WithComponent(log, "ratelimit"))
		} else {
			log.Warn("redis unreachable; auth rate limiting disabled")
		}
	}

	e := router.New(router.Deps{
		Log:         logger.WithComponent(log, "http"),
		Metrics:     m,
		FrontendURL: cfg.FrontendURL,
		DB:          store.DB,
		Auth:        handler.NewAuthHandler(sessions, handler.NewCookiePolicy(cfg.IsCloud())),
		Users:       handler.NewUserHandler(userSvc),
		Accounts:    handler.NewAccountHandler(accounts),
		Cards:       handler.NewCardHandler(cards, accounts),
		Gate:        middleware.CookieJWTAuth(sessions),
		AuthLimiter: authLimiter,
	})

	addr := ":" + cfg.Port // Address string with port
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		if err != nil {
			log.Error("server failed", zap.Error(err))
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	log.Info("server stopped")
	return nil
}
