// @title           Coworking API
// @version         1.0
// @description     Workspace, place and booking management for coworking spaces.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/spacehub/coworking-api/docs"
	"github.com/spacehub/coworking-api/internal/api"
	"github.com/spacehub/coworking-api/internal/api/handler"
	"github.com/spacehub/coworking-api/internal/core/credential"
	"github.com/spacehub/coworking-api/internal/core/ports"
	"github.com/spacehub/coworking-api/internal/core/service"
	mongodb "github.com/spacehub/coworking-api/internal/infrastructure/db/mongo"
	"github.com/spacehub/coworking-api/internal/infrastructure/db/postgres"
	redisdb "github.com/spacehub/coworking-api/internal/infrastructure/db/redis"
	"github.com/spacehub/coworking-api/internal/infrastructure/events"
	"github.com/spacehub/coworking-api/internal/infrastructure/notify"
	"github.com/spacehub/coworking-api/internal/infrastructure/queue"
	"github.com/spacehub/coworking-api/internal/pkg/config"
	"github.com/spacehub/coworking-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		File:    cfg.LogFile,
		Service: "coworking-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	pool, err := postgres.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()
	store := postgres.NewStore(pool, log)

	mongoClient, mongoDB, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	audit := mongodb.NewAuditRepository(mongoDB)
	if err := audit.EnsureIndexes(ctx); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	checks := map[string]handler.CheckFunc{
		"postgres": store.Ping,
		"mongo":    mongodb.Ping(mongoClient),
		"redis":    redisdb.Ping(rdb),
	}

	// --- Event sinks ---
	sinks := []ports.EventHandler{audit}

	if cfg.NATS.URL != "" {
		nc, err := events.Connect(cfg.NATS.URL)
		if err != nil {
			return err
		}
		defer nc.Drain()
		sinks = append(sinks, events.NewPublisher(nc, cfg.NATS.SubjectPrefix))
		checks["nats"] = events.Ping(nc)
	}

	if cfg.Telegram.BotToken != "" && cfg.Telegram.Notify {
		bot, err := notify.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			return err
		}
		sinks = append(sinks, notify.NewTelegramNotifier(bot, store.Users(), log))
	}

	dispatcher := queue.NewDispatcher(cfg.Events.Workers, sinks, log)
	// Workers outlive the signal context so Close can drain them.
	dispatcher.Start(context.WithoutCancel(ctx))

	// --- Credentials ---
	tokens, err := credential.NewTokenIssuer(cfg.Auth.JWTSecret, credential.TokenOptions{
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	})
	if err != nil {
		return err
	}
	var telegram *credential.TelegramVerifier
	if cfg.Telegram.BotToken != "" {
		telegram, err = credential.NewTelegramVerifier(cfg.Telegram.BotToken, cfg.Telegram.MaxAge)
		if err != nil {
			return err
		}
	}

	// --- Services ---
	authService := service.NewAuthService(store, credential.NewHasher(cfg.Auth.BcryptCost), tokens, telegram, log)
	workspaceService := service.NewWorkspaceService(store, cfg.WorkspaceRemoveTimeout, log)
	bookingService := service.NewBookingService(store, dispatcher, redisdb.NewIdempotencyStore(rdb), audit, log)

	e := api.NewRouter(api.Dependencies{
		Auth:       authService,
		Workspaces: workspaceService,
		Zones:      service.NewZoneService(store),
		Places:     service.NewPlaceService(store),
		Bookings:   bookingService,
		Tokens:     tokens,
		Checks:     checks,
		Cookie: handler.CookieOptions{
			MaxAge: tokens.RefreshTTL(),
			Secure: cfg.Auth.SecureCookie,
		},
		Log: log,
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("event queue not drained")
	}
	return nil
}
