package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/imoview/realty-crm/internal/api"
	"github.com/imoview/realty-crm/internal/core/domain"
	"github.com/imoview/realty-crm/internal/core/ports"
	"github.com/imoview/realty-crm/internal/core/store"
	"github.com/imoview/realty-crm/internal/infrastructure/ai"
	"github.com/imoview/realty-crm/internal/infrastructure/config"
	mongodb "github.com/imoview/realty-crm/internal/infrastructure/db/mongo"
	redisdb "github.com/imoview/realty-crm/internal/infrastructure/db/redis"
	"github.com/imoview/realty-crm/internal/infrastructure/mailer"
	"github.com/imoview/realty-crm/internal/infrastructure/outbox"
	"github.com/imoview/realty-crm/internal/infrastructure/snapshot"
	"github.com/imoview/realty-crm/internal/infrastructure/webhook"
	"github.com/imoview/realty-crm/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "realty-crm",
		Pretty:  cfg.Env == "development",
	})
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("starting realty-crm")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The snapshot is read twice: once here to recover persisted remote
	// credentials before any connection, and again inside the store to
	// restore the session projection.
	snapshots := snapshot.NewFileStore(cfg.SnapshotPath, log)
	persisted := domain.RemoteCredentials{}
	if proj, err := snapshots.Load(); err == nil && proj != nil && proj.Settings != nil {
		persisted = proj.Settings.Remote
	}
	creds := config.ResolveRemote(cfg.Remote, persisted)

	// Remote replica. Unreachable means local-only mode, not a crash.
	var (
		db     *mongo.Database
		remote ports.RemoteTable
	)
	mongoClient, database, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      creds.Endpoint,
		Database: cfg.Remote.Database,
	})
	if err != nil {
		log.Warn().Err(err).Msg("remote replica unreachable, running local-only")
	} else {
		db = database
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoClient.Disconnect(disconnectCtx)
		}()
	}
	remote = mongodb.NewTableRepository(db, log)

	// Realtime replication broker, same degradation rule as the replica.
	var (
		rdb  *redis.Client
		feed *redisdb.Channel
	)
	rdb, err = redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Warn().Err(err).Msg("realtime broker unreachable, change feed disabled")
		rdb = nil
	} else {
		feed = redisdb.NewChannel(rdb, log)
		defer rdb.Close()
	}

	dispatcher := outbox.NewDispatcher(0, remote, realtimePublisher(feed), log)
	dispatcher.Start(ctx)

	// Mail and webhook settings live in the replicated settings singleton,
	// so both collaborators read from the store they are injected into.
	var st *store.Store
	smtpSource := func() domain.SMTPConfig { return st.Settings().SMTP }
	webhookSource := func() string {
		if cfg.WebhookURL != "" {
			return cfg.WebhookURL
		}
		return st.Settings().WebhookURL
	}

	st = store.New(store.Deps{
		Remote:   remote,
		Outbox:   dispatcher,
		Feed:     realtimeFeed(feed),
		Snapshot: snapshots,
		Mailer:   mailer.NewSMTPMailer(smtpSource, log),
		Webhook:  webhook.NewClient(webhookSource, log),
		TextGen:  ai.NewGenerator(cfg.OpenAIKey),
		Verifier: domain.BcryptVerifier{},
	}, log)

	// Prime the collections so login can match against replicated users.
	if err := st.Hydrate(ctx); err != nil {
		log.Warn().Err(err).Msg("initial hydration failed, serving persisted state")
	}

	e := api.NewRouter(st, db, rdb, cfg.JWTSecret, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st.Logout()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("stopped")
}

// realtimeFeed keeps the store's collaborator nil-safe: a typed nil *Channel
// inside a non-nil interface would bypass the store's nil checks.
func realtimeFeed(ch *redisdb.Channel) ports.RealtimeFeed {
	if ch == nil {
		return nil
	}
	return ch
}

func realtimePublisher(ch *redisdb.Channel) ports.RealtimePublisher {
	if ch == nil {
		return nil
	}
	return ch
}
