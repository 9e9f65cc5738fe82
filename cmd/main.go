package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shahmeerabdul/GIKomplain/internal/account"
	"github.com/shahmeerabdul/GIKomplain/internal/api/handler"
	"github.com/shahmeerabdul/GIKomplain/internal/api/middleware"
	"github.com/shahmeerabdul/GIKomplain/internal/auth"
	"github.com/shahmeerabdul/GIKomplain/internal/comment"
	"github.com/shahmeerabdul/GIKomplain/internal/complaint"
	"github.com/shahmeerabdul/GIKomplain/internal/config"
	"github.com/shahmeerabdul/GIKomplain/internal/livefeed"
	"github.com/shahmeerabdul/GIKomplain/internal/logger"
	"github.com/shahmeerabdul/GIKomplain/internal/messaging"
	"github.com/shahmeerabdul/GIKomplain/internal/models"
	"github.com/shahmeerabdul/GIKomplain/internal/report"
	"github.com/shahmeerabdul/GIKomplain/internal/storage"
	"github.com/shahmeerabdul/GIKomplain/internal/storage/memory"
	"github.com/shahmeerabdul/GIKomplain/internal/upload"
)

// backend is everything the services persist to, whichever driver backs it.
type backend interface {
	storage.Storage
	storage.TokenDenyList
	storage.Cache
	storage.EventBus
}

func setupRedis(cfg config.Config, log zerolog.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Warn().Msg("REDIS_ADDR not set: token revocation, report cache and cross-instance events are disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect Redis")
	}
	return rdb
}

func setupStorage(cfg config.Config, log zerolog.Logger) backend {
	if cfg.StorageDriver == "memory" {
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		store := memory.New()
		email, password, err := config.AdminCredentials(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("refusing to seed in-memory store")
		}
		if err := account.Seed(context.Background(), store, auth.NewPasswordHasher(), email, password, log); err != nil {
			log.Fatal().Err(err).Msg("failed to seed in-memory store")
		}
		return store
	}

	db, err := storage.OpenPostgres(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect PostgreSQL")
	}
	if err := storage.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	rdb := setupRedis(cfg, log)
	svc := storage.NewStorageService(db, rdb, log)
	log.Info().Bool("redis", rdb != nil).Msg("database connection established, migrations complete")

	if rdb == nil {
		// Keep websockets working on a single instance.
		return &localEvents{Service: svc, bus: memory.NewBus()}
	}
	return svc
}

// localEvents is a Postgres store whose events stay in-process.
type localEvents struct {
	*storage.Service
	bus *memory.Bus
}

func (l *localEvents) PublishEvent(ctx context.Context, ev models.ComplaintEvent) error {
	return l.bus.PublishEvent(ctx, ev)
}

func (l *localEvents) SubscribeComplaint(ctx context.Context, complaintID string) (<-chan models.ComplaintEvent, func(), error) {
	return l.bus.SubscribeComplaint(ctx, complaintID)
}

// setupPublisher fans events out to the store's bus and, when AMQP_URL is
// set, to RabbitMQ.
func setupPublisher(cfg config.Config, store backend, log zerolog.Logger) (*livefeed.Fanout, func()) {
	fanout := livefeed.NewFanout().Add("bus", livefeed.BusPublisher(store))
	if cfg.AMQPURL == "" {
		return fanout, func() {}
	}
	broker, err := messaging.NewRabbitMQBroker(cfg.AMQPURL, cfg.AMQPQueue, log)
	if err != nil {
		log.Error().Err(err).Msg("RabbitMQ unavailable, events will not be forwarded")
		return fanout, func() {}
	}
	log.Info().Str("queue", cfg.AMQPQueue).Msg("forwarding complaint events to RabbitMQ")
	return fanout.Add("rabbitmq", broker), func() {
		if err := broker.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close RabbitMQ connection")
		}
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		// Missing .env is normal in containers.
		os.Stderr.WriteString("Warning: Error loading .env file\n")
	}
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("storage", cfg.StorageDriver).Msg("starting GIKomplain API")

	// 1. Storage and side channels
	store := setupStorage(cfg, log)
	events, closeEvents := setupPublisher(cfg, store, log)
	defer closeEvents()

	uploads := upload.NewStore(cfg.UploadDir, config.UploadURLPrefix, cfg.UploadMaxBytes)
	if err := uploads.Init(); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("failed to prepare upload directory")
	}

	// 2. Services
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	accounts := account.NewService(store, tokens, auth.NewPasswordHasher(), store, cfg.AllowedEmailDomain, log).WithCache(store)
	h := &handler.Handler{
		Accounts:      accounts,
		Complaints:    complaint.NewService(store, store, events, log),
		Comments:      comment.NewService(store, events, log),
		Reports:       report.NewService(store, store, cfg.ReportCacheTTL, log),
		Uploads:       uploads,
		Events:        store,
		Health:        store,
		SecureCookies: cfg.Env != "dev",
		Log:           log,
	}

	// 3. HTTP
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := handler.NewRouter(h, handler.RouterOptions{
		Authenticator: accounts,
		AuthLimiter:   middleware.NewIPRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst),
		CORSOrigin:    cfg.CORSOrigin,
		UploadDir:     cfg.UploadDir,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
