package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"taskhive.org/internal/access"
	"taskhive.org/internal/audit"
	"taskhive.org/internal/auth"
	"taskhive.org/internal/config"
	"taskhive.org/internal/httpapi"
	"taskhive.org/internal/obs"
	"taskhive.org/internal/store/pg"
	"taskhive.org/internal/task"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := obs.InitLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()
	obs.Init()
	obs.InitBuildInfo(version, commit)

	if cfg.DatabaseURL == "" {
		logger.Fatal("TASKHIVE_DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		logger.Fatal("TASKHIVE_JWT_SECRET is required")
	}

	store, err := pg.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open db", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	resolver, err := access.NewResolver(store.Organizations(), store.Roles(), store.Assignments())
	if err != nil {
		logger.Fatal("build resolver", zap.Error(err))
	}
	gate, err := access.NewGate(resolver, nil)
	if err != nil {
		logger.Fatal("build gate", zap.Error(err))
	}
	admin, err := access.NewAdmin(store.Organizations(), store.Roles(), store.Assignments(), store.Permissions())
	if err != nil {
		logger.Fatal("build admin", zap.Error(err))
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	if err := admin.EnsureCatalog(startupCtx); err != nil {
		cancelStartup()
		logger.Fatal("ensure permission catalog", zap.Error(err))
	}
	cancelStartup()

	stream := audit.NewStream()
	recorder, err := audit.NewRecorder(store.Audit(), audit.WithStream(stream))
	if err != nil {
		logger.Fatal("build audit recorder", zap.Error(err))
	}

	identity, err := auth.NewService(store.Users(), store.Organizations(), store.Roles(), admin)
	if err != nil {
		logger.Fatal("build identity service", zap.Error(err))
	}
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		logger.Fatal("build token manager", zap.Error(err))
	}

	tasks, err := task.NewService(store.Tasks())
	if err != nil {
		logger.Fatal("build task service", zap.Error(err))
	}

	api := httpapi.New(httpapi.Options{
		Version:        version,
		ReadyProbe:     httpapi.ReadyProbe{DB: store.DB()},
		Gate:           gate,
		Admin:          admin,
		Tasks:          tasks,
		Audit:          recorder,
		AuditStream:    stream,
		Identity:       identity,
		Tokens:         tokens,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting taskhive-api",
		zap.String("version", version),
		zap.String("addr", srv.Addr))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	logger.Info("stopped")
}
