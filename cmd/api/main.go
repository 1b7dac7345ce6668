package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/abduss/filecrypt/internal/catalog"
	"github.com/abduss/filecrypt/internal/config"
	"github.com/abduss/filecrypt/internal/cryptox"
	"github.com/abduss/filecrypt/internal/extcodec"
	"github.com/abduss/filecrypt/internal/file"
	"github.com/abduss/filecrypt/internal/logger"
	"github.com/abduss/filecrypt/internal/metrics"
	"github.com/abduss/filecrypt/internal/server"
	"github.com/abduss/filecrypt/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	zl, err := logger.Init()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		zl.Fatal("load config", zap.Error(err))
	}

	metrics.InitMetrics()
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	keys, err := keyProvider(cfg.Crypto)
	if err != nil {
		zl.Fatal("load encryption key", zap.Error(err))
	}
	// Derive passphrase keys now so a bad key source fails at startup.
	if _, err := keys.Key(); err != nil {
		zl.Fatal("load encryption key", zap.Error(err))
	}

	backends, err := storage.Open(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("open storage", zap.Error(err))
	}
	defer backends.Close()

	codec := extcodec.Default()
	store := file.NewStore(
		backends.Metadata,
		backends.Blobs,
		cryptox.NewEngine(keys),
		codec,
		file.WithLogger(zl.Named("store")),
	)
	catalogService := catalog.NewService(store, codec, cfg.Upload, zl.Named("catalog"))

	router := server.NewRouter(server.Dependencies{
		Config:  cfg,
		Catalog: catalogService,
		Logger:  zl.Named("http"),
		Checks: []server.Check{
			{Name: cfg.Storage.MetadataBackend, Target: backends.Metadata},
			{Name: cfg.Storage.BlobBackend, Target: backends.Blobs},
		},
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zl.Info("FileCrypt API listening", zap.String("addr", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	zl.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}

func keyProvider(cfg config.CryptoConfig) (cryptox.KeyProvider, error) {
	if cfg.Key != "" {
		return cryptox.ParseStaticKey(cfg.Key)
	}
	var salt []byte
	if cfg.Salt != "" {
		salt = []byte(cfg.Salt)
	}
	return cryptox.NewPassphraseKey(cfg.Passphrase, salt, cfg.Iterations), nil
}
