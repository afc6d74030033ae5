// Command foodgram-server starts the recipe REST API and its gRPC health endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/and161185/foodgram/internal/composition"
	"github.com/and161185/foodgram/internal/config"
	"github.com/and161185/foodgram/internal/identity"
	"github.com/and161185/foodgram/internal/limiter"
	"github.com/and161185/foodgram/internal/migrate"
	"github.com/and161185/foodgram/internal/repository/postgres"
	grpcserver "github.com/and161185/foodgram/internal/server/grpc"
	httpserver "github.com/and161185/foodgram/internal/server/http"
	"github.com/and161185/foodgram/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations and serves until SIGINT/SIGTERM.
func main() {
	cfgPath := flag.String("config", "", "path to YAML config (overrides $FOODGRAM_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		// logger is not configured yet
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(2)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Server.Addr),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.Database.DSN); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	db, err := postgres.New(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("postgres.New", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepo(db)
	recipeRepo := postgres.NewRecipeRepo(db)
	refRepo := postgres.NewReferenceRepo(db)
	relRepo := postgres.NewRelationRepo(db)

	lim := limiter.NewPG(db.Pool, cfg.Auth.LoginWindow, cfg.Auth.LoginMaxFails, cfg.Auth.LoginBlockFor)
	tokens := identity.NewTokens([]byte(cfg.Auth.JWTKey), cfg.Auth.AccessTTL)

	// Composition
	validator := composition.NewValidator(refRepo, composition.LimitsFrom(cfg.Recipes))
	builder := composition.NewBuilder(validator, recipeRepo)

	// Services
	api := httpserver.New(httpserver.Deps{
		Auth:      service.NewAuthService(userRepo, tokens, lim),
		Users:     service.NewUserService(userRepo),
		Recipes:   service.NewRecipeService(recipeRepo, builder),
		Relations: service.NewRelationService(userRepo, recipeRepo, relRepo),
		Shopping:  service.NewShoppingService(recipeRepo),
		Refs:      service.NewReferenceService(refRepo, logger),
		Tokens:    tokens,
		DB:        db,
		Log:       logger,
		Config:    *cfg,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("http listening", zap.String("addr", cfg.Server.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var grpcSrv *grpcserver.Server
	if cfg.GRPC.Addr != "" {
		grpcSrv, err = grpcserver.New(logger, db, grpcserver.Options{
			Reflection: cfg.GRPC.Reflection,
			TLSCert:    cfg.GRPC.TLSCert,
			TLSKey:     cfg.GRPC.TLSKey,
			Verifier:   tokens,
		})
		if err != nil {
			logger.Fatal("grpc server", zap.Error(err))
		}
		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			logger.Fatal("listen", zap.Error(err))
		}
		go grpcSrv.Watch(ctx, 10*time.Second)
		go func() {
			logger.Info("grpc listening", zap.String("addr", cfg.GRPC.Addr))
			errCh <- grpcSrv.Serve(lis)
		}()
	}

	// Wait for stop
	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if grpcSrv != nil {
		grpcSrv.Stop(cfg.Server.ShutdownTimeout)
	}

	logger.Info("shutdown complete")
}

// newLogger builds a production (JSON) or development (console) zap logger at the configured level.
func newLogger(c config.LogConfig) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if c.Level != "" {
		if err := lvl.Set(c.Level); err != nil {
			return nil, err
		}
	}
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
