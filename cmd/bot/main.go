package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/AesthetixDev/koko/internal/audit"
	"github.com/AesthetixDev/koko/internal/dispatch"
	"github.com/AesthetixDev/koko/internal/domain"
	"github.com/AesthetixDev/koko/internal/features"
	"github.com/AesthetixDev/koko/internal/gateway"
	"github.com/AesthetixDev/koko/internal/ledger"
	"github.com/AesthetixDev/koko/internal/modules/admin"
	"github.com/AesthetixDev/koko/internal/modules/economy"
	"github.com/AesthetixDev/koko/internal/modules/fun"
	"github.com/AesthetixDev/koko/internal/modules/general"
	"github.com/AesthetixDev/koko/internal/modules/moderation"
	"github.com/AesthetixDev/koko/internal/modules/stats"
	"github.com/AesthetixDev/koko/internal/ops"
	"github.com/AesthetixDev/koko/internal/platform/config"
	"github.com/AesthetixDev/koko/internal/platform/logging"
	"github.com/AesthetixDev/koko/internal/settings"
	"github.com/AesthetixDev/koko/internal/sqlite"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *sqlite.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}

	if err := db.RunMigrations(ctx); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return db
}

func runGracefulShutdown(srv *ops.Server, stopEviction func()) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Ops server shutdown error", "error", err)
		}

		stopEviction()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "ops_port", cfg.OpsPort)

	db := setupDB(cfg)
	defer func() { _ = db.Close() }()

	ledgerRepo := sqlite.NewLedgerRepo(db)
	settingsRepo := sqlite.NewSettingsRepo(db)
	infractionRepo := sqlite.NewInfractionRepo(db)

	ledgerSvc := ledger.NewService(ledgerRepo, clock, cfg.DailyAmount, cfg.DailyPeriod)
	settingsSvc := settings.NewService(settingsRepo, cfg.SettingsCacheTTL, clock)
	stopEviction := settingsSvc.StartEvictionTimer(1 * time.Minute)

	// The transport gateway is pluggable; the no-op variant keeps the core
	// runnable without a connected chat platform.
	gw := gateway.Noop{}

	auditLog := audit.NewLogger(settingsSvc, gw)

	registry := dispatch.NewRegistry()

	modules := []interface {
		Register(*dispatch.Registry)
	}{
		general.New(gw),
		economy.New(ledgerSvc, auditLog, cfg.DailyAmount),
		stats.New(ledgerSvc, infractionRepo, gw, clock, cfg.BotUserID),
		fun.New(),
		moderation.New(gw, infractionRepo, auditLog, clock),
	}
	for _, m := range modules {
		m.Register(registry)
	}

	featureMgr := features.NewManager(cfg.FeatureFlagsPath, registry, gw)
	admin.New(settingsSvc, featureMgr, auditLog).Register(registry)

	if err := featureMgr.ApplyStartup(); err != nil {
		if !errors.Is(err, domain.ErrFlagFileInvalid) {
			slog.Error("Failed to apply feature flags", "error", err)
			os.Exit(1)
		}
		// Malformed artifact: already logged, every module stays enabled.
	}

	router := dispatch.NewRouter(registry, settingsSvc, cfg.DefaultPrefix)

	// Local operator console until a chat transport is plugged in.
	if cfg.AppEnv == "development" {
		go runConsole(context.Background(), router, os.Stdin, os.Stdout)
	}

	srv := ops.NewServer(cfg.OpsPort, db)
	done := runGracefulShutdown(srv, stopEviction)

	slog.Info("Ops server starting", "port", cfg.OpsPort)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Ops server error", "error", err)
		os.Exit(1)
	}

	<-done
}
