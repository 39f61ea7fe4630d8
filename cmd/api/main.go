package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"buybizz/internal/client"
	"buybizz/internal/config"
	"buybizz/internal/repository"
	"buybizz/internal/server"
	"buybizz/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		slog.Error("failed to parse config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(&cfg.Log))

	db, err := client.InitDatabase(&cfg.Database)
	if err != nil {
		slog.Error("failed to init database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	identityClient := client.NewIdentityClient(&cfg.Identity)
	if cfg.Identity.WebhookSecret == "" {
		slog.Warn("IDENTITY_WEBHOOK_SECRET not set, identity webhooks will be rejected")
	}

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	entitlementRepo := repository.NewEntitlementRepository(db)
	appRepo := repository.NewVendorApplicationRepository(db)
	reportRepo := repository.NewReportRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	identityService := service.NewIdentityService(userRepo)
	vendorService := service.NewVendorService(db, userRepo, appRepo, productRepo, reportRepo)

	if cfg.SeedFile != "" {
		seedService := service.NewSeedService(userRepo, productRepo)
		if _, err := seedService.LoadFile(context.Background(), cfg.SeedFile); err != nil {
			slog.Error("failed to seed catalogue", "file", cfg.SeedFile, "error", err)
			os.Exit(1)
		}
	}

	srv := server.NewServer(identityClient, &server.Services{
		Identity:    identityService,
		Product:     service.NewProductService(productRepo),
		Cart:        service.NewCartService(cartRepo, productRepo),
		Order:       service.NewOrderService(db, userRepo, cartRepo, orderRepo, entitlementRepo),
		Entitlement: service.NewEntitlementService(entitlementRepo, orderRepo),
		Vendor:      vendorService,
		Admin:       service.NewAdminService(userRepo, productRepo, orderRepo, appRepo, reportRepo),
		Webhook:     service.NewWebhookService(cfg.Identity.WebhookSecret, identityService, userRepo, webhookEventRepo),
	})

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	slog.Info("starting HTTP server", "addr", serverAddr, "environment", cfg.Environment.Name)
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	slog.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func newLogger(cfg *config.Log) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
