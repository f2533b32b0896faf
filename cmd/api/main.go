package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/givehub/givehub-backend/api/controllers"
	"github.com/givehub/givehub-backend/api/routes"
	"github.com/givehub/givehub-backend/internal/auth"
	"github.com/givehub/givehub-backend/internal/boutique"
	"github.com/givehub/givehub-backend/internal/campaigns"
	"github.com/givehub/givehub-backend/internal/donations"
	"github.com/givehub/givehub-backend/internal/users"
	"github.com/givehub/givehub-backend/pkg/auth/session"
	"github.com/givehub/givehub-backend/pkg/config"
	"github.com/givehub/givehub-backend/pkg/db"
	"github.com/givehub/givehub-backend/pkg/logger"
	"github.com/givehub/givehub-backend/pkg/metrics"
	"github.com/givehub/givehub-backend/pkg/migrate"
	"github.com/givehub/givehub-backend/pkg/outbox"
	"github.com/givehub/givehub-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := openDatabase(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	services, err := buildServices(cfg, logg, dbClient, sessionManager, registry)
	if err != nil {
		logg.Error(ctx, "failed to build services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"sqlite": cfg.FeatureFlags.UseSQLite,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			registry,
			map[string]controllers.Pinger{"db": dbClient, "redis": redisClient},
			redisClient,
			sessionManager,
			services,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(context.Background(), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
		}
	}
}

func openDatabase(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*db.Client, error) {
	if cfg.FeatureFlags.UseSQLite {
		return db.NewSQLite(ctx, cfg.DB, logg)
	}
	return db.New(ctx, cfg.DB, logg)
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, sessions *session.Manager, reg prometheus.Registerer) (routes.Services, error) {
	conn := dbClient.DB()
	outboxService := outbox.NewService(outbox.NewRepository(conn), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(conn),
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return routes.Services{}, err
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:       dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Services{}, err
	}

	campaignRepo := campaigns.NewRepository(conn)
	campaignService, err := campaigns.NewService(campaignRepo, dbClient, outboxService, logg)
	if err != nil {
		return routes.Services{}, err
	}

	donationService, err := donations.NewService(donations.ServiceParams{
		Repo:                    donations.NewRepository(conn),
		Campaigns:               campaignRepo,
		TxRunner:                dbClient,
		Outbox:                  outboxService,
		Metrics:                 metrics.NewDonationMetrics(reg),
		Logger:                  logg,
		RequireApprovedCampaign: cfg.Policy.RequireApprovedCampaign,
	})
	if err != nil {
		return routes.Services{}, err
	}

	boutiqueService, err := boutique.NewService(boutique.ServiceParams{
		Repo:               boutique.NewRepository(conn),
		TxRunner:           dbClient,
		Outbox:             outboxService,
		Metrics:            metrics.NewBoutiqueMetrics(reg),
		Logger:             logg,
		AutoRejectSiblings: cfg.Policy.AutoRejectSiblings,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:      authService,
		Register:  registerService,
		Campaigns: campaignService,
		Donations: donationService,
		Boutique:  boutiqueService,
	}, nil
}
