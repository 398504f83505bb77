package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"

	drinkgrpc "github.com/k1s0-platform/service-server-go-drinks/internal/adapter/grpc"
	"github.com/k1s0-platform/service-server-go-drinks/internal/adapter/handler"
	"github.com/k1s0-platform/service-server-go-drinks/internal/adapter/middleware"
	drinkrepo "github.com/k1s0-platform/service-server-go-drinks/internal/adapter/repository"
	"github.com/k1s0-platform/service-server-go-drinks/internal/infra/auth"
	"github.com/k1s0-platform/service-server-go-drinks/internal/infra/config"
	"github.com/k1s0-platform/service-server-go-drinks/internal/infra/messaging"
	"github.com/k1s0-platform/service-server-go-drinks/internal/infra/persistence"
	"github.com/k1s0-platform/service-server-go-drinks/internal/infra/telemetry"
	"github.com/k1s0-platform/service-server-go-drinks/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the config file")
	flag.Parse()

	// --- Config ---
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}

	// --- Logger ---
	logger := config.NewLogger(cfg.App, cfg.Observability)
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Telemetry ---
	provider, err := telemetry.InitTelemetry(ctx, telemetry.TelemetryConfig{
		ServiceName:   cfg.App.Name,
		Version:       cfg.App.Version,
		Tier:          cfg.App.Tier,
		Environment:   cfg.App.Environment,
		TraceEndpoint: cfg.Observability.TraceEndpoint,
		SampleRate:    cfg.Observability.SampleRate,
	})
	if err != nil {
		slog.Error("failed to init telemetry", "error", err)
		os.Exit(1)
	}
	defer provider.Shutdown(context.Background())
	metrics := telemetry.NewMetrics(cfg.App.Name)

	// --- Database ---
	db, err := persistence.NewDB(cfg.Database)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	repo := drinkrepo.NewDrinkPostgresRepository(db)

	if cfg.Database.Seed {
		seeded, err := usecase.NewSeedDrinksUseCase(repo).Execute(ctx)
		if err != nil {
			slog.Error("failed to seed drinks", "error", err)
			os.Exit(1)
		}
		if seeded > 0 {
			slog.Info("seeded drinks", "count", seeded)
		}
	}

	// --- Kafka ---
	var publisher usecase.DrinkChangeEventPublisher
	var optionalChecks []handler.ReadinessCheck
	if cfg.Kafka.Enabled() {
		producer := messaging.NewDrinkEventProducer(cfg.Kafka)
		defer producer.Close()
		publisher = producer
		optionalChecks = append(optionalChecks, handler.ReadinessCheck{Name: "kafka", Checker: producer, Optional: true})
	} else {
		slog.Info("kafka brokers not configured, change events are disabled")
	}

	// --- Token verification ---
	keyCache := auth.NewKeySetCache(auth.KeySetCacheConfig{
		JWKSURL:            cfg.Auth.JWKSURI,
		TTL:                cfg.Auth.JWKSCacheTTL,
		FetchTimeout:       cfg.Auth.JWKSFetchTimeout,
		MinRefreshInterval: cfg.Auth.JWKSMinRefreshInterval,
		OnRefresh:          metrics.RecordJWKSRefresh,
	}, nil, logger)
	if err := keyCache.Refresh(ctx); err != nil {
		slog.Warn("initial JWKS fetch failed, will retry on first request", "error", err)
	}
	verifier := auth.NewTokenVerifier(keyCache, auth.VerifierConfig{
		Issuer:    cfg.Auth.Issuer,
		Audience:  cfg.Auth.Audience,
		ClockSkew: cfg.Auth.ClockSkew,
	})

	// --- DI ---
	validateTokenUC := usecase.NewValidateTokenUseCase(verifier)
	checkPermissionUC := usecase.NewCheckPermissionUseCase()
	listDrinksUC := usecase.NewListDrinksUseCase(repo)
	createDrinkUC := usecase.NewCreateDrinkUseCase(repo, publisher, logger)
	updateDrinkUC := usecase.NewUpdateDrinkUseCase(repo, publisher, logger)
	deleteDrinkUC := usecase.NewDeleteDrinkUseCase(repo, publisher, logger)

	// --- REST Router ---
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(telemetry.GinMiddleware(logger, metrics))
	handler.RegisterErrorHandlers(r)

	r.GET("/healthz", handler.HealthzHandler())
	readinessChecks := append([]handler.ReadinessCheck{
		{Name: "database", Checker: db},
		{Name: "jwks", Checker: keyCache},
	}, optionalChecks...)
	r.GET("/readyz", handler.ReadyzHandler(readinessChecks...))
	r.GET("/metrics", gin.WrapH(telemetry.MetricsHandler()))

	authenticator := middleware.NewAuthenticator(validateTokenUC, checkPermissionUC, logger, metrics)
	drinkHandler := handler.NewDrinkHandler(
		listDrinksUC, createDrinkUC, updateDrinkUC, deleteDrinkUC,
		handler.DrinkHandlerOptions{
			WriteErrorsAs405:  cfg.Compat.WriteErrorsAs405,
			EmptyListNotFound: cfg.Compat.EmptyListNotFound,
		},
		logger,
	)
	drinkHandler.RegisterRoutes(r, authenticator.Require)

	// --- gRPC Server ---
	var grpcServer *grpc.Server
	if cfg.GRPC.Port > 0 {
		grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(
			telemetry.GRPCUnaryServerInterceptor(logger, metrics),
			drinkgrpc.AuthUnaryInterceptor(validateTokenUC, checkPermissionUC, drinkgrpc.MethodPermissions, logger, metrics),
		))
		drinkgrpc.RegisterDrinkServiceServer(grpcServer, drinkgrpc.NewDrinkGRPCService(
			listDrinksUC, createDrinkUC, updateDrinkUC, deleteDrinkUC,
		))

		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.Port))
		if err != nil {
			slog.Error("failed to listen for gRPC", "error", err)
			os.Exit(1)
		}
		go func() {
			slog.Info("gRPC server starting", "port", cfg.GRPC.Port)
			if err := grpcServer.Serve(lis); err != nil {
				slog.Error("gRPC server failed", "error", err)
				os.Exit(1)
			}
		}()
	}

	// --- REST Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("REST server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("REST server failed", "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down servers...")

	if grpcServer != nil {
		grpcServer.GracefulStop()
		slog.Info("gRPC server stopped")
	}

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("REST server forced to shutdown", "error", err)
	}
	slog.Info("servers exited")
}
