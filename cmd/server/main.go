package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/grpc"

	"github.com/pesio-ai/be-plt-login/internal/audit"
	"github.com/pesio-ai/be-plt-login/internal/config"
	"github.com/pesio-ai/be-plt-login/internal/handler"
	"github.com/pesio-ai/be-plt-login/internal/logger"
	"github.com/pesio-ai/be-plt-login/internal/metrics"
	"github.com/pesio-ai/be-plt-login/internal/repository"
	"github.com/pesio-ai/be-plt-login/internal/service"
	"github.com/pesio-ai/be-plt-login/internal/session"
	jwtpkg "github.com/pesio-ai/be-plt-login/pkg/jwt"
	"github.com/pesio-ai/be-plt-login/pkg/password"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		ServiceName: "login-service",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// JWT keys
	privateKeyPEM, publicKeyPEM := cfg.JWT.PrivateKeyPEM, cfg.JWT.PublicKeyPEM
	if privateKeyPEM == "" || publicKeyPEM == "" {
		log.Info().Msg("Generating JWT key pair (development mode)")
		privateKeyPEM, publicKeyPEM, err = jwtpkg.GenerateKeyPair()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to generate JWT key pair")
		}
	}

	jwtManager, err := jwtpkg.NewManager(privateKeyPEM, publicKeyPEM, cfg.JWT.Issuer, cfg.JWT.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create JWT manager")
	}

	// Initialize database connection
	dbPool, err := pgxpool.New(ctx, cfg.DB.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Session cache
	var cache session.Cache
	switch cfg.Session.Backend {
	case config.CacheMemory:
		log.Warn().Msg("Using in-memory session cache; sessions are not shared between instances")
		cache = session.NewMemoryCache(cfg.Session.MemorySize, cfg.Session.TTL)
	default:
		rdb, err := session.NewRedisClient(ctx, cfg.Session.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		defer rdb.Close()
		cache = session.NewRedisCache(rdb, cfg.Session.KeyPrefix)
		log.Info().Msg("Redis connection established")
	}

	m := metrics.New()

	// Initialize repositories
	userRepo := repository.NewUserRepository(dbPool, log)
	roleRepo := repository.NewRoleRepository(dbPool, log)
	employeeRepo := repository.NewEmployeeRepository(dbPool, log)
	institutionRepo := repository.NewInstitutionRepository(dbPool, log)
	trailRepo := repository.NewLoginTrailRepository(dbPool, log)

	recorder := audit.NewRecorder(audit.Config{
		BufferSize:   cfg.Audit.BufferSize,
		Workers:      cfg.Audit.Workers,
		WriteTimeout: cfg.Audit.WriteTimeout,
	}, trailRepo, log, m)

	verifier := password.Verifier{OnError: func(err error) {
		log.Error().Err(err).Msg("Stored password hash is unusable")
	}}

	// Initialize services
	loginService := service.NewLoginService(
		userRepo,
		service.NewAggregator(roleRepo, employeeRepo, institutionRepo, log),
		verifier,
		jwtManager,
		cache,
		recorder,
		cfg.Session.TTL,
		m,
		log,
	)

	// Health
	readiness := handler.NewReadiness(2*time.Second,
		handler.Check{Name: "postgres", Probe: dbPool.Ping},
		handler.Check{Name: "session_cache", Probe: cache.Ping},
	)

	// HTTP server
	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.HTTPPort,
		Handler:      handler.NewRouter(handler.NewHTTPHandler(loginService, log), readiness, m),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.HTTPPort).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// gRPC health server
	grpcHandler := handler.NewGRPCHandler(readiness, log)
	grpcServer := grpc.NewServer()
	grpcHandler.Register(grpcServer)
	go grpcHandler.Run(ctx, 10*time.Second)

	grpcListener, err := net.Listen("tcp", ":"+cfg.Server.GRPCPort)
	if err != nil {
		log.Fatal().Err(err).Str("port", cfg.Server.GRPCPort).Msg("Failed to create gRPC listener")
	}

	go func() {
		log.Info().Str("port", cfg.Server.GRPCPort).Msg("Starting gRPC server")
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Error().Err(err).Msg("gRPC server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	grpcServer.GracefulStop()

	// Flush queued sign in trails before the pool closes
	recorder.Close()

	log.Info().Msg("Server stopped")
}
