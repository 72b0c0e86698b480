package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tradev1 "PocketTrade/proto/trade/v1"
	"PocketTrade/service/trade/internal/catalog"
	"PocketTrade/service/trade/internal/config"
	"PocketTrade/service/trade/internal/db"
	"PocketTrade/service/trade/internal/httpapi"
	"PocketTrade/service/trade/internal/lists"
	"PocketTrade/service/trade/internal/lock"
	"PocketTrade/service/trade/internal/match"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// Bootstrap di logging e config.
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Carica le variabili da .env se presente (solo per dev).
	envPath := os.Getenv("GO_DOTENV_PATH")
	if envPath == "" {
		envPath = ".env"
	}
	if err := godotenv.Overload(envPath); err != nil {
		logger.Warn("impossibile caricare .env", "path", envPath, "error", err)
	} else {
		logger.Info(".env caricato", "path", envPath)
	}

	cfg := config.Load()
	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET mancante")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB richiesto per liste e profili.
	database, err := db.Open(ctx, cfg.DBDSN)
	if err != nil {
		logger.Error("db connection failed", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Redis per cache del catalogo e lock di refresh tra repliche.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// Senza Redis il catalogo si scarica direttamente.
		logger.Warn("redis non raggiungibile", "addr", cfg.RedisAddr, "error", err)
	}

	source := catalog.NewHTTPSource(&http.Client{Timeout: 30 * time.Second}, catalog.URLs{
		Cards:  cfg.CatalogCardsURL,
		Sets:   cfg.CatalogSetsURL,
		Rarity: cfg.CatalogRarityURL,
	})
	loader := catalog.NewLoader(logger, source,
		catalog.NewRedisCache(rdb, cfg.CatalogCacheTTL),
		lock.NewRedisLock(rdb, time.Minute, 3, 500*time.Millisecond))
	holder := catalog.NewHolder(logger, loader)
	if err := holder.Refresh(ctx); err != nil {
		// Il servizio parte comunque: scritture rifiutate e match degradati finche' il catalogo manca.
		logger.Error("caricamento catalogo fallito", "error", err)
	} else {
		logger.Info("catalogo caricato", "cards", holder.Current().Len())
	}
	go holder.Run(ctx, cfg.CatalogRefreshInterval)

	repo := lists.NewRepo(database)
	listService := lists.NewService(logger, repo, holder)
	engine := match.NewEngine(logger, repo, match.Options{
		Workers:     cfg.MatchWorkers,
		MaxPageSize: cfg.MatchMaxPageSize,
		Cards:       holder,
	})
	matchService := match.NewService(logger, engine, repo)

	// gRPC: TradeService + health + reflection.
	grpcServer := grpc.NewServer()
	tradev1.RegisterTradeServiceServer(grpcServer, match.NewGRPCServer(matchService, listService))
	healthServer := health.NewServer()
	healthServer.SetServingStatus(tradev1.TradeService_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	listener, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Error("grpc listen failed", "error", err)
		os.Exit(1)
	}
	go func() {
		logger.Info("trade grpc listening", "addr", cfg.GRPCAddr)
		if err := grpcServer.Serve(listener); err != nil {
			logger.Error("grpc serve failed", "error", err)
			stop()
		}
	}()

	httpServer := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewHandler(httpapi.Deps{
			Catalog:     holder,
			Lists:       listService,
			Matches:     matchService,
			Profiles:    repo,
			JWTSecret:   []byte(cfg.JWTSecret),
			CORSOrigins: cfg.CORSOrigins,
			Logger:      logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("trade http listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown in corso")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("trade-svc fermato")
}
