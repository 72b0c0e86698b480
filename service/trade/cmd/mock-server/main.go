package main

import (
	"context"
	"log/slog"
	"net"
	"os"

	tradev1 "PocketTrade/proto/trade/v1"
	"PocketTrade/service/trade/internal/catalog"
	"PocketTrade/service/trade/internal/lists"
	"PocketTrade/service/trade/internal/match"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

// Mock del trade-svc per il frontend in locale: store in memoria, catalogo e utenti da fixture.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	addr := getEnv("GRPC_ADDR", ":50054")
	fixturePath := getEnv("FIXTURE_PATH", "service/trade/testdata/fixture.json")
	catalogDir := getEnv("CATALOG_DIR", "service/trade/testdata/catalog")
	ctx := context.Background()

	holder := catalog.NewHolder(logger, catalog.NewLoader(logger, catalog.NewDirSource(catalogDir), nil, nil))
	if err := holder.Refresh(ctx); err != nil {
		logger.Error("catalogo fixture non valido", "dir", catalogDir, "error", err)
		os.Exit(1)
	}

	fixture, err := lists.ReadFixture(fixturePath)
	if err != nil {
		logger.Error("fixture non leggibile", "path", fixturePath, "error", err)
		os.Exit(1)
	}
	store := lists.NewMemoryStore()
	listService := lists.NewService(logger, store, holder)
	if err := listService.Seed(ctx, fixture); err != nil {
		logger.Error("seed fixture fallito", "error", err)
		os.Exit(1)
	}

	engine := match.NewEngine(logger, store, match.Options{Workers: 2, MaxPageSize: 100, Cards: holder})

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("grpc listen failed", "error", err)
		os.Exit(1)
	}

	server := grpc.NewServer()
	tradev1.RegisterTradeServiceServer(server, match.NewGRPCServer(match.NewService(logger, engine, store), listService))
	reflection.Register(server)

	logger.Info("mock trade grpc listening", "addr", addr, "users", len(fixture.Users), "cards", holder.Current().Len())
	if err := server.Serve(lis); err != nil {
		logger.Error("grpc serve failed", "error", err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
