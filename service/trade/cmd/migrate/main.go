package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"PocketTrade/service/trade/internal/config"
	"PocketTrade/service/trade/internal/db"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 1) Carica env per la connessione DB.
	envPath := os.Getenv("GO_DOTENV_PATH")
	if envPath == "" {
		envPath = "service/trade/.env"
	}
	if err := godotenv.Overload(envPath); err != nil {
		logger.Warn("impossibile caricare .env", "path", envPath, "error", err)
	} else {
		logger.Info(".env caricato", "path", envPath)
	}

	// 2) Apre il DB con la stessa DSN del server.
	cfg := config.Load()
	database, err := db.Open(context.Background(), cfg.DBDSN)
	if err != nil {
		logger.Error("db connection failed", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// 3) File SQL da CLI, altrimenti tutte le migrazioni in ordine di nome.
	files := os.Args[1:]
	if len(files) == 0 {
		files, err = filepath.Glob("service/trade/migrations/*.sql")
		if err != nil || len(files) == 0 {
			logger.Error("nessun file sql trovato", "usage", "go run ./service/trade/cmd/migrate [file.sql ...]")
			os.Exit(1)
		}
		sort.Strings(files)
	}

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			logger.Error("lettura file sql fallita", "file", file, "error", err)
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = db.ExecFile(ctx, database, string(content))
		cancel()
		if err != nil {
			logger.Error("esecuzione sql fallita", "file", file, "error", err)
			os.Exit(1)
		}
		logger.Info("sql eseguito", "file", file)
	}
}
