package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// URL di default del dataset pubblico delle carte (snapshot JSON senza versione).
const (
	DefaultCardsURL  = "https://raw.githubusercontent.com/flibustier/pokemon-tcg-pocket-database/main/dist/cards.json"
	DefaultSetsURL   = "https://raw.githubusercontent.com/flibustier/pokemon-tcg-pocket-database/main/dist/sets.json"
	DefaultRarityURL = "https://raw.githubusercontent.com/flibustier/pokemon-tcg-pocket-database/main/dist/rarity.json"
)

// Config contiene le impostazioni runtime per trade-svc.
type Config struct {
	GRPCAddr string
	HTTPAddr string
	DBDSN    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CatalogCardsURL        string
	CatalogSetsURL         string
	CatalogRarityURL       string
	CatalogCacheTTL        time.Duration
	CatalogRefreshInterval time.Duration

	JWTSecret   string
	CORSOrigins []string

	MatchWorkers     int
	MatchMaxPageSize int

	LogLevel slog.Level
}

// Load legge le variabili d'ambiente con default minimi.
func Load() Config {
	dbDSN := os.Getenv("DB_DSN")
	if dbDSN == "" {
		dbDSN = buildDSN()
	}

	return Config{
		GRPCAddr:               getEnv("GRPC_ADDR", ":50054"),
		HTTPAddr:               getEnv("HTTP_ADDR", ":8080"),
		DBDSN:                  dbDSN,
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                getInt("REDIS_DB", 0),
		CatalogCardsURL:        getEnv("CATALOG_CARDS_URL", DefaultCardsURL),
		CatalogSetsURL:         getEnv("CATALOG_SETS_URL", DefaultSetsURL),
		CatalogRarityURL:       getEnv("CATALOG_RARITY_URL", DefaultRarityURL),
		CatalogCacheTTL:        getDuration("CATALOG_CACHE_TTL", 24*time.Hour),
		CatalogRefreshInterval: getDuration("CATALOG_REFRESH_INTERVAL", 6*time.Hour),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		CORSOrigins:            splitList(getEnv("CORS_ORIGINS", "*")),
		MatchWorkers:           getInt("MATCH_WORKERS", 4),
		MatchMaxPageSize:       getInt("MATCH_MAX_PAGE_SIZE", 100),
		LogLevel:               parseLevel(os.Getenv("LOG_LEVEL")),
	}
}

// getEnv ritorna il fallback quando la variabile non è presente.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildDSN() string {
	host := os.Getenv("DB_HOST")
	port := getEnv("DB_PORT", "5432")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	name := os.Getenv("DB_NAME")
	sslmode := getEnv("DB_SSLMODE", "require")
	if host == "" || user == "" || name == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, name, sslmode)
}
