// Package httpapi espone il trade-svc al client web: catalogo, liste e match.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"PocketTrade/service/trade/internal/catalog"
	"PocketTrade/service/trade/internal/lists"
	"PocketTrade/service/trade/internal/match"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/cors"
)

// CatalogReader ritorna lo snapshot corrente del catalogo (nil se non ancora caricato).
type CatalogReader interface {
	Current() *catalog.Catalog
}

// ListService e' il dominio delle liste.
type ListService interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*lists.Me, error)
	SaveLists(ctx context.Context, userID uuid.UUID, batch lists.Batch) error
}

// MatchService e' il dominio dei match.
type MatchService interface {
	Matches(ctx context.Context, userID uuid.UUID, q match.Query) (*match.Page, error)
	IsPartner(ctx context.Context, userID, other uuid.UUID) (bool, error)
}

// Deps raccoglie le dipendenze del router.
type Deps struct {
	Catalog     CatalogReader
	Lists       ListService
	Matches     MatchService
	Profiles    lists.ProfileReader
	JWTSecret   []byte
	CORSOrigins []string
	Logger      *slog.Logger
}

type api struct {
	deps Deps
}

// NewHandler costruisce il router gin con CORS e autenticazione.
func NewHandler(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	a := &api{deps: deps}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(deps.Logger))

	public := r.Group("/api")
	public.GET("/health", a.health)
	public.GET("/cards", a.listCards)
	public.GET("/rarities", a.listRarities)

	private := r.Group("/api", authMiddleware(deps.JWTSecret))
	private.GET("/user/me", a.me)
	private.POST("/user/wishlist/batch-update", a.updateWishlist)
	private.POST("/user/tradelist/batch-update", a.updateTradeList)
	private.GET("/user/matches", a.matches)
	private.GET("/profiles/:id/friend-qr", a.friendQR)

	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)
}

// requestLogger registra metodo, path, status e durata di ogni richiesta.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
