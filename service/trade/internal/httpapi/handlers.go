package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"PocketTrade/pkg/grpcx"
	"PocketTrade/service/trade/internal/catalog"
	"PocketTrade/service/trade/internal/lists"
	"PocketTrade/service/trade/internal/match"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

func (a *api) health(c *gin.Context) {
	cat := a.deps.Catalog.Current()
	body := gin.H{"status": "ok", "catalog_loaded": cat != nil}
	if cat != nil {
		body["catalog_cards"] = cat.Len()
		body["catalog_fetched_at"] = cat.FetchedAt()
	}
	c.JSON(http.StatusOK, body)
}

// listCards filtra il catalogo: ?rarity=C,U&set=A1&q=pikachu&tradeable=true
func (a *api) listCards(c *gin.Context) {
	cat := a.deps.Catalog.Current()
	if cat == nil {
		writeError(c, catalog.ErrCatalogUnavailable)
		return
	}
	tradeable, _ := strconv.ParseBool(c.Query("tradeable"))
	cards := cat.Search(catalog.Filter{
		Rarities:      splitParam(c.Query("rarity")),
		Sets:          splitParam(c.Query("set")),
		Query:         c.Query("q"),
		TradeableOnly: tradeable,
	})
	c.JSON(http.StatusOK, gin.H{"count": len(cards), "cards": cards})
}

func (a *api) listRarities(c *gin.Context) {
	cat := a.deps.Catalog.Current()
	if cat == nil {
		writeError(c, catalog.ErrCatalogUnavailable)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rarities":  cat.Rarities(),
		"tradeable": catalog.TradeableRarities(),
		"sets":      cat.Sets(),
	})
}

func (a *api) me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	me, err := a.deps.Lists.GetMe(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, me)
}

func (a *api) updateWishlist(c *gin.Context) {
	a.updateList(c, func(d lists.Diff) lists.Batch { return lists.Batch{Wishlist: d} })
}

func (a *api) updateTradeList(c *gin.Context) {
	a.updateList(c, func(d lists.Diff) lists.Batch { return lists.Batch{TradeList: d} })
}

// updateList riceve {"toAdd": [...], "toRemove": [...]} per una sola lista.
func (a *api) updateList(c *gin.Context, toBatch func(lists.Diff) lists.Batch) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var diff lists.Diff
	if err := c.ShouldBindJSON(&diff); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := a.deps.Lists.SaveLists(c.Request.Context(), userID, toBatch(diff)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// matches: ?offset=0&limit=20&ranking=score|balance
func (a *api) matches(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	offset, err := intParam(c, "offset", 0)
	if err != nil {
		writeError(c, err)
		return
	}
	limit, err := intParam(c, "limit", match.DefaultPageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	if limit == 0 {
		limit = match.DefaultPageSize
	}
	ranking, err := match.ParseRanking(c.Query("ranking"))
	if err != nil {
		writeError(c, err)
		return
	}

	page, err := a.deps.Matches.Matches(c.Request.Context(), userID, match.Query{
		Offset:  offset,
		Limit:   limit,
		Ranking: ranking,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// friendQR genera il QR del friend id. Visibile solo a se stessi o a un partner attuale.
func (a *api) friendQR(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	target, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile id"})
		return
	}
	ctx := c.Request.Context()
	if target != userID {
		partner, err := a.deps.Matches.IsPartner(ctx, userID, target)
		if err != nil {
			writeError(c, err)
			return
		}
		if !partner {
			c.JSON(http.StatusForbidden, gin.H{"error": "profile is not a current trade partner"})
			return
		}
	}

	profile, err := a.deps.Profiles.GetProfile(ctx, target)
	if err != nil {
		writeError(c, err)
		return
	}
	if profile.FriendID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "friend id not set"})
		return
	}
	png, err := qrcode.Encode(profile.FriendID, qrcode.Medium, qrSize)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, err := grpcx.UserIDFromContext(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return uuid.Nil, false
	}
	return userID, true
}

func intParam(c *gin.Context, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, match.ErrInvalidQuery
	}
	return v, nil
}

func splitParam(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// writeError mappa gli errori di dominio su status HTTP con body {"error": ...}.
func writeError(c *gin.Context, err error) {
	var verr *lists.ValidationError
	switch {
	case errors.Is(err, lists.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.As(err, &verr):
		cards := make([]string, len(verr.Cards))
		for i, id := range verr.Cards {
			cards[i] = string(id)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Err.Error(), "list": verr.List, "cards": cards})
	case errors.Is(err, match.ErrInvalidQuery),
		errors.Is(err, catalog.ErrUnknownCard),
		errors.Is(err, catalog.ErrNotTradeable),
		errors.Is(err, lists.ErrBatchTooLarge),
		errors.Is(err, lists.ErrListConflict):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, lists.ErrStoreUnavailable), errors.Is(err, catalog.ErrCatalogUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": unavailableMessage(c)})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "deadline exceeded"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func unavailableMessage(c *gin.Context) string {
	if strings.HasSuffix(c.FullPath(), "/matches") {
		return "no matches could be computed right now"
	}
	return "service temporarily unavailable"
}
