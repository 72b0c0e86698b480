package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"PocketTrade/service/trade/internal/catalog"
	"PocketTrade/service/trade/internal/lists"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	listWishlist  = "wishlist"
	listTradeList = "trade_list"
)

// Options configura il motore. Cards e' opzionale: senza catalogo le voci non vengono validate.
type Options struct {
	Workers     int
	MaxPageSize int
	Ranking     Ranking
	Cards       lists.CardRules
}

// Engine calcola i partner di scambio di un utente.
// E' stateless e di sola lettura: ogni chiamata rilegge lo store.
type Engine struct {
	store  lists.Reader
	opts   Options
	logger *slog.Logger
}

// NewEngine applica i default: 1 worker, nessun limite di pagina, ranking per score.
func NewEngine(logger *slog.Logger, store lists.Reader, opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Ranking == "" {
		opts.Ranking = RankByScore
	}
	return &Engine{store: store, opts: opts, logger: logger}
}

// FindMatches ritorna i candidati ordinati per il richiedente, paginati secondo q.
func (e *Engine) FindMatches(ctx context.Context, userID uuid.UUID, q Query) (*Result, error) {
	if q.Offset < 0 || q.Limit < 0 {
		return nil, fmt.Errorf("%w: offset and limit must not be negative", ErrInvalidQuery)
	}
	ranking := q.Ranking
	if ranking == "" {
		ranking = e.opts.Ranking
	}
	less, err := lessFor(ranking)
	if err != nil {
		return nil, err
	}

	own, err := e.store.LoadUserLists(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}

	san := &sanitizer{cards: e.opts.Cards}
	wish := san.clean(uuid.Nil, listWishlist, own.Wishlist, false)
	trade := san.clean(uuid.Nil, listTradeList, own.TradeList, true)

	result := &Result{UserID: userID, Offset: q.Offset, Candidates: []Candidate{}}
	if len(wish) > 0 && len(trade) > 0 {
		candidates, err := e.candidates(ctx, userID, wish, trade, san)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(candidates, func(i, j int) bool { return less(candidates[i], candidates[j]) })
		result.Total = len(candidates)
		result.Candidates = e.page(candidates, q, result)
	}

	result.Dropped = san.dropped
	result.Degraded = len(san.dropped) > 0 || san.unverified
	if result.Degraded {
		e.logger.Warn("matching calcolato con dati incompleti",
			"user_id", userID, "dropped", len(san.dropped), "catalog_unavailable", san.unverified)
	}
	return result, nil
}

// candidates legge le due posting list in parallelo e costruisce i candidati su piu' worker.
func (e *Engine) candidates(ctx context.Context, userID uuid.UUID, wish, trade []catalog.CardID, san *sanitizer) ([]Candidate, error) {
	var offers, wants lists.Postings
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		offers, err = e.store.TradersOf(gctx, wish, userID)
		return err
	})
	g.Go(func() error {
		var err error
		wants, err = e.store.WishersOf(gctx, trade, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeError(err)
	}

	// Solo chi compare in entrambe le posting list puo' essere un match.
	partners := make([]uuid.UUID, 0, len(offers))
	for id := range offers {
		if _, ok := wants[id]; ok {
			partners = append(partners, id)
		}
	}
	sort.Slice(partners, func(i, j int) bool { return partners[i].String() < partners[j].String() })

	wishSet, tradeSet := toSet(wish), toSet(trade)
	workers := e.opts.Workers
	if workers > len(partners) {
		workers = len(partners)
	}

	shards := make([][]Candidate, workers)
	shardSans := make([]*sanitizer, workers)
	wg, wctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		shardSans[w] = &sanitizer{cards: san.cards}
		wg.Go(func() error {
			local := shardSans[w]
			for i := w; i < len(partners); i += workers {
				if err := wctx.Err(); err != nil {
					return err
				}
				id := partners[i]
				fromPartner := intersect(local.clean(id, listTradeList, offers[id], true), wishSet)
				fromSelf := intersect(local.clean(id, listWishlist, wants[id], false), tradeSet)
				if len(fromPartner) == 0 || len(fromSelf) == 0 {
					continue
				}
				shards[w] = append(shards[w], Candidate{
					PartnerID:        id,
					WantsFromPartner: fromPartner,
					WantsFromSelf:    fromSelf,
					Score:            len(fromPartner) + len(fromSelf),
				})
			}
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return nil, err
	}

	// L'ordine di merge non conta: l'unica autorita' sull'ordine e' il sort.
	var out []Candidate
	for w := range shards {
		out = append(out, shards[w]...)
		san.merge(shardSans[w])
	}
	return out, nil
}

func (e *Engine) page(sorted []Candidate, q Query, result *Result) []Candidate {
	limit := q.Limit
	if e.opts.MaxPageSize > 0 && limit > e.opts.MaxPageSize {
		limit = e.opts.MaxPageSize
	}
	if q.Offset >= len(sorted) {
		return []Candidate{}
	}
	end := len(sorted)
	if limit > 0 && q.Offset+limit < end {
		end = q.Offset + limit
	}
	if end < len(sorted) {
		result.HasMore = true
		result.NextOffset = end
	}
	return sorted[q.Offset:end]
}

func lessFor(r Ranking) (func(a, b Candidate) bool, error) {
	switch r {
	case RankByScore:
		return func(a, b Candidate) bool {
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			return a.PartnerID.String() < b.PartnerID.String()
		}, nil
	case RankByBalance:
		return func(a, b Candidate) bool {
			ba, bb := balance(a), balance(b)
			if ba != bb {
				return ba > bb
			}
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			return a.PartnerID.String() < b.PartnerID.String()
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown ranking %q", ErrInvalidQuery, r)
	}
}

func balance(c Candidate) int {
	if len(c.WantsFromPartner) < len(c.WantsFromSelf) {
		return len(c.WantsFromPartner)
	}
	return len(c.WantsFromSelf)
}

func storeError(err error) error {
	switch {
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrStoreUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}

// sanitizer scarta voci malformate, duplicate o sconosciute, tenendone traccia.
type sanitizer struct {
	cards      lists.CardRules
	dropped    []DroppedCard
	unverified bool
}

func (s *sanitizer) clean(owner uuid.UUID, list string, ids []catalog.CardID, tradeable bool) []catalog.CardID {
	out := make([]catalog.CardID, 0, len(ids))
	seen := make(map[catalog.CardID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			s.drop(owner, list, id, "duplicate")
			continue
		}
		seen[id] = struct{}{}
		if _, _, err := catalog.ParseCardID(string(id)); err != nil {
			s.drop(owner, list, id, "malformed")
			continue
		}
		if s.cards != nil {
			card, err := s.cards.Lookup(id)
			switch {
			case errors.Is(err, catalog.ErrCatalogUnavailable):
				s.unverified = true
			case err != nil:
				s.drop(owner, list, id, "unknown card")
				continue
			case tradeable && !catalog.IsTradeable(card.RarityCode):
				s.drop(owner, list, id, "rarity not tradeable")
				continue
			}
		}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *sanitizer) drop(owner uuid.UUID, list string, id catalog.CardID, reason string) {
	s.dropped = append(s.dropped, DroppedCard{PartnerID: owner, List: list, Card: id, Reason: reason})
}

func (s *sanitizer) merge(other *sanitizer) {
	s.dropped = append(s.dropped, other.dropped...)
	s.unverified = s.unverified || other.unverified
}

func toSet(ids []catalog.CardID) map[catalog.CardID]struct{} {
	out := make(map[catalog.CardID]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// intersect conserva l'ordine di ids.
func intersect(ids []catalog.CardID, set map[catalog.CardID]struct{}) []catalog.CardID {
	out := make([]catalog.CardID, 0, len(ids))
	for _, id := range ids {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
