package lists

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"PocketTrade/service/trade/internal/catalog"
	"github.com/google/uuid"
)

const (
	listWishlist  = "wishlist"
	listTradeList = "trade_list"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	friendIDPattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{4}$`)
)

// Service e' il layer di sincronizzazione: valida i diff del client e li persiste.
// La regola di rarita' della trade list vive qui, al confine di scrittura.
type Service struct {
	store  Store
	cards  CardRules
	logger *slog.Logger
}

// NewService crea il servizio di dominio per le liste.
func NewService(logger *slog.Logger, store Store, cards CardRules) *Service {
	return &Service{store: store, cards: cards, logger: logger}
}

// GetMe carica profilo e liste dell'utente.
func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (*Me, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	lists, err := s.store.LoadUserLists(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Me{Profile: profile, Wishlist: lists.Wishlist, TradeList: lists.TradeList}, nil
}

// UpsertProfile valida e salva il profilo.
func (s *Service) UpsertProfile(ctx context.Context, p Profile) error {
	if err := ValidateProfile(p); err != nil {
		return err
	}
	return s.store.UpsertProfile(ctx, p)
}

// SaveLists valida il batch e lo applica in modo atomico per l'utente.
// Le scritture concorrenti dello stesso utente sono last-write-wins.
func (s *Service) SaveLists(ctx context.Context, userID uuid.UUID, batch Batch) error {
	wish, err := normalizeDiff(listWishlist, batch.Wishlist)
	if err != nil {
		return err
	}
	trade, err := normalizeDiff(listTradeList, batch.TradeList)
	if err != nil {
		return err
	}
	batch = Batch{Wishlist: wish, TradeList: trade}

	if err := s.checkCards(listWishlist, wish.Add, false); err != nil {
		return err
	}
	if err := s.checkCards(listTradeList, trade.Add, true); err != nil {
		return err
	}

	current, err := s.store.LoadUserLists(ctx, userID)
	if err != nil {
		return err
	}
	if batch.Empty() {
		return nil
	}

	// Le due liste restano disgiunte per le carte toccate da questo batch.
	finalWish := applyToSet(current.Wishlist, wish)
	finalTrade := applyToSet(current.TradeList, trade)
	if both := intersect(wish.Add, finalTrade); len(both) > 0 {
		return &ValidationError{List: listWishlist, Cards: both, Err: ErrListConflict}
	}
	if both := intersect(trade.Add, finalWish); len(both) > 0 {
		return &ValidationError{List: listTradeList, Cards: both, Err: ErrListConflict}
	}

	if err := s.store.ApplyBatch(ctx, userID, batch); err != nil {
		return err
	}

	s.logger.Info("liste salvate",
		"user_id", userID,
		"wishlist_add", len(wish.Add), "wishlist_remove", len(wish.Remove),
		"trade_add", len(trade.Add), "trade_remove", len(trade.Remove))
	return nil
}

// checkCards verifica esistenza e, per la trade list, rarita' scambiabile.
func (s *Service) checkCards(list string, ids []catalog.CardID, tradeable bool) error {
	var unknown, notTradeable []catalog.CardID
	for _, id := range ids {
		card, err := s.cards.Lookup(id)
		switch {
		case errors.Is(err, catalog.ErrCatalogUnavailable):
			return err
		case err != nil:
			unknown = append(unknown, id)
		case tradeable && !catalog.IsTradeable(card.RarityCode):
			notTradeable = append(notTradeable, id)
		}
	}
	if len(unknown) > 0 {
		return &ValidationError{List: list, Cards: unknown, Err: catalog.ErrUnknownCard}
	}
	if len(notTradeable) > 0 {
		return &ValidationError{List: list, Cards: notTradeable, Err: catalog.ErrNotTradeable}
	}
	return nil
}

// normalizeDiff applica il limite per direzione, rimuove spazi e duplicati e
// rifiuta carte presenti sia in Add sia in Remove. Il formato e' verificato solo
// in Add: una voce salvata malformata deve restare rimovibile.
func normalizeDiff(list string, d Diff) (Diff, error) {
	if len(d.Add) > MaxBatchItems || len(d.Remove) > MaxBatchItems {
		return Diff{}, &ValidationError{List: list, Err: fmt.Errorf("%w: max %d items per direction", ErrBatchTooLarge, MaxBatchItems)}
	}
	add, bad := cleanIDs(d.Add, true)
	if len(bad) > 0 {
		return Diff{}, &ValidationError{List: list, Cards: bad, Err: catalog.ErrUnknownCard}
	}
	remove, _ := cleanIDs(d.Remove, false)
	if both := intersect(add, toSet(remove)); len(both) > 0 {
		return Diff{}, &ValidationError{List: list, Cards: both, Err: ErrListConflict}
	}
	return Diff{Add: add, Remove: remove}, nil
}

func cleanIDs(ids []catalog.CardID, strict bool) (clean, bad []catalog.CardID) {
	seen := make(cardSet, len(ids))
	for _, raw := range ids {
		id := catalog.CardID(strings.TrimSpace(string(raw)))
		if id == "" {
			if strict {
				bad = append(bad, raw)
			}
			continue
		}
		if strict {
			if _, _, err := catalog.ParseCardID(string(id)); err != nil {
				bad = append(bad, raw)
				continue
			}
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		clean = append(clean, id)
	}
	sortCardIDs(clean)
	return clean, bad
}

func applyToSet(current []catalog.CardID, d Diff) cardSet {
	out := toSet(current)
	for _, id := range d.Remove {
		delete(out, id)
	}
	for _, id := range d.Add {
		out[id] = struct{}{}
	}
	return out
}

func intersect(ids []catalog.CardID, set cardSet) []catalog.CardID {
	var out []catalog.CardID
	for _, id := range ids {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func toSet(ids []catalog.CardID) cardSet {
	out := make(cardSet, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// DiffLists calcola il diff tra l'ultimo snapshot salvato e la selezione modificata.
func DiffLists(saved, edited []catalog.CardID) Diff {
	savedSet, editedSet := toSet(saved), toSet(edited)
	var d Diff
	for id := range editedSet {
		if _, ok := savedSet[id]; !ok {
			d.Add = append(d.Add, id)
		}
	}
	for id := range savedSet {
		if _, ok := editedSet[id]; !ok {
			d.Remove = append(d.Remove, id)
		}
	}
	sortCardIDs(d.Add)
	sortCardIDs(d.Remove)
	return d
}

// ChunkBatch spezza un batch in batch che rispettano il limite per direzione.
// Tutte le rimozioni precedono gli inserimenti: una carta spostata da una lista
// all'altra non entra mai in conflitto.
func ChunkBatch(b Batch, size int) []Batch {
	if size <= 0 || size > MaxBatchItems {
		size = MaxBatchItems
	}
	var out []Batch
	for i := 0; i < len(b.Wishlist.Remove) || i < len(b.TradeList.Remove); i += size {
		out = append(out, Batch{
			Wishlist:  Diff{Remove: window(b.Wishlist.Remove, i, size)},
			TradeList: Diff{Remove: window(b.TradeList.Remove, i, size)},
		})
	}
	for i := 0; i < len(b.Wishlist.Add) || i < len(b.TradeList.Add); i += size {
		out = append(out, Batch{
			Wishlist:  Diff{Add: window(b.Wishlist.Add, i, size)},
			TradeList: Diff{Add: window(b.TradeList.Add, i, size)},
		})
	}
	return out
}

func window(ids []catalog.CardID, from, size int) []catalog.CardID {
	if from >= len(ids) {
		return nil
	}
	to := from + size
	if to > len(ids) {
		to = len(ids)
	}
	return ids[from:to]
}

// ValidateProfile applica le regole di signup su username e friend id.
func ValidateProfile(p Profile) error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("%w: id is required", ErrInvalidProfile)
	}
	if !usernamePattern.MatchString(p.Username) {
		return fmt.Errorf("%w: username must be 3-20 letters, numbers or underscores", ErrInvalidProfile)
	}
	if !friendIDPattern.MatchString(p.FriendID) {
		return fmt.Errorf("%w: friend id must look like 1234-5678-9012-3456", ErrInvalidProfile)
	}
	return nil
}
