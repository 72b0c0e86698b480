package lists

import (
	"context"

	"PocketTrade/service/trade/internal/catalog"
	"github.com/google/uuid"
)

// Contratti e modelli delle liste utente (wishlist e trade list).

// MaxBatchItems e' il limite per direzione (add/remove) per lista in un singolo salvataggio.
const MaxBatchItems = 500

// UserCardList contiene le due liste di un utente, ordinate.
type UserCardList struct {
	UserID    uuid.UUID        `json:"user_id"`
	Wishlist  []catalog.CardID `json:"wishlist"`
	TradeList []catalog.CardID `json:"trade_list"`
}

// Profile e' il profilo pubblico usato per presentare un partner di scambio.
type Profile struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FriendID string    `json:"friend_id"`
}

// Me e' la vista dell'utente corrente: profilo piu' liste.
type Me struct {
	Profile   Profile          `json:"profile"`
	Wishlist  []catalog.CardID `json:"wishlist"`
	TradeList []catalog.CardID `json:"tradeList"`
}

// Diff e' una modifica incrementale di una lista.
type Diff struct {
	Add    []catalog.CardID `json:"toAdd"`
	Remove []catalog.CardID `json:"toRemove"`
}

func (d Diff) Empty() bool {
	return len(d.Add) == 0 && len(d.Remove) == 0
}

// Batch raccoglie le modifiche di entrambe le liste di un utente.
type Batch struct {
	Wishlist  Diff `json:"wishlist"`
	TradeList Diff `json:"tradeList"`
}

func (b Batch) Empty() bool {
	return b.Wishlist.Empty() && b.TradeList.Empty()
}

// Postings associa a ogni utente le carte trovate nelle posting list interrogate.
type Postings map[uuid.UUID][]catalog.CardID

// Reader e' il lato di sola lettura usato dal motore di matching.
type Reader interface {
	LoadUserLists(ctx context.Context, userID uuid.UUID) (UserCardList, error)
	// TradersOf ritorna, per ogni altro utente, le carte di cards presenti nella sua trade list.
	TradersOf(ctx context.Context, cards []catalog.CardID, exclude uuid.UUID) (Postings, error)
	// WishersOf ritorna, per ogni altro utente, le carte di cards presenti nella sua wishlist.
	WishersOf(ctx context.Context, cards []catalog.CardID, exclude uuid.UUID) (Postings, error)
}

// ProfileReader risolve i profili dei partner.
type ProfileReader interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error)
	ProfilesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Profile, error)
}

// Store e' il persistence layer completo delle liste.
type Store interface {
	Reader
	ProfileReader
	UpsertProfile(ctx context.Context, profile Profile) error
	ApplyBatch(ctx context.Context, userID uuid.UUID, batch Batch) error
}

// CardRules risolve le carte nel catalogo corrente (catalog.Holder o *catalog.Catalog).
type CardRules interface {
	Lookup(id catalog.CardID) (catalog.Card, error)
}
