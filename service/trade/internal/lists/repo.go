package lists

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"PocketTrade/service/trade/internal/catalog"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Accesso dati delle liste su Postgres (persistence layer).
// Le tabelle di join hanno un indice su card_identifier: le posting list del matching
// sono semplici range scan su quell'indice.

const (
	tableWishlist  = "user_wishlist"
	tableTradeList = "user_trade_list"
)

// Codice Postgres per violazione di vincolo unique.
const pqUniqueViolation = "23505"

// Repo implementa Store su Postgres.
type Repo struct {
	db *sql.DB
}

// NewRepo collega il repository a una connessione SQL.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// GetProfile carica il profilo dall'id utente.
func (r *Repo) GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	const query = `
SELECT id, username, friend_id
FROM profiles
WHERE id = $1`

	var p Profile
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&p.ID, &p.Username, &p.FriendID)
	if err == sql.ErrNoRows {
		return Profile{}, ErrUserNotFound
	}
	if err != nil {
		slog.Error("errore lettura profilo", "error", err, "user_id", userID)
		return Profile{}, unavailable(err)
	}
	return p, nil
}

// ProfilesByIDs carica i profili in un'unica query; gli id mancanti sono assenti dalla mappa.
func (r *Repo) ProfilesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Profile, error) {
	out := make(map[uuid.UUID]Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	const query = `
SELECT id, username, friend_id
FROM profiles
WHERE id = ANY($1::uuid[])`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(ids)))
	if err != nil {
		slog.Error("errore lettura profili", "error", err, "count", len(ids))
		return nil, unavailable(err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.FriendID); err != nil {
			return nil, unavailable(err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err)
	}
	return out, nil
}

// UpsertProfile crea o aggiorna il profilo (sostituisce il trigger di signup del provider).
func (r *Repo) UpsertProfile(ctx context.Context, p Profile) error {
	const query = `
INSERT INTO profiles (id, username, friend_id, created_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (id) DO UPDATE
SET username = EXCLUDED.username, friend_id = EXCLUDED.friend_id`

	_, err := r.db.ExecContext(ctx, query, p.ID, p.Username, p.FriendID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return ErrUsernameTaken
		}
		slog.Error("errore upsert profilo", "error", err, "user_id", p.ID)
		return unavailable(err)
	}
	return nil
}

// LoadUserLists ritorna le liste dell'utente; un utente senza righe ha liste vuote.
func (r *Repo) LoadUserLists(ctx context.Context, userID uuid.UUID) (UserCardList, error) {
	const existsQuery = `SELECT EXISTS (SELECT 1 FROM profiles WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, existsQuery, userID).Scan(&exists); err != nil {
		slog.Error("errore verifica profilo", "error", err, "user_id", userID)
		return UserCardList{}, unavailable(err)
	}
	if !exists {
		return UserCardList{}, ErrUserNotFound
	}

	const query = `
SELECT 'w' AS list, card_identifier FROM user_wishlist WHERE user_id = $1
UNION ALL
SELECT 't' AS list, card_identifier FROM user_trade_list WHERE user_id = $1
ORDER BY 1, 2`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Error("errore lettura liste", "error", err, "user_id", userID)
		return UserCardList{}, unavailable(err)
	}
	defer rows.Close()

	result := UserCardList{UserID: userID, Wishlist: []catalog.CardID{}, TradeList: []catalog.CardID{}}
	for rows.Next() {
		var list, card string
		if err := rows.Scan(&list, &card); err != nil {
			return UserCardList{}, unavailable(err)
		}
		if list == "w" {
			result.Wishlist = append(result.Wishlist, catalog.CardID(card))
		} else {
			result.TradeList = append(result.TradeList, catalog.CardID(card))
		}
	}
	if err := rows.Err(); err != nil {
		return UserCardList{}, unavailable(err)
	}
	return result, nil
}

// ApplyBatch applica rimozioni e inserimenti di un solo utente in una transazione.
func (r *Repo) ApplyBatch(ctx context.Context, userID uuid.UUID, batch Batch) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("errore apertura transazione", "error", err, "user_id", userID)
		return unavailable(err)
	}

	steps := []struct {
		table string
		diff  Diff
	}{
		{tableWishlist, batch.Wishlist},
		{tableTradeList, batch.TradeList},
	}
	for _, step := range steps {
		if err := applyDiff(ctx, tx, step.table, userID, step.diff); err != nil {
			_ = tx.Rollback()
			slog.Error("errore salvataggio lista", "error", err, "user_id", userID, "table", step.table)
			return unavailable(err)
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("errore commit liste", "error", err, "user_id", userID)
		return unavailable(err)
	}
	return nil
}

func applyDiff(ctx context.Context, tx *sql.Tx, table string, userID uuid.UUID, diff Diff) error {
	if len(diff.Remove) > 0 {
		query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND card_identifier = ANY($2)`, table)
		if _, err := tx.ExecContext(ctx, query, userID, pq.Array(cardStrings(diff.Remove))); err != nil {
			return err
		}
	}
	if len(diff.Add) > 0 {
		query := fmt.Sprintf(`
INSERT INTO %s (user_id, card_identifier)
SELECT $1, unnest($2::text[])
ON CONFLICT (user_id, card_identifier) DO NOTHING`, table)
		if _, err := tx.ExecContext(ctx, query, userID, pq.Array(cardStrings(diff.Add))); err != nil {
			return err
		}
	}
	return nil
}

// TradersOf legge la posting list "carta -> utenti che la offrono".
func (r *Repo) TradersOf(ctx context.Context, cards []catalog.CardID, exclude uuid.UUID) (Postings, error) {
	return r.postings(ctx, tableTradeList, cards, exclude)
}

// WishersOf legge la posting list "carta -> utenti che la cercano".
func (r *Repo) WishersOf(ctx context.Context, cards []catalog.CardID, exclude uuid.UUID) (Postings, error) {
	return r.postings(ctx, tableWishlist, cards, exclude)
}

func (r *Repo) postings(ctx context.Context, table string, cards []catalog.CardID, exclude uuid.UUID) (Postings, error) {
	out := Postings{}
	if len(cards) == 0 {
		return out, nil
	}

	query := fmt.Sprintf(`
SELECT user_id, card_identifier
FROM %s
WHERE card_identifier = ANY($1) AND user_id <> $2
ORDER BY user_id, card_identifier`, table)

	rows, err := r.db.QueryContext(ctx, query, pq.Array(cardStrings(cards)), exclude)
	if err != nil {
		slog.Error("errore lettura posting list", "error", err, "table", table, "cards", len(cards))
		return nil, unavailable(err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID uuid.UUID
		var card string
		if err := rows.Scan(&userID, &card); err != nil {
			return nil, unavailable(err)
		}
		out[userID] = append(out[userID], catalog.CardID(card))
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err)
	}
	return out, nil
}

func unavailable(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func cardStrings(ids []catalog.CardID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
