package lists

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TRADE_TEST_DSN")
	if dsn == "" {
		t.Skip("TRADE_TEST_DSN not set")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Test d'integrazione: scrive un batch e rilegge liste e posting list.
func TestRepoApplyBatchAndPostings(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewRepo(db)

	a, b := uuid.New(), uuid.New()
	for _, p := range []Profile{
		{ID: a, Username: "it_" + a.String()[:8], FriendID: "1111-1111-1111-1111"},
		{ID: b, Username: "it_" + b.String()[:8], FriendID: "2222-2222-2222-2222"},
	} {
		if err := repo.UpsertProfile(ctx, p); err != nil {
			t.Fatalf("upsert profile: %v", err)
		}
	}
	t.Cleanup(func() {
		_, _ = db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ANY($1::uuid[])`, "{"+a.String()+","+b.String()+"}")
	})

	if err := repo.ApplyBatch(ctx, a, Batch{Wishlist: Diff{Add: ids("A1-5", "A1-9")}, TradeList: Diff{Add: ids("A1-2")}}); err != nil {
		t.Fatalf("apply a: %v", err)
	}
	if err := repo.ApplyBatch(ctx, b, Batch{Wishlist: Diff{Add: ids("A1-2")}, TradeList: Diff{Add: ids("A1-5")}}); err != nil {
		t.Fatalf("apply b: %v", err)
	}
	// Reinserire le stesse carte non deve fallire.
	if err := repo.ApplyBatch(ctx, b, Batch{TradeList: Diff{Add: ids("A1-5")}}); err != nil {
		t.Fatalf("idempotent insert: %v", err)
	}

	lists, err := repo.LoadUserLists(ctx, a)
	if err != nil {
		t.Fatalf("LoadUserLists: %v", err)
	}
	if len(lists.Wishlist) != 2 || len(lists.TradeList) != 1 {
		t.Fatalf("unexpected lists: %+v", lists)
	}

	traders, err := repo.TradersOf(ctx, lists.Wishlist, a)
	if err != nil {
		t.Fatalf("TradersOf: %v", err)
	}
	if len(traders[b]) != 1 || traders[b][0] != "A1-5" {
		t.Fatalf("unexpected traders: %v", traders)
	}

	profiles, err := repo.ProfilesByIDs(ctx, []uuid.UUID{a, b})
	if err != nil || len(profiles) != 2 {
		t.Fatalf("ProfilesByIDs: %v, %d", err, len(profiles))
	}
}

// Test d'integrazione: utente inesistente.
func TestRepoLoadUserListsNotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := NewRepo(db).LoadUserLists(context.Background(), uuid.New())
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
