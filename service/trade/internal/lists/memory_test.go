package lists

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

func TestMemoryStorePostings(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	for i, id := range []uuid.UUID{a, b, c} {
		if err := store.UpsertProfile(ctx, Profile{ID: id, Username: fmt.Sprintf("user_%d", i), FriendID: "0000-0000-0000-0000"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	_ = store.ApplyBatch(ctx, a, Batch{TradeList: Diff{Add: ids("A1-1", "A1-2")}})
	_ = store.ApplyBatch(ctx, b, Batch{TradeList: Diff{Add: ids("A1-2", "A1-3")}, Wishlist: Diff{Add: ids("A1-1")}})
	_ = store.ApplyBatch(ctx, c, Batch{Wishlist: Diff{Add: ids("A1-1", "A1-3")}})

	traders, err := store.TradersOf(ctx, ids("A1-2", "A1-3", "A1-2"), a)
	if err != nil {
		t.Fatalf("TradersOf: %v", err)
	}
	if len(traders) != 1 || fmt.Sprint(traders[b]) != "[A1-2 A1-3]" {
		t.Fatalf("unexpected traders %v", traders)
	}

	wishers, _ := store.WishersOf(ctx, ids("A1-1"), uuid.Nil)
	if len(wishers) != 2 {
		t.Fatalf("expected 2 wishers, got %v", wishers)
	}

	_ = store.ApplyBatch(ctx, b, Batch{TradeList: Diff{Remove: ids("A1-2", "A1-3")}})
	traders, _ = store.TradersOf(ctx, ids("A1-2", "A1-3"), a)
	if len(traders) != 0 {
		t.Fatalf("expected empty postings after removal, got %v", traders)
	}
	if _, ok := store.traders["A1-3"]; ok {
		t.Fatalf("empty posting list must be dropped")
	}
}

func TestMemoryStoreProfiles(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a, b := uuid.New(), uuid.New()

	if err := store.UpsertProfile(ctx, Profile{ID: a, Username: "brock"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.UpsertProfile(ctx, Profile{ID: b, Username: "brock"}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if err := store.UpsertProfile(ctx, Profile{ID: a, Username: "brock_2"}); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := store.UpsertProfile(ctx, Profile{ID: b, Username: "brock"}); err != nil {
		t.Fatalf("old username must be free after rename: %v", err)
	}

	got, _ := store.ProfilesByIDs(ctx, []uuid.UUID{a, b, uuid.New()})
	if len(got) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(got))
	}
	if _, err := store.LoadUserLists(ctx, uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := store.ApplyBatch(ctx, uuid.New(), Batch{}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
