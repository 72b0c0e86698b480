package lists

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"PocketTrade/service/trade/internal/catalog"
	"github.com/google/uuid"
)

const fixtureJSON = `{
  "users": [
    {"id": "6f1c1b8e-5b7e-4c2a-9d57-1f3f0d9e2a01", "username": "ash", "friend_id": "1111-2222-3333-4444",
     "wishlist": ["A1-5", "A1-9"], "trade_list": ["A1-2"]},
    {"id": "6f1c1b8e-5b7e-4c2a-9d57-1f3f0d9e2a02", "username": "misty", "friend_id": "5555-6666-7777-8888",
     "wishlist": ["A1-2"], "trade_list": ["A1-5"]}
  ]
}`

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestSeedFixture(t *testing.T) {
	f, err := ReadFixture(writeFixture(t, fixtureJSON))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	store := NewMemoryStore()
	service := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), store, testCatalog())

	if err := service.Seed(context.Background(), f); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := store.LoadUserLists(context.Background(), f.Users[0].ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Wishlist) != 2 || len(got.TradeList) != 1 {
		t.Fatalf("unexpected lists: %+v", got)
	}
}

// Un fixture con carte non scambiabili in trade list viene rifiutato come una scrittura reale.
func TestSeedFixtureValidates(t *testing.T) {
	f := &Fixture{Users: []FixtureUser{{
		ID:        uuid.New(),
		Username:  "brock",
		FriendID:  "1111-2222-3333-4444",
		TradeList: []catalog.CardID{"A1-280"},
	}}}
	store := NewMemoryStore()
	service := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), store, testCatalog())

	err := service.Seed(context.Background(), f)
	if !errors.Is(err, catalog.ErrNotTradeable) {
		t.Fatalf("expected ErrNotTradeable, got %v", err)
	}
}

func TestReadFixtureInvalid(t *testing.T) {
	if _, err := ReadFixture(writeFixture(t, "{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}

// Il fixture del mock-server deve restare coerente con il catalogo di testdata.
func TestTestdataFixtureSeeds(t *testing.T) {
	snap, err := catalog.NewDirSource(filepath.Join("..", "..", "testdata", "catalog")).Fetch(context.Background())
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	cat, err := catalog.Parse(snap)
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	f, err := ReadFixture(filepath.Join("..", "..", "testdata", "fixture.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	service := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), NewMemoryStore(), cat)
	if err := service.Seed(context.Background(), f); err != nil {
		t.Fatalf("seed: %v", err)
	}
}
