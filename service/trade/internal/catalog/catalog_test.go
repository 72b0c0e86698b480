package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const cardsJSON = `[
  {"set":"A1","number":5,"rarity":"Common","rarityCode":"C","imageName":"cA1_5.webp","label":{"slug":"caterpie","eng":"Caterpie"},"packs":["Pikachu"]},
  {"set":"A1","number":2,"rarity":"Rare","rarityCode":"R","imageName":"cA1_2.webp","label":{"slug":"ivysaur","eng":"Ivysaur"},"packs":["Mewtwo"]},
  {"set":"A1","number":9,"rarity":"Ultra Rare","rarityCode":"UR","imageName":"cA1_9.webp","label":{"slug":"","eng":"Mew EX"},"packs":[]},
  {"set":"P-A","number":1,"rarity":"Promo","rarityCode":"PR","imageName":"cPA_1.webp","label":{"slug":"potion","eng":"Potion"},"packs":[]},
  {"set":"A1","number":2,"rarity":"Rare","rarityCode":"R","imageName":"dup.webp","label":{"slug":"dup","eng":"Dup"},"packs":[]},
  {"set":"","number":3,"rarity":"Common","rarityCode":"C","imageName":"","label":{"slug":"x","eng":"X"},"packs":[]}
]`

const setsJSON = `[
  {"code":"A1","releaseDate":"2024-10-30","count":286,"label":{"en":"Genetic Apex"},"packs":["Pikachu","Mewtwo"]},
  {"code":"P-A","releaseDate":"2024-10-30","label":{"en":""},"packs":[]}
]`

const rarityJSON = `{"C":"Common","R":"Rare","UR":"Crown Rare"}`

func testSnapshot() Snapshot {
	return Snapshot{
		Cards:     json.RawMessage(cardsJSON),
		Sets:      json.RawMessage(setsJSON),
		Rarity:    json.RawMessage(rarityJSON),
		FetchedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseEnrichesCards(t *testing.T) {
	cat, err := Parse(testSnapshot())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cat.Len() != 4 {
		t.Fatalf("expected 4 cards, got %d", cat.Len())
	}

	card, err := cat.Lookup("A1-2")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if card.Name != "Ivysaur" || card.SetName != "Genetic Apex" || card.RarityName != "Rare" {
		t.Fatalf("unexpected enrichment: %+v", card)
	}
	if card.ImageName != "cA1_2.webp" {
		t.Fatalf("expected first record to win on duplicates, got %q", card.ImageName)
	}

	mew, _ := cat.Lookup("A1-9")
	if mew.Slug != "mew-ex" {
		t.Fatalf("expected slug derived from name, got %q", mew.Slug)
	}
	if mew.Tradeable {
		t.Fatalf("UR card must not be tradeable")
	}

	promo, _ := cat.Lookup("P-A-1")
	if promo.SetName != "P-A" || promo.RarityName != "Promo" {
		t.Fatalf("expected fallbacks for set and rarity names, got %+v", promo)
	}

	ids := []CardID{}
	for _, c := range cat.Cards() {
		ids = append(ids, c.ID)
	}
	want := []CardID{"A1-2", "A1-5", "A1-9", "P-A-1"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("unexpected order %v", ids)
		}
	}
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	snap := testSnapshot()
	snap.Cards = json.RawMessage(`{"not":"an array"}`)
	if _, err := Parse(snap); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestCheckTradeable(t *testing.T) {
	cat, err := Parse(testSnapshot())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cat.CheckTradeable("A1-5"); err != nil {
		t.Fatalf("expected common card tradeable, got %v", err)
	}
	if err := cat.CheckTradeable("A1-9"); !errors.Is(err, ErrNotTradeable) {
		t.Fatalf("expected ErrNotTradeable for UR, got %v", err)
	}
	if err := cat.CheckTradeable("A9-999"); !errors.Is(err, ErrUnknownCard) {
		t.Fatalf("expected ErrUnknownCard, got %v", err)
	}

	var missing *Catalog
	if _, err := missing.Lookup("A1-5"); !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable on nil catalog, got %v", err)
	}
}

func TestIsTradeable(t *testing.T) {
	for _, code := range TradeableRarities() {
		if !IsTradeable(code) {
			t.Fatalf("expected %s tradeable", code)
		}
	}
	for _, code := range []string{"UR", "SR", "IM", "S", "PR", "", "c"} {
		if IsTradeable(code) {
			t.Fatalf("expected %q not tradeable", code)
		}
	}
}

func TestParseCardID(t *testing.T) {
	cases := []struct {
		in     string
		set    string
		number int
		ok     bool
	}{
		{"A1-5", "A1", 5, true},
		{"P-A-12", "P-A", 12, true},
		{" A2a-100 ", "A2a", 100, true},
		{"A1", "", 0, false},
		{"A1-", "", 0, false},
		{"-5", "", 0, false},
		{"A1-x", "", 0, false},
		{"A1-0", "", 0, false},
	}
	for _, tc := range cases {
		set, number, err := ParseCardID(tc.in)
		if tc.ok != (err == nil) {
			t.Fatalf("%q: expected ok=%v, got err %v", tc.in, tc.ok, err)
		}
		if tc.ok && (set != tc.set || number != tc.number) {
			t.Fatalf("%q: got %s/%d", tc.in, set, number)
		}
	}
	if NewCardID("P-A", 3) != "P-A-3" {
		t.Fatalf("unexpected NewCardID")
	}
}

func TestSearch(t *testing.T) {
	cat, err := Parse(testSnapshot())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got := cat.Search(Filter{Query: "Mew"}); len(got) != 1 || got[0].ID != "A1-9" {
		t.Fatalf("expected Mew EX, got %+v", got)
	}
	if got := cat.Search(Filter{Query: "a1-5"}); len(got) != 1 || got[0].ID != "A1-5" {
		t.Fatalf("expected id match, got %+v", got)
	}
	if got := cat.Search(Filter{TradeableOnly: true}); len(got) != 2 {
		t.Fatalf("expected 2 tradeable cards, got %d", len(got))
	}
	if got := cat.Search(Filter{Rarities: []string{"UR", "PR"}}); len(got) != 2 {
		t.Fatalf("expected 2 cards by rarity, got %d", len(got))
	}
	if got := cat.Search(Filter{Sets: []string{"P-A"}}); len(got) != 1 {
		t.Fatalf("expected 1 promo card, got %d", len(got))
	}
}

func TestHTTPSourceFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cards.json", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, cardsJSON) })
	mux.HandleFunc("/sets.json", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, setsJSON) })
	mux.HandleFunc("/rarity.json", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, rarityJSON) })
	srv := httptest.NewServer(mux)
	defer srv.Close()

	src := NewHTTPSource(srv.Client(), URLs{
		Cards:  srv.URL + "/cards.json",
		Sets:   srv.URL + "/sets.json",
		Rarity: srv.URL + "/rarity.json",
	})
	snap, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if snap.FetchedAt.IsZero() {
		t.Fatalf("expected fetch time")
	}
	cat, err := Parse(snap)
	if err != nil || cat.Len() != 4 {
		t.Fatalf("unexpected parse result: %v, %d", err, cat.Len())
	}
}

func TestHTTPSourceNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.Client(), URLs{Cards: srv.URL, Sets: srv.URL, Rarity: srv.URL})
	if _, err := src.Fetch(context.Background()); err == nil {
		t.Fatalf("expected error on non-200")
	}
}

type fakeSource struct {
	snap  Snapshot
	err   error
	calls int
}

func (s *fakeSource) Fetch(_ context.Context) (Snapshot, error) {
	s.calls++
	return s.snap, s.err
}

type fakeCache struct {
	snap   Snapshot
	ok     bool
	getErr error
	sets   int
}

func (c *fakeCache) Get(_ context.Context) (Snapshot, bool, error) {
	if c.getErr != nil {
		return Snapshot{}, false, c.getErr
	}
	return c.snap, c.ok, nil
}

func (c *fakeCache) Set(_ context.Context, snap Snapshot) error {
	c.sets++
	c.snap = snap
	c.ok = true
	return nil
}

type fakeLock struct {
	ok       bool
	err      error
	released int
	onWait   func()
}

func (l *fakeLock) Acquire(_ context.Context, _ string) (string, bool, error) {
	if !l.ok && l.onWait != nil {
		l.onWait()
	}
	return "token", l.ok, l.err
}

func (l *fakeLock) Release(_ context.Context, _, _ string) error {
	l.released++
	return nil
}

func TestLoaderCacheHit(t *testing.T) {
	src := &fakeSource{}
	cache := &fakeCache{snap: testSnapshot(), ok: true}
	loader := NewLoader(discardLogger(), src, cache, &fakeLock{ok: true})

	cat, err := loader.Load(context.Background())
	if err != nil || cat.Len() != 4 {
		t.Fatalf("unexpected load: %v", err)
	}
	if src.calls != 0 {
		t.Fatalf("expected no fetch on cache hit, got %d", src.calls)
	}
}

func TestLoaderMissFetchesUnderLock(t *testing.T) {
	src := &fakeSource{snap: testSnapshot()}
	cache := &fakeCache{}
	locker := &fakeLock{ok: true}
	loader := NewLoader(discardLogger(), src, cache, locker)

	if _, err := loader.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if src.calls != 1 || cache.sets != 1 || locker.released != 1 {
		t.Fatalf("expected fetch+cache+release, got fetch=%d set=%d release=%d", src.calls, cache.sets, locker.released)
	}
}

func TestLoaderLockHeldRereadsCache(t *testing.T) {
	src := &fakeSource{snap: testSnapshot()}
	cache := &fakeCache{}
	locker := &fakeLock{ok: false}
	// L'altra replica riempie la cache mentre aspettiamo.
	locker.onWait = func() { cache.snap, cache.ok = testSnapshot(), true }
	loader := NewLoader(discardLogger(), src, cache, locker)
	loader.wait = time.Millisecond

	if _, err := loader.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if src.calls != 0 {
		t.Fatalf("expected cache reread instead of fetch, got %d fetches", src.calls)
	}
}

func TestLoaderLockErrorFallsBackToFetch(t *testing.T) {
	src := &fakeSource{snap: testSnapshot()}
	loader := NewLoader(discardLogger(), src, &fakeCache{getErr: errors.New("redis down")}, &fakeLock{err: errors.New("redis down")})

	if _, err := loader.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("expected direct fetch, got %d", src.calls)
	}
}

type fakeProvider struct {
	cat *Catalog
	err error
}

func (p *fakeProvider) Load(_ context.Context) (*Catalog, error) {
	return p.cat, p.err
}

func TestHolderKeepsLastGoodSnapshot(t *testing.T) {
	first, err := Parse(testSnapshot())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	provider := &fakeProvider{cat: first}
	holder := NewHolder(discardLogger(), provider)

	if _, err := holder.Lookup("A1-5"); !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("expected unavailable before first load, got %v", err)
	}
	if err := holder.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	provider.cat, provider.err = nil, errors.New("upstream down")
	if err := holder.Refresh(context.Background()); err == nil {
		t.Fatalf("expected refresh error")
	}
	if holder.Current() != first {
		t.Fatalf("expected previous snapshot to be kept")
	}
}

func TestNewRecomputesTradeable(t *testing.T) {
	cat := New([]Card{
		{Set: "A1", Number: 1, RarityCode: "C", Tradeable: false},
		{ID: "A1-2", Set: "A1", Number: 2, RarityCode: "UR", Tradeable: true},
	}, nil)
	if err := cat.CheckTradeable("A1-1"); err != nil {
		t.Fatalf("expected A1-1 tradeable: %v", err)
	}
	if err := cat.CheckTradeable("A1-2"); !errors.Is(err, ErrNotTradeable) {
		t.Fatalf("expected A1-2 not tradeable, got %v", err)
	}
}

// La cartella locale produce lo stesso catalogo della sorgente HTTP.
func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{"cards.json": cardsJSON, "sets.json": setsJSON} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	snap, err := NewDirSource(dir).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if snap.Rarity != nil {
		t.Fatalf("expected missing rarity.json to be optional")
	}
	cat, err := Parse(snap)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cat.Len() != 4 {
		t.Fatalf("expected 4 cards, got %d", cat.Len())
	}

	if _, err := NewDirSource(t.TempDir()).Fetch(context.Background()); err == nil {
		t.Fatalf("expected error without cards.json")
	}
}
