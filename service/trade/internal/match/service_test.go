package match

import (
	"context"
	"errors"
	"testing"

	"PocketTrade/service/trade/internal/lists"
	"github.com/google/uuid"
)

// fakeFinder restituisce un risultato fisso.
type fakeFinder struct {
	result *Result
	err    error
}

func (f *fakeFinder) FindMatches(_ context.Context, _ uuid.UUID, _ Query) (*Result, error) {
	return f.result, f.err
}

// failingProfiles simula un guasto nella lettura dei profili.
type failingProfiles struct{}

func (failingProfiles) GetProfile(context.Context, uuid.UUID) (lists.Profile, error) {
	return lists.Profile{}, lists.ErrStoreUnavailable
}

func (failingProfiles) ProfilesByIDs(context.Context, []uuid.UUID) (map[uuid.UUID]lists.Profile, error) {
	return nil, lists.ErrStoreUnavailable
}

func TestMatchesEnrichesProfiles(t *testing.T) {
	store := lists.NewMemoryStore()
	a := seedUser(t, store, ids("A1-5"), ids("A1-2"))
	b := seedUser(t, store, ids("A1-2"), ids("A1-5"))
	service := NewService(discardLogger(), newTestEngine(store, Options{}), store)

	page, err := service.Matches(context.Background(), a, Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Partners) != 1 {
		t.Fatalf("expected 1 partner, got %d", len(page.Partners))
	}
	want, _ := store.GetProfile(context.Background(), b)
	got := page.Partners[0]
	if got.Username != want.Username || got.FriendID != want.FriendID {
		t.Fatalf("expected profile %+v, got %+v", want, got)
	}
	if page.Degraded {
		t.Fatalf("expected non degraded page")
	}
}

// Se i profili non si leggono, i match restano ma la pagina e' degradata.
func TestMatchesProfilesUnavailable(t *testing.T) {
	partner := uuid.New()
	finder := &fakeFinder{result: &Result{
		Candidates: []Candidate{{PartnerID: partner, WantsFromPartner: ids("A1-5"), WantsFromSelf: ids("A1-2"), Score: 2}},
		Total:      1,
	}}
	service := NewService(discardLogger(), finder, failingProfiles{})

	page, err := service.Matches(context.Background(), uuid.New(), Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Partners) != 1 || page.Partners[0].PartnerID != partner {
		t.Fatalf("expected partner to survive, got %+v", page.Partners)
	}
	if page.Partners[0].Username != "" || !page.Degraded {
		t.Fatalf("expected degraded page without username, got %+v", page)
	}
}

func TestMatchesPropagatesEngineError(t *testing.T) {
	service := NewService(discardLogger(), &fakeFinder{err: ErrStoreUnavailable}, failingProfiles{})

	_, err := service.Matches(context.Background(), uuid.New(), Query{})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestIsPartner(t *testing.T) {
	store := lists.NewMemoryStore()
	a := seedUser(t, store, ids("A1-5"), ids("A1-2"))
	b := seedUser(t, store, ids("A1-2"), ids("A1-5"))
	c := seedUser(t, store, ids("A1-9"), ids("A1-8"))
	service := NewService(discardLogger(), newTestEngine(store, Options{}), store)
	ctx := context.Background()

	ok, err := service.IsPartner(ctx, a, b)
	if err != nil || !ok {
		t.Fatalf("expected b to be a partner of a, got %v %v", ok, err)
	}
	ok, err = service.IsPartner(ctx, a, c)
	if err != nil || ok {
		t.Fatalf("expected c not to be a partner of a, got %v %v", ok, err)
	}
}

func TestParseRanking(t *testing.T) {
	cases := map[string]Ranking{"": RankByScore, "score": RankByScore, " Balance ": RankByBalance}
	for input, want := range cases {
		got, err := ParseRanking(input)
		if err != nil || got != want {
			t.Fatalf("ParseRanking(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := ParseRanking("newest"); !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}
