package lists

import (
	"context"
	"sort"
	"sync"

	"PocketTrade/service/trade/internal/catalog"
	"github.com/google/uuid"
)

type cardSet map[catalog.CardID]struct{}

type userSet map[uuid.UUID]struct{}

// MemoryStore tiene liste e indici invertiti in memoria (mock-server, CLI offline, test).
type MemoryStore struct {
	mu        sync.RWMutex
	profiles  map[uuid.UUID]Profile
	usernames map[string]uuid.UUID
	wishlist  map[uuid.UUID]cardSet
	tradeList map[uuid.UUID]cardSet
	wishers   map[catalog.CardID]userSet
	traders   map[catalog.CardID]userSet
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles:  make(map[uuid.UUID]Profile),
		usernames: make(map[string]uuid.UUID),
		wishlist:  make(map[uuid.UUID]cardSet),
		tradeList: make(map[uuid.UUID]cardSet),
		wishers:   make(map[catalog.CardID]userSet),
		traders:   make(map[catalog.CardID]userSet),
	}
}

func (s *MemoryStore) GetProfile(_ context.Context, userID uuid.UUID) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return Profile{}, ErrUserNotFound
	}
	return p, nil
}

func (s *MemoryStore) ProfilesByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]Profile, len(ids))
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *MemoryStore) UpsertProfile(_ context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, ok := s.usernames[p.Username]; ok && owner != p.ID {
		return ErrUsernameTaken
	}
	if old, ok := s.profiles[p.ID]; ok {
		delete(s.usernames, old.Username)
	}
	s.profiles[p.ID] = p
	s.usernames[p.Username] = p.ID
	return nil
}

func (s *MemoryStore) LoadUserLists(_ context.Context, userID uuid.UUID) (UserCardList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.profiles[userID]; !ok {
		return UserCardList{}, ErrUserNotFound
	}
	return UserCardList{
		UserID:    userID,
		Wishlist:  sortedCards(s.wishlist[userID]),
		TradeList: sortedCards(s.tradeList[userID]),
	}, nil
}

// ApplyBatch e' atomico rispetto ai lettori: tutto avviene sotto lo stesso lock.
func (s *MemoryStore) ApplyBatch(_ context.Context, userID uuid.UUID, batch Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[userID]; !ok {
		return ErrUserNotFound
	}
	applyMemoryDiff(s.wishlist, s.wishers, userID, batch.Wishlist)
	applyMemoryDiff(s.tradeList, s.traders, userID, batch.TradeList)
	return nil
}

func applyMemoryDiff(lists map[uuid.UUID]cardSet, index map[catalog.CardID]userSet, userID uuid.UUID, diff Diff) {
	list := lists[userID]
	if list == nil {
		list = cardSet{}
		lists[userID] = list
	}
	for _, id := range diff.Remove {
		delete(list, id)
		if users := index[id]; users != nil {
			delete(users, userID)
			if len(users) == 0 {
				delete(index, id)
			}
		}
	}
	for _, id := range diff.Add {
		list[id] = struct{}{}
		users := index[id]
		if users == nil {
			users = userSet{}
			index[id] = users
		}
		users[userID] = struct{}{}
	}
}

func (s *MemoryStore) TradersOf(_ context.Context, cards []catalog.CardID, exclude uuid.UUID) (Postings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collectPostings(s.traders, cards, exclude), nil
}

func (s *MemoryStore) WishersOf(_ context.Context, cards []catalog.CardID, exclude uuid.UUID) (Postings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collectPostings(s.wishers, cards, exclude), nil
}

// collectPostings unisce le posting list delle carte richieste, raggruppando per utente.
func collectPostings(index map[catalog.CardID]userSet, cards []catalog.CardID, exclude uuid.UUID) Postings {
	out := Postings{}
	seen := make(cardSet, len(cards))
	for _, id := range cards {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		for userID := range index[id] {
			if userID == exclude {
				continue
			}
			out[userID] = append(out[userID], id)
		}
	}
	for userID := range out {
		sortCardIDs(out[userID])
	}
	return out
}

func sortedCards(set cardSet) []catalog.CardID {
	out := make([]catalog.CardID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sortCardIDs(out)
	return out
}

func sortCardIDs(ids []catalog.CardID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
