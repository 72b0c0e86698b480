package lists

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"PocketTrade/service/trade/internal/catalog"
	"github.com/google/uuid"
)

// FixtureUser e' un utente con le sue liste, nel formato dei file di fixture.
type FixtureUser struct {
	ID        uuid.UUID        `json:"id"`
	Username  string           `json:"username"`
	FriendID  string           `json:"friend_id"`
	Wishlist  []catalog.CardID `json:"wishlist"`
	TradeList []catalog.CardID `json:"trade_list"`
}

// Fixture popola uno store per mock-server e match-check.
type Fixture struct {
	Users []FixtureUser `json:"users"`
}

// ReadFixture legge un file JSON {"users": [...]}.
func ReadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return &f, nil
}

// Seed carica il fixture passando dalle stesse validazioni delle scritture reali.
// Liste lunghe vengono spezzate in batch da MaxBatchItems.
func (s *Service) Seed(ctx context.Context, f *Fixture) error {
	for _, u := range f.Users {
		if err := s.UpsertProfile(ctx, Profile{ID: u.ID, Username: u.Username, FriendID: u.FriendID}); err != nil {
			return fmt.Errorf("seed %s: %w", u.Username, err)
		}
		batch := Batch{Wishlist: Diff{Add: u.Wishlist}, TradeList: Diff{Add: u.TradeList}}
		for _, chunk := range ChunkBatch(batch, MaxBatchItems) {
			if err := s.SaveLists(ctx, u.ID, chunk); err != nil {
				return fmt.Errorf("seed %s: %w", u.Username, err)
			}
		}
	}
	s.logger.Info("fixture caricato", "users", len(f.Users))
	return nil
}
