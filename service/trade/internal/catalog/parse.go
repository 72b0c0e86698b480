package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/gosimple/slug"
)

// Snapshot contiene i tre documenti JSON cosi' come arrivano dalla sorgente.
// E' il formato salvato in cache.
type Snapshot struct {
	Cards     json.RawMessage `json:"cards"`
	Sets      json.RawMessage `json:"sets"`
	Rarity    json.RawMessage `json:"rarity"`
	FetchedAt time.Time       `json:"fetched_at"`
}

type rawCard struct {
	Set        string `json:"set"`
	Number     int    `json:"number"`
	Rarity     string `json:"rarity"`
	RarityCode string `json:"rarityCode"`
	ImageName  string `json:"imageName"`
	Label      struct {
		Slug string `json:"slug"`
		Eng  string `json:"eng"`
	} `json:"label"`
	Packs []string `json:"packs"`
}

type rawSet struct {
	Code        string `json:"code"`
	ReleaseDate string `json:"releaseDate"`
	Count       int    `json:"count"`
	Label       struct {
		En string `json:"en"`
	} `json:"label"`
	Packs []string `json:"packs"`
}

// Parse costruisce il catalogo arricchito dallo snapshot.
// Record senza set o con numero non positivo vengono scartati; per id duplicati vince il primo.
func Parse(snap Snapshot) (*Catalog, error) {
	var cards []rawCard
	if err := json.Unmarshal(snap.Cards, &cards); err != nil {
		return nil, fmt.Errorf("decode cards: %w", err)
	}

	var sets []rawSet
	if len(snap.Sets) > 0 {
		if err := json.Unmarshal(snap.Sets, &sets); err != nil {
			return nil, fmt.Errorf("decode sets: %w", err)
		}
	}

	rarities := map[string]string{}
	if len(snap.Rarity) > 0 {
		if err := json.Unmarshal(snap.Rarity, &rarities); err != nil {
			return nil, fmt.Errorf("decode rarity: %w", err)
		}
	}

	cat := &Catalog{
		cards:     make(map[CardID]Card, len(cards)),
		ids:       make([]CardID, 0, len(cards)),
		rarities:  rarities,
		sets:      make(map[string]Set, len(sets)),
		fetchedAt: snap.FetchedAt,
	}

	for _, s := range sets {
		if s.Code == "" {
			continue
		}
		name := s.Label.En
		if name == "" {
			name = s.Code
		}
		cat.sets[s.Code] = Set{Code: s.Code, ReleaseDate: s.ReleaseDate, Count: s.Count, Name: name, Packs: s.Packs}
	}

	skipped := 0
	for _, rc := range cards {
		if rc.Set == "" || rc.Number <= 0 {
			skipped++
			continue
		}
		id := NewCardID(rc.Set, rc.Number)
		if _, dup := cat.cards[id]; dup {
			slog.Warn("card duplicata nel catalogo", "card_id", id)
			continue
		}

		rarityName := rarities[rc.RarityCode]
		if rarityName == "" {
			rarityName = rc.Rarity
		}
		setName := rc.Set
		if s, ok := cat.sets[rc.Set]; ok {
			setName = s.Name
		}
		cardSlug := rc.Label.Slug
		if cardSlug == "" {
			cardSlug = slug.Make(rc.Label.Eng)
		}

		cat.cards[id] = Card{
			ID:         id,
			Set:        rc.Set,
			Number:     rc.Number,
			Rarity:     rc.Rarity,
			RarityCode: rc.RarityCode,
			RarityName: rarityName,
			ImageName:  rc.ImageName,
			Name:       rc.Label.Eng,
			Slug:       cardSlug,
			SetName:    setName,
			Packs:      rc.Packs,
			Tradeable:  IsTradeable(rc.RarityCode),
		}
		cat.ids = append(cat.ids, id)
	}
	if skipped > 0 {
		slog.Warn("record carta scartati", "count", skipped)
	}

	sort.Slice(cat.ids, func(i, j int) bool {
		a, b := cat.cards[cat.ids[i]], cat.cards[cat.ids[j]]
		if a.Set != b.Set {
			return a.Set < b.Set
		}
		return a.Number < b.Number
	})

	return cat, nil
}
