package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CardID e' la chiave composta "<set>-<number>", per esempio "A1-5" o "P-A-12".
type CardID string

// NewCardID compone l'identificativo a partire da set e numero.
func NewCardID(set string, number int) CardID {
	return CardID(set + "-" + strconv.Itoa(number))
}

// ParseCardID separa set e numero; il set puo' contenere trattini.
func ParseCardID(value string) (set string, number int, err error) {
	value = strings.TrimSpace(value)
	idx := strings.LastIndex(value, "-")
	if idx <= 0 || idx == len(value)-1 {
		return "", 0, fmt.Errorf("invalid card id %q", value)
	}
	number, err = strconv.Atoi(value[idx+1:])
	if err != nil || number <= 0 {
		return "", 0, fmt.Errorf("invalid card number in %q", value)
	}
	return value[:idx], number, nil
}

// Card e' la carta arricchita con nome, rarita' e set leggibili.
type Card struct {
	ID         CardID   `json:"id"`
	Set        string   `json:"set"`
	Number     int      `json:"number"`
	Rarity     string   `json:"rarity"`
	RarityCode string   `json:"rarityCode"`
	RarityName string   `json:"rarityFullName"`
	ImageName  string   `json:"imageName"`
	Name       string   `json:"name"`
	Slug       string   `json:"slug"`
	SetName    string   `json:"setName"`
	Packs      []string `json:"packs"`
	Tradeable  bool     `json:"tradeable"`
}

// Set descrive un'espansione del gioco.
type Set struct {
	Code        string   `json:"code"`
	ReleaseDate string   `json:"releaseDate"`
	Count       int      `json:"count,omitempty"`
	Name        string   `json:"name"`
	Packs       []string `json:"packs"`
}

// Catalog e' uno snapshot immutabile del dataset; si sostituisce, non si modifica.
type Catalog struct {
	cards     map[CardID]Card
	ids       []CardID
	rarities  map[string]string
	sets      map[string]Set
	fetchedAt time.Time
}

// Lookup ritorna la carta o ErrUnknownCard.
func (c *Catalog) Lookup(id CardID) (Card, error) {
	if c == nil {
		return Card{}, ErrCatalogUnavailable
	}
	card, ok := c.cards[id]
	if !ok {
		return Card{}, fmt.Errorf("%w: %s", ErrUnknownCard, id)
	}
	return card, nil
}

// CheckTradeable verifica che la carta esista e abbia una rarita' scambiabile.
func (c *Catalog) CheckTradeable(id CardID) error {
	card, err := c.Lookup(id)
	if err != nil {
		return err
	}
	if !IsTradeable(card.RarityCode) {
		return fmt.Errorf("%w: %s (%s)", ErrNotTradeable, id, card.RarityCode)
	}
	return nil
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.ids)
}

// Cards ritorna le carte ordinate per set e numero.
func (c *Catalog) Cards() []Card {
	out := make([]Card, 0, c.Len())
	for _, id := range c.ids {
		out = append(out, c.cards[id])
	}
	return out
}

// Rarities ritorna una copia della mappa codice -> etichetta.
func (c *Catalog) Rarities() map[string]string {
	out := make(map[string]string, len(c.rarities))
	for code, label := range c.rarities {
		out[code] = label
	}
	return out
}

// Sets ritorna i set ordinati per data di uscita e codice.
func (c *Catalog) Sets() []Set {
	out := make([]Set, 0, len(c.sets))
	for _, s := range c.sets {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReleaseDate != out[j].ReleaseDate {
			return out[i].ReleaseDate < out[j].ReleaseDate
		}
		return out[i].Code < out[j].Code
	})
	return out
}

func (c *Catalog) FetchedAt() time.Time {
	return c.fetchedAt
}

// New costruisce un catalogo da carte gia' arricchite (fixture e tool offline).
// Tradeable viene ricalcolato dal codice rarita'.
func New(cards []Card, rarities map[string]string) *Catalog {
	cat := &Catalog{
		cards:     make(map[CardID]Card, len(cards)),
		rarities:  rarities,
		sets:      map[string]Set{},
		fetchedAt: time.Now().UTC(),
	}
	if cat.rarities == nil {
		cat.rarities = map[string]string{}
	}
	for _, card := range cards {
		if card.ID == "" {
			card.ID = NewCardID(card.Set, card.Number)
		}
		if _, dup := cat.cards[card.ID]; dup {
			continue
		}
		card.Tradeable = IsTradeable(card.RarityCode)
		cat.cards[card.ID] = card
		cat.ids = append(cat.ids, card.ID)
	}
	sort.Slice(cat.ids, func(i, j int) bool {
		a, b := cat.cards[cat.ids[i]], cat.cards[cat.ids[j]]
		if a.Set != b.Set {
			return a.Set < b.Set
		}
		return a.Number < b.Number
	})
	return cat
}
