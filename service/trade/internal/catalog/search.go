package catalog

import (
	"strings"

	"github.com/gosimple/slug"
)

// Filter seleziona carte per rarita', set e testo libero.
type Filter struct {
	Rarities      []string
	Sets          []string
	Query         string
	TradeableOnly bool
}

// Search applica il filtro mantenendo l'ordine del catalogo.
func (c *Catalog) Search(f Filter) []Card {
	rarities := toSet(f.Rarities)
	sets := toSet(f.Sets)
	query := slug.Make(f.Query)
	rawQuery := strings.ToUpper(strings.TrimSpace(f.Query))

	out := []Card{}
	for _, id := range c.ids {
		card := c.cards[id]
		if f.TradeableOnly && !card.Tradeable {
			continue
		}
		if len(rarities) > 0 {
			if _, ok := rarities[card.RarityCode]; !ok {
				continue
			}
		}
		if len(sets) > 0 {
			if _, ok := sets[card.Set]; !ok {
				continue
			}
		}
		if query != "" && !matchesQuery(card, query, rawQuery) {
			continue
		}
		out = append(out, card)
	}
	return out
}

func matchesQuery(card Card, query, rawQuery string) bool {
	if strings.ToUpper(string(card.ID)) == rawQuery {
		return true
	}
	return strings.Contains(card.Slug, query) || strings.Contains(slug.Make(card.Name), query)
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out[v] = struct{}{}
		}
	}
	return out
}
