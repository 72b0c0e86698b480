package match

import (
	"fmt"
	"strings"

	"PocketTrade/service/trade/internal/catalog"
	"github.com/google/uuid"
)

// Candidate e' un partner con interesse reciproco: entrambe le direzioni sono non vuote.
type Candidate struct {
	PartnerID        uuid.UUID        `json:"partner_id"`
	WantsFromPartner []catalog.CardID `json:"wants_from_partner"`
	WantsFromSelf    []catalog.CardID `json:"wants_from_self"`
	Score            int              `json:"score"`
}

// Ranking sceglie l'ordinamento; il tie-break finale e' sempre il partner id.
type Ranking string

const (
	// RankByScore ordina per numero totale di carte scambiate.
	RankByScore Ranking = "score"
	// RankByBalance privilegia scambi equilibrati: min(|dare|, |avere|), poi score.
	RankByBalance Ranking = "balance"
)

// ParseRanking accetta "" come default (score).
func ParseRanking(value string) (Ranking, error) {
	switch Ranking(strings.ToLower(strings.TrimSpace(value))) {
	case "", RankByScore:
		return RankByScore, nil
	case RankByBalance:
		return RankByBalance, nil
	default:
		return "", fmt.Errorf("%w: unknown ranking %q", ErrInvalidQuery, value)
	}
}

// DefaultPageSize e' la pagina usata dalle API quando il client non indica un limite.
const DefaultPageSize = 20

// Query parametrizza una ricerca. Limit 0 significa tutti i risultati:
// le API pubbliche lo sostituiscono con DefaultPageSize, solo la CLI lo usa cosi'.
type Query struct {
	Offset  int
	Limit   int
	Ranking Ranking
}

// DroppedCard descrive una voce di lista ignorata perche' non valida.
// PartnerID e' uuid.Nil quando la voce appartiene al richiedente.
type DroppedCard struct {
	PartnerID uuid.UUID      `json:"partner_id"`
	List      string         `json:"list"`
	Card      catalog.CardID `json:"card"`
	Reason    string         `json:"reason"`
}

// Result e' la pagina richiesta del ranking completo.
type Result struct {
	UserID     uuid.UUID     `json:"user_id"`
	Candidates []Candidate   `json:"candidates"`
	Total      int           `json:"total"`
	Offset     int           `json:"offset"`
	NextOffset int           `json:"next_offset"`
	HasMore    bool          `json:"has_more"`
	Dropped    []DroppedCard `json:"dropped,omitempty"`
	// Degraded segnala che il ranking e' stato calcolato senza alcuni dati
	// (voci scartate o catalogo non disponibile).
	Degraded bool `json:"degraded"`
}
