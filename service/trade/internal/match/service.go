package match

import (
	"context"
	"log/slog"

	"PocketTrade/service/trade/internal/lists"
	"github.com/google/uuid"
)

// Finder e' il contratto del motore di matching.
type Finder interface {
	FindMatches(ctx context.Context, userID uuid.UUID, q Query) (*Result, error)
}

// Partner e' un candidato arricchito con il profilo pubblico.
type Partner struct {
	Candidate
	Username string `json:"username"`
	FriendID string `json:"friend_id"`
}

// Page e' il risultato presentabile al client.
type Page struct {
	Partners   []Partner     `json:"partners"`
	Total      int           `json:"total"`
	Offset     int           `json:"offset"`
	NextOffset int           `json:"next_offset"`
	HasMore    bool          `json:"has_more"`
	Dropped    []DroppedCard `json:"dropped,omitempty"`
	Degraded   bool          `json:"degraded"`
}

// Service unisce motore e profili. Un errore sui profili non blocca i match.
type Service struct {
	finder   Finder
	profiles lists.ProfileReader
	logger   *slog.Logger
}

func NewService(logger *slog.Logger, finder Finder, profiles lists.ProfileReader) *Service {
	return &Service{finder: finder, profiles: profiles, logger: logger}
}

// Matches calcola la pagina richiesta e aggiunge username e friend id dei partner.
func (s *Service) Matches(ctx context.Context, userID uuid.UUID, q Query) (*Page, error) {
	res, err := s.finder.FindMatches(ctx, userID, q)
	if err != nil {
		return nil, err
	}

	page := &Page{
		Partners:   make([]Partner, 0, len(res.Candidates)),
		Total:      res.Total,
		Offset:     res.Offset,
		NextOffset: res.NextOffset,
		HasMore:    res.HasMore,
		Dropped:    res.Dropped,
		Degraded:   res.Degraded,
	}
	if len(res.Candidates) == 0 {
		return page, nil
	}

	ids := make([]uuid.UUID, len(res.Candidates))
	for i, c := range res.Candidates {
		ids[i] = c.PartnerID
	}
	profiles, err := s.profiles.ProfilesByIDs(ctx, ids)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("profili partner non disponibili", "user_id", userID, "err", err)
		page.Degraded = true
		profiles = nil
	}

	for _, c := range res.Candidates {
		p := Partner{Candidate: c}
		if profile, ok := profiles[c.PartnerID]; ok {
			p.Username = profile.Username
			p.FriendID = profile.FriendID
		}
		page.Partners = append(page.Partners, p)
	}
	return page, nil
}

// IsPartner dice se other compare tra i match correnti di userID.
func (s *Service) IsPartner(ctx context.Context, userID, other uuid.UUID) (bool, error) {
	res, err := s.finder.FindMatches(ctx, userID, Query{})
	if err != nil {
		return false, err
	}
	for _, c := range res.Candidates {
		if c.PartnerID == other {
			return true, nil
		}
	}
	return false, nil
}
