package match

import (
	"context"
	"errors"

	"PocketTrade/pkg/grpcx"
	tradev1 "PocketTrade/proto/trade/v1"
	"PocketTrade/service/trade/internal/catalog"
	"PocketTrade/service/trade/internal/lists"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MatchLister ritorna i match paginati e arricchiti.
type MatchLister interface {
	Matches(ctx context.Context, userID uuid.UUID, q Query) (*Page, error)
}

// ListEditor e' il dominio delle liste visto dal handler.
type ListEditor interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*lists.Me, error)
	SaveLists(ctx context.Context, userID uuid.UUID, batch lists.Batch) error
}

// GRPCServer espone il trade-svc su gRPC.
// Qui si legge l'utente dalle metadata e si mappano gli errori in codici gRPC.
type GRPCServer struct {
	tradev1.UnimplementedTradeServiceServer
	matches MatchLister
	lists   ListEditor
}

func NewGRPCServer(matches MatchLister, editor ListEditor) *GRPCServer {
	return &GRPCServer{matches: matches, lists: editor}
}

func (s *GRPCServer) FindMatches(ctx context.Context, req *tradev1.FindMatchesRequest) (*tradev1.FindMatchesResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	userID, err := grpcx.UserIDFromContext(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}
	ranking, err := ParseRanking(req.GetRanking())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	limit := int(req.GetLimit())
	if limit == 0 {
		limit = DefaultPageSize
	}
	page, err := s.matches.Matches(ctx, userID, Query{
		Offset:  int(req.GetOffset()),
		Limit:   limit,
		Ranking: ranking,
	})
	if err != nil {
		return nil, statusFromError(err, "no matches could be computed right now")
	}

	resp := &tradev1.FindMatchesResponse{
		Partners:   make([]*tradev1.Partner, 0, len(page.Partners)),
		Total:      int32(page.Total),
		NextOffset: int32(page.NextOffset),
		HasMore:    page.HasMore,
		Degraded:   page.Degraded,
	}
	for _, p := range page.Partners {
		resp.Partners = append(resp.Partners, &tradev1.Partner{
			PartnerId:        p.PartnerID.String(),
			Username:         p.Username,
			FriendId:         p.FriendID,
			WantsFromPartner: cardStrings(p.WantsFromPartner),
			WantsFromSelf:    cardStrings(p.WantsFromSelf),
			Score:            int32(p.Score),
		})
	}
	for _, d := range page.Dropped {
		partner := ""
		if d.PartnerID != uuid.Nil {
			partner = d.PartnerID.String()
		}
		resp.Dropped = append(resp.Dropped, &tradev1.DroppedCard{
			PartnerId: partner,
			List:      d.List,
			CardId:    string(d.Card),
			Reason:    d.Reason,
		})
	}
	return resp, nil
}

func (s *GRPCServer) GetMyLists(ctx context.Context, req *tradev1.GetMyListsRequest) (*tradev1.GetMyListsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	userID, err := grpcx.UserIDFromContext(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	me, err := s.lists.GetMe(ctx, userID)
	if err != nil {
		return nil, statusFromError(err, "lists temporarily unavailable")
	}
	return &tradev1.GetMyListsResponse{
		UserId:    me.Profile.ID.String(),
		Username:  me.Profile.Username,
		FriendId:  me.Profile.FriendID,
		Wishlist:  cardStrings(me.Wishlist),
		TradeList: cardStrings(me.TradeList),
	}, nil
}

func (s *GRPCServer) UpdateLists(ctx context.Context, req *tradev1.UpdateListsRequest) (*tradev1.UpdateListsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	userID, err := grpcx.UserIDFromContext(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	batch := lists.Batch{
		Wishlist:  diffFromProto(req.GetWishlist()),
		TradeList: diffFromProto(req.GetTradeList()),
	}
	if err := s.lists.SaveLists(ctx, userID, batch); err != nil {
		return nil, statusFromError(err, "lists temporarily unavailable")
	}
	return &tradev1.UpdateListsResponse{}, nil
}

// statusFromError traduce gli errori di dominio. I messaggi interni non escono dal servizio.
func statusFromError(err error, unavailable string) error {
	var verr *lists.ValidationError
	switch {
	case errors.Is(err, ErrUserNotFound):
		return status.Error(codes.NotFound, "user not found")
	case errors.As(err, &verr):
		return status.Error(codes.InvalidArgument, verr.Error())
	case errors.Is(err, ErrInvalidQuery),
		errors.Is(err, catalog.ErrUnknownCard),
		errors.Is(err, catalog.ErrNotTradeable),
		errors.Is(err, lists.ErrBatchTooLarge),
		errors.Is(err, lists.ErrListConflict):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrStoreUnavailable), errors.Is(err, catalog.ErrCatalogUnavailable):
		return status.Error(codes.Unavailable, unavailable)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func cardStrings(ids []catalog.CardID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func diffFromProto(d *tradev1.ListDiff) lists.Diff {
	var out lists.Diff
	for _, id := range d.GetToAdd() {
		out.Add = append(out.Add, catalog.CardID(id))
	}
	for _, id := range d.GetToRemove() {
		out.Remove = append(out.Remove, catalog.CardID(id))
	}
	return out
}
