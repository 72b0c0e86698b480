// Package tradev1 contiene i messaggi di trade.proto.
// Viaggiano con il codec JSON di pkg/grpcx, i nomi JSON seguono quelli del .proto.
package tradev1

type FindMatchesRequest struct {
	Offset  int32  `json:"offset,omitempty"`
	Limit   int32  `json:"limit,omitempty"`
	Ranking string `json:"ranking,omitempty"`
}

func (x *FindMatchesRequest) GetOffset() int32 {
	if x == nil {
		return 0
	}
	return x.Offset
}

func (x *FindMatchesRequest) GetLimit() int32 {
	if x == nil {
		return 0
	}
	return x.Limit
}

func (x *FindMatchesRequest) GetRanking() string {
	if x == nil {
		return ""
	}
	return x.Ranking
}

type Partner struct {
	PartnerId        string   `json:"partner_id,omitempty"`
	Username         string   `json:"username,omitempty"`
	FriendId         string   `json:"friend_id,omitempty"`
	WantsFromPartner []string `json:"wants_from_partner,omitempty"`
	WantsFromSelf    []string `json:"wants_from_self,omitempty"`
	Score            int32    `json:"score,omitempty"`
}

type DroppedCard struct {
	PartnerId string `json:"partner_id,omitempty"`
	List      string `json:"list,omitempty"`
	CardId    string `json:"card_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type FindMatchesResponse struct {
	Partners   []*Partner     `json:"partners,omitempty"`
	Total      int32          `json:"total,omitempty"`
	NextOffset int32          `json:"next_offset,omitempty"`
	HasMore    bool           `json:"has_more,omitempty"`
	Degraded   bool           `json:"degraded,omitempty"`
	Dropped    []*DroppedCard `json:"dropped,omitempty"`
}

type GetMyListsRequest struct{}

type GetMyListsResponse struct {
	UserId    string   `json:"user_id,omitempty"`
	Username  string   `json:"username,omitempty"`
	FriendId  string   `json:"friend_id,omitempty"`
	Wishlist  []string `json:"wishlist,omitempty"`
	TradeList []string `json:"trade_list,omitempty"`
}

type ListDiff struct {
	ToAdd    []string `json:"to_add,omitempty"`
	ToRemove []string `json:"to_remove,omitempty"`
}

func (x *ListDiff) GetToAdd() []string {
	if x == nil {
		return nil
	}
	return x.ToAdd
}

func (x *ListDiff) GetToRemove() []string {
	if x == nil {
		return nil
	}
	return x.ToRemove
}

type UpdateListsRequest struct {
	Wishlist  *ListDiff `json:"wishlist,omitempty"`
	TradeList *ListDiff `json:"trade_list,omitempty"`
}

func (x *UpdateListsRequest) GetWishlist() *ListDiff {
	if x == nil {
		return nil
	}
	return x.Wishlist
}

func (x *UpdateListsRequest) GetTradeList() *ListDiff {
	if x == nil {
		return nil
	}
	return x.TradeList
}

type UpdateListsResponse struct{}
