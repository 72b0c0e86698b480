package tradev1

import (
	"context"

	"PocketTrade/pkg/grpcx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	TradeService_FindMatches_FullMethodName = "/trade.v1.TradeService/FindMatches"
	TradeService_GetMyLists_FullMethodName  = "/trade.v1.TradeService/GetMyLists"
	TradeService_UpdateLists_FullMethodName = "/trade.v1.TradeService/UpdateLists"
)

// TradeServiceClient e' il client di TradeService. Ogni chiamata usa il codec JSON.
type TradeServiceClient interface {
	FindMatches(ctx context.Context, in *FindMatchesRequest, opts ...grpc.CallOption) (*FindMatchesResponse, error)
	GetMyLists(ctx context.Context, in *GetMyListsRequest, opts ...grpc.CallOption) (*GetMyListsResponse, error)
	UpdateLists(ctx context.Context, in *UpdateListsRequest, opts ...grpc.CallOption) (*UpdateListsResponse, error)
}

type tradeServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewTradeServiceClient(cc grpc.ClientConnInterface) TradeServiceClient {
	return &tradeServiceClient{cc: cc}
}

func (c *tradeServiceClient) FindMatches(ctx context.Context, in *FindMatchesRequest, opts ...grpc.CallOption) (*FindMatchesResponse, error) {
	out := new(FindMatchesResponse)
	if err := c.cc.Invoke(ctx, TradeService_FindMatches_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tradeServiceClient) GetMyLists(ctx context.Context, in *GetMyListsRequest, opts ...grpc.CallOption) (*GetMyListsResponse, error) {
	out := new(GetMyListsResponse)
	if err := c.cc.Invoke(ctx, TradeService_GetMyLists_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tradeServiceClient) UpdateLists(ctx context.Context, in *UpdateListsRequest, opts ...grpc.CallOption) (*UpdateListsResponse, error) {
	out := new(UpdateListsResponse)
	if err := c.cc.Invoke(ctx, TradeService_UpdateLists_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withJSON(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(grpcx.JSONCodecName)}, opts...)
}

// TradeServiceServer e' il lato server di TradeService.
type TradeServiceServer interface {
	FindMatches(context.Context, *FindMatchesRequest) (*FindMatchesResponse, error)
	GetMyLists(context.Context, *GetMyListsRequest) (*GetMyListsResponse, error)
	UpdateLists(context.Context, *UpdateListsRequest) (*UpdateListsResponse, error)
	mustEmbedUnimplementedTradeServiceServer()
}

// UnimplementedTradeServiceServer va embeddato per compatibilita' in avanti.
type UnimplementedTradeServiceServer struct{}

func (UnimplementedTradeServiceServer) FindMatches(context.Context, *FindMatchesRequest) (*FindMatchesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method FindMatches not implemented")
}

func (UnimplementedTradeServiceServer) GetMyLists(context.Context, *GetMyListsRequest) (*GetMyListsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetMyLists not implemented")
}

func (UnimplementedTradeServiceServer) UpdateLists(context.Context, *UpdateListsRequest) (*UpdateListsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateLists not implemented")
}

func (UnimplementedTradeServiceServer) mustEmbedUnimplementedTradeServiceServer() {}

func RegisterTradeServiceServer(s grpc.ServiceRegistrar, srv TradeServiceServer) {
	s.RegisterService(&TradeService_ServiceDesc, srv)
}

func _TradeService_FindMatches_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(FindMatchesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TradeServiceServer).FindMatches(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TradeService_FindMatches_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TradeServiceServer).FindMatches(ctx, req.(*FindMatchesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TradeService_GetMyLists_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetMyListsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TradeServiceServer).GetMyLists(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TradeService_GetMyLists_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TradeServiceServer).GetMyLists(ctx, req.(*GetMyListsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TradeService_UpdateLists_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UpdateListsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TradeServiceServer).UpdateLists(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TradeService_UpdateLists_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TradeServiceServer).UpdateLists(ctx, req.(*UpdateListsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// TradeService_ServiceDesc descrive il servizio per grpc.Server.
var TradeService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "trade.v1.TradeService",
	HandlerType: (*TradeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "FindMatches", Handler: _TradeService_FindMatches_Handler},
		{MethodName: "GetMyLists", Handler: _TradeService_GetMyLists_Handler},
		{MethodName: "UpdateLists", Handler: _TradeService_UpdateLists_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "trade/v1/trade.proto",
}
