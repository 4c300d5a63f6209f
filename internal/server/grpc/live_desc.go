package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Live service wire contract (chatd/v1/live.proto):
//
//	service Live {
//	  rpc Subscribe(google.protobuf.Empty) returns (stream google.protobuf.Struct);
//	  rpc Post(google.protobuf.Struct) returns (google.protobuf.Empty);
//	}
const (
	LiveServiceName         = "chatd.v1.Live"
	liveSubscribeFullMethod = "/chatd.v1.Live/Subscribe"
	livePostFullMethod      = "/chatd.v1.Live/Post"

	// SubscriberIDHeader carries the subscriber id: sent by the server as a
	// Subscribe response header, and by clients on Post to exclude themselves
	// from the rebroadcast.
	SubscriberIDHeader = "x-subscriber-id"
	// FilterHeader optionally carries a CEL filter on Subscribe.
	FilterHeader = "x-filter"
)

// LiveServer is the server API for the Live service.
type LiveServer interface {
	Subscribe(*emptypb.Empty, grpc.ServerStreamingServer[structpb.Struct]) error
	Post(context.Context, *structpb.Struct) (*emptypb.Empty, error)
}

func RegisterLiveServer(s grpc.ServiceRegistrar, srv LiveServer) {
	s.RegisterService(&liveServiceDesc, srv)
}

func liveSubscribeHandler(srv any, stream grpc.ServerStream) error {
	m := new(emptypb.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(LiveServer).Subscribe(m, &grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream})
}

func livePostHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LiveServer).Post(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: livePostFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LiveServer).Post(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var liveServiceDesc = grpc.ServiceDesc{
	ServiceName: LiveServiceName,
	HandlerType: (*LiveServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Post", Handler: livePostHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Subscribe", Handler: liveSubscribeHandler, ServerStreams: true},
	},
	Metadata: "chatd/v1/live.proto",
}

// LiveClient is the client API for the Live service.
type LiveClient struct {
	cc grpc.ClientConnInterface
}

func NewLiveClient(cc grpc.ClientConnInterface) *LiveClient { return &LiveClient{cc: cc} }

func (c *LiveClient) Subscribe(ctx context.Context, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &liveServiceDesc.Streams[0], liveSubscribeFullMethod, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(&emptypb.Empty{}); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *LiveClient) Post(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, livePostFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
