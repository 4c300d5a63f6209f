// Package grpcserver hosts the gRPC live transport: a Live service whose
// Subscribe stream mirrors the WebSocket broadcast feed and whose Post RPC
// submits a {channel, post} object, plus grpc.health.v1 and reflection.
//
// Example:
//
//	s := grpcserver.New(rt, svc, bc, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":3001")
package grpcserver
