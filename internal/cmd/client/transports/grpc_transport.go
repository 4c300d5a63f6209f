package transports

import (
	"context"
	"errors"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/encoding/protojson"

	grpcserver "github.com/cis1951/lec8-backend/internal/server/grpc"
)

// DialFunc opens a client connection to the gRPC endpoint.
type DialFunc func(ctx context.Context) (*grpc.ClientConn, error)

// GrpcTransport tails the Live service.
type GrpcTransport struct {
	dial DialFunc
}

func NewGrpcTransport(dial DialFunc) *GrpcTransport { return &GrpcTransport{dial: dial} }

func (t *GrpcTransport) Tail(ctx context.Context, req TailRequest, onPayload func([]byte) error) error {
	conn, err := t.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	if req.Filter != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, grpcserver.FilterHeader, req.Filter)
	}
	stream, err := grpcserver.NewLiveClient(conn).Subscribe(ctx)
	if err != nil {
		return err
	}
	for n := 0; req.Limit <= 0 || n < req.Limit; n++ {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		b, err := protojson.Marshal(msg)
		if err != nil {
			return err
		}
		if err := onPayload(b); err != nil {
			return err
		}
	}
	return nil
}
