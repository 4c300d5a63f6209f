package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cis1951/lec8-backend/internal/broadcast"
	"github.com/cis1951/lec8-backend/internal/livefilter"
	"github.com/cis1951/lec8-backend/internal/post"
	channelsvc "github.com/cis1951/lec8-backend/internal/services/channels"
	"github.com/cis1951/lec8-backend/pkg/log"
)

type liveSvc struct {
	svc    *channelsvc.Service
	bc     *broadcast.Broadcaster
	logger log.Logger
	// quit ends open Subscribe streams on shutdown.
	quit chan struct{}
}

var errStreamGone = errors.New("stream gone")

// streamSubscriber hands payloads to the RPC goroutine, the only caller of
// stream.Send.
type streamSubscriber struct {
	id     string
	filter livefilter.Filter
	out    chan []byte
	done   chan struct{}
	open   atomic.Bool
}

func (s *streamSubscriber) ID() string  { return s.id }
func (s *streamSubscriber) Ready() bool { return s.open.Load() }

func (s *streamSubscriber) Send(payload []byte) error {
	if !s.filter.Match(payload) {
		return nil
	}
	select {
	case s.out <- payload:
		return nil
	case <-s.done:
		return errStreamGone
	}
}

func firstMD(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(key); len(v) > 0 {
		return v[0]
	}
	return ""
}

func (l *liveSvc) Subscribe(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()
	filter, err := livefilter.Compile(firstMD(ctx, FilterHeader))
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	sub := &streamSubscriber{id: uuid.NewString(), filter: filter, out: make(chan []byte, 1), done: make(chan struct{})}
	if err := stream.SendHeader(metadata.Pairs(SubscriberIDHeader, sub.id)); err != nil {
		return err
	}
	sub.open.Store(true)
	if err := l.bc.Register(sub); err != nil {
		return status.Error(codes.Unavailable, err.Error())
	}
	defer func() {
		sub.open.Store(false)
		close(sub.done)
		l.bc.Unregister(sub.id)
		l.logger.Debug("grpc subscriber left", log.Str("subscriber", sub.id))
	}()
	joined := []log.Field{log.Str("subscriber", sub.id)}
	if filter.Enabled() {
		joined = append(joined, log.Str("filter", filter.String()))
	}
	l.logger.Debug("grpc subscriber joined", joined...)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.quit:
			return nil
		case p := <-sub.out:
			msg := &structpb.Struct{}
			if err := protojson.Unmarshal(p, msg); err != nil {
				l.logger.Warn("grpc payload not an object", log.Str("subscriber", sub.id), log.Err(err))
				continue
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}

// Post accepts a {channel, post} object. Unlike the WebSocket path, failures
// are reported to the caller as status codes.
func (l *liveSvc) Post(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	frame, err := json.Marshal(in.AsMap())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := l.svc.HandleLiveMessage(ctx, firstMD(ctx, SubscriberIDHeader), frame); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func toStatus(err error) error {
	var ve *post.ValidationError
	switch {
	case errors.Is(err, channelsvc.ErrNotFound):
		return status.Error(codes.NotFound, "Channel not found")
	case errors.Is(err, channelsvc.ErrNameRequired):
		return status.Error(codes.InvalidArgument, "Channel name is required")
	case errors.Is(err, channelsvc.ErrPostRequired):
		return status.Error(codes.InvalidArgument, "Post is required")
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Reason)
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
