package channelsvc

import (
	"context"
	"errors"

	"github.com/cis1951/lec8-backend/internal/broadcast"
	"github.com/cis1951/lec8-backend/internal/channelstore"
	"github.com/cis1951/lec8-backend/internal/post"
	"github.com/cis1951/lec8-backend/internal/postlog"
	"github.com/cis1951/lec8-backend/internal/runtime"
	"github.com/cis1951/lec8-backend/pkg/log"
)

// ChannelWithPosts is the listing shape of a channel.
type ChannelWithPosts struct {
	channelstore.Channel
	Posts []post.Post `json:"posts"`
}

type Options struct {
	// DefaultLimit caps ListPosts when the caller gives no positive limit.
	DefaultLimit int
}

type Service struct {
	rt     *runtime.Runtime
	bc     *broadcast.Broadcaster
	logger log.Logger
	limit  int
}

func New(rt *runtime.Runtime, bc *broadcast.Broadcaster, logger log.Logger, opts Options) *Service {
	if logger == nil {
		logger = log.NewNop()
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = postlog.DefaultLimit
	}
	return &Service{rt: rt, bc: bc, logger: logger.WithComponent("channels"), limit: opts.DefaultLimit}
}

func (s *Service) ListChannels(ctx context.Context) ([]channelstore.Channel, error) {
	chs, err := s.rt.Channels().List(ctx)
	return chs, storeErr("list channels", err)
}

// ListChannelsWithPosts returns every channel with its full post list. A
// channel deleted between the listing and the read shows no posts.
func (s *Service) ListChannelsWithPosts(ctx context.Context) ([]ChannelWithPosts, error) {
	chs, err := s.ListChannels(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ChannelWithPosts, 0, len(chs))
	for _, ch := range chs {
		posts, err := s.rt.Logs().Open(ch.Name).ListAll()
		if errors.Is(err, postlog.ErrLogNotFound) {
			continue
		}
		if err != nil {
			return nil, storeErr("list posts", err)
		}
		out = append(out, ChannelWithPosts{Channel: ch, Posts: posts})
	}
	return out, nil
}

func (s *Service) CreateChannel(ctx context.Context, name string) (channelstore.Channel, error) {
	if name == "" {
		return channelstore.Channel{}, ErrNameRequired
	}
	ch, err := s.rt.Channels().Create(ctx, name)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return channelstore.Channel{}, err
		}
		return channelstore.Channel{}, storeErr("create channel", err)
	}
	s.logger.Info("channel created", log.Str("channel", name), log.Str("id", ch.ID))
	return ch, nil
}

func (s *Service) DeleteChannel(ctx context.Context, name string) error {
	if name == "" {
		return ErrNameRequired
	}
	if err := s.rt.Channels().Delete(ctx, name); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return storeErr("delete channel", err)
	}
	s.logger.Info("channel deleted", log.Str("channel", name))
	return nil
}

// FindChannel returns ErrNotFound when name is not registered.
func (s *Service) FindChannel(ctx context.Context, name string) (channelstore.Channel, error) {
	ch, ok, err := s.rt.Channels().Find(ctx, name)
	if err != nil {
		return channelstore.Channel{}, storeErr("find channel", err)
	}
	if !ok {
		return channelstore.Channel{}, ErrNotFound
	}
	return ch, nil
}
