package channelsvc

import (
	"context"
	"errors"

	"github.com/cis1951/lec8-backend/internal/post"
	"github.com/cis1951/lec8-backend/internal/postlog"
	"github.com/cis1951/lec8-backend/pkg/log"
)

type submitOptions struct {
	exclude string
	raw     []byte
}

// SubmitOption tunes how an accepted post is broadcast.
type SubmitOption func(*submitOptions)

// ExcludeSubscriber keeps the broadcast from reaching the subscriber id,
// typically the connection the post arrived on.
func ExcludeSubscriber(id string) SubmitOption {
	return func(o *submitOptions) { o.exclude = id }
}

// BroadcastRaw publishes frame as-is instead of the normalized post JSON.
func BroadcastRaw(frame []byte) SubmitOption {
	return func(o *submitOptions) { o.raw = frame }
}

// SubmitPost validates raw, appends it to channel's log and publishes it.
// Broadcast problems never fail the call.
func (s *Service) SubmitPost(ctx context.Context, channel string, raw []byte, opts ...SubmitOption) (post.Post, error) {
	if channel == "" {
		return post.Post{}, ErrNameRequired
	}
	if _, err := s.FindChannel(ctx, channel); err != nil {
		return post.Post{}, err
	}
	if len(raw) == 0 {
		return post.Post{}, ErrPostRequired
	}
	p, err := post.Validate(raw)
	if err != nil {
		return post.Post{}, err
	}
	if err := s.rt.Logs().Open(channel).Append(ctx, p); err != nil {
		return post.Post{}, storeErr("append post", err)
	}

	var o submitOptions
	for _, opt := range opts {
		opt(&o)
	}
	payload := o.raw
	if payload == nil {
		payload = p.Encode()
	}
	if s.bc != nil {
		n := s.bc.Publish(payload, o.exclude)
		s.logger.Debug("post published", log.Str("channel", channel), log.Str("post", p.ID), log.Int("subscribers", n))
	}
	return p, nil
}

// ListPosts returns up to limit posts of channel in createdAt order.
// limit <= 0 means the configured default.
func (s *Service) ListPosts(ctx context.Context, channel string, limit int) ([]post.Post, error) {
	if channel == "" {
		return nil, ErrNameRequired
	}
	if _, err := s.FindChannel(ctx, channel); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.limit
	}
	posts, err := s.rt.Logs().Open(channel).List(limit)
	if errors.Is(err, postlog.ErrLogNotFound) {
		// deleted after the lookup
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("list posts", err)
	}
	return posts, nil
}
