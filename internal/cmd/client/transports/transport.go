package transports

import (
	"context"

	"github.com/cis1951/lec8-backend/internal/post"
)

// Channel is a channel as listed by the server.
type Channel struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Posts []post.Post `json:"posts"`
}

// ChannelsTransport abstracts the request/response API used by the CLI.
type ChannelsTransport interface {
	ListChannels(ctx context.Context) ([]Channel, error)
	CreateChannel(ctx context.Context, name string) (Channel, error)
	DeleteChannel(ctx context.Context, name string) error
	ListPosts(ctx context.Context, channel string, limit int) ([]post.Post, error)
	SendPost(ctx context.Context, channel string, p post.Post) error
}

// TailRequest describes a live subscription.
type TailRequest struct {
	// Filter is an optional CEL expression evaluated server-side.
	Filter string
	// Limit stops after N payloads; 0 means until cancelled.
	Limit int
}

// LiveTransport abstracts the push feed.
type LiveTransport interface {
	Tail(ctx context.Context, req TailRequest, onPayload func(payload []byte) error) error
}
