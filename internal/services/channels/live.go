package channelsvc

import (
	"context"
	"encoding/json"

	"github.com/cis1951/lec8-backend/pkg/log"
)

// liveMessage is the data of a live "post" event.
type liveMessage struct {
	Channel string          `json:"channel"`
	Post    json.RawMessage `json:"post"`
}

// HandleLiveMessage accepts a {channel, post} frame from the live subscriber
// from. On success frame is rebroadcast verbatim to every other subscriber.
// Failures are logged and returned for the caller to drop; nothing is sent
// back to the originator.
func (s *Service) HandleLiveMessage(ctx context.Context, from string, frame []byte) error {
	var msg liveMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		s.logger.Warn("live message dropped", log.Str("subscriber", from), log.Str("reason", "undecodable frame"), log.Err(err))
		return err
	}
	if _, err := s.SubmitPost(ctx, msg.Channel, msg.Post, ExcludeSubscriber(from), BroadcastRaw(frame)); err != nil {
		s.logger.Warn("live message dropped", log.Str("subscriber", from), log.Str("channel", msg.Channel), log.Err(err))
		return err
	}
	return nil
}
