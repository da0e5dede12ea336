package messaging

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
)

// Handler processes one decoded envelope.
type Handler func(ctx context.Context, msg Message) error

// Consume subscribes to channel and feeds every envelope to handler until
// ctx is cancelled or the subscription closes. Undecodable payloads and
// handler failures are logged and skipped.
func Consume(ctx context.Context, broker Broker, channel string, logger *zerolog.Logger, handler Handler) error {
	msgChan, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-msgChan:
			if !ok {
				return nil
			}
			var msg Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				logger.Warn().Err(err).Str("channel", channel).Msg("dropping undecodable message")
				continue
			}
			if err := handler(ctx, msg); err != nil {
				logger.Error().Err(err).Str("type", msg.Type).Msg("message handler failed")
			}
		}
	}
}
