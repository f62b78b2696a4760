// Package eventbus carries bracket changes from the services to live subscribers.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	TopicGamesGenerated  = "games.generated"
	TopicResultsUpdated  = "results.updated"
	TopicTeamsProgressed = "teams.progressed"
)

// Topics lists every topic the services publish to.
var Topics = []string{TopicGamesGenerated, TopicResultsUpdated, TopicTeamsProgressed}

// Event is the envelope written to every topic.
type Event struct {
	TournamentID string          `json:"tournament_id"`
	Topic        string          `json:"topic"`
	At           time.Time       `json:"at"`
	Payload      json.RawMessage `json:"payload,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, topic, tournamentID string, payload any) error
}

// Bus is an in-process pub/sub. Subscribers only see events published after they subscribed.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

func New(logger *slog.Logger) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NewSlogLogger(logger)),
		logger: logger,
	}
}

func (b *Bus) Publish(ctx context.Context, topic, tournamentID string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", topic, err)
	}
	data, err := json.Marshal(Event{TournamentID: tournamentID, Topic: topic, At: time.Now().UTC(), Payload: raw})
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("tournament_id", tournamentID)
	msg.SetContext(ctx)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe delivers decoded events of topic to handle until ctx is done. Messages that
// fail to decode are acked and dropped.
func (b *Bus) Subscribe(ctx context.Context, topic string, handle func(Event)) error {
	messages, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	go func() {
		for msg := range messages {
			var ev Event
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				b.logger.Warn("dropping malformed event", slog.String("topic", topic), slog.Any("error", err))
				msg.Ack()
				continue
			}
			handle(ev)
			msg.Ack()
		}
	}()
	return nil
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// Discard is a Publisher that drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, string, string, any) error { return nil }
