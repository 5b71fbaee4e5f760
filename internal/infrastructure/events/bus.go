// Package events carries application events (file changes, manual triggers) from their
// sources to the trigger service over a watermill pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/doeshing/shcmd/internal/domain"
	"github.com/doeshing/shcmd/internal/ports"
)

// Topic is the watermill topic all events are published on.
const Topic = "shcmd.events"

// Bus publishes domain events as JSON messages on an in-process gochannel.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger ports.Logger

	mu     sync.Mutex
	closed bool
}

// NewBus creates a bus. logger may be nil.
func NewBus(logger ports.Logger) *Bus {
	var adapter watermill.LoggerAdapter = watermill.NopLogger{}
	if logger != nil {
		adapter = loggerAdapter{logger: logger}
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer: 64,
				Persistent:          false,
			},
			adapter,
		),
		logger: logger,
	}
}

// Publish implements ports.EventPublisher.
func (b *Bus) Publish(_ context.Context, event domain.Event) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return fmt.Errorf("publish %s: bus is closed", event.Type)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("type", string(event.Type))
	return b.pubsub.Publish(Topic, msg)
}

// Subscribe implements ports.EventSubscriber. The channel closes when ctx is done or the
// bus is closed. Undecodable messages are logged and dropped.
func (b *Bus) Subscribe(ctx context.Context) (<-chan domain.Event, error) {
	messages, err := b.pubsub.Subscribe(ctx, Topic)
	if err != nil {
		return nil, err
	}

	out := make(chan domain.Event)
	go func() {
		defer close(out)
		for msg := range messages {
			var event domain.Event
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				if b.logger != nil {
					b.logger.Warn("dropping malformed event", map[string]interface{}{"uuid": msg.UUID, "error": err.Error()})
				}
				msg.Ack()
				continue
			}
			msg.Ack()
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close stops every subscription.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.pubsub.Close()
}

// loggerAdapter routes watermill's logs to ports.Logger.
type loggerAdapter struct {
	logger ports.Logger
	fields watermill.LogFields
}

func (l loggerAdapter) merge(fields watermill.LogFields) map[string]interface{} {
	return map[string]interface{}(l.fields.Add(fields))
}

func (l loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	l.logger.Error(msg, err, l.merge(fields))
}

func (l loggerAdapter) Info(msg string, fields watermill.LogFields) {
	l.logger.Debug(msg, l.merge(fields))
}

func (l loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	l.logger.Debug(msg, l.merge(fields))
}

func (l loggerAdapter) Trace(string, watermill.LogFields) {}

func (l loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return loggerAdapter{logger: l.logger, fields: l.fields.Add(fields)}
}

var (
	_ ports.EventPublisher  = (*Bus)(nil)
	_ ports.EventSubscriber = (*Bus)(nil)
)
