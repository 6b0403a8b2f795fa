package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/oceanview/internal/logger"
	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
	log    *logger.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *logger.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
}

// ConsumeEvents decodes every message as a LifecycleEvent. Messages that do not
// decode are logged and skipped.
func (c *Consumer) ConsumeEvents(ctx context.Context, handler func(context.Context, LifecycleEvent) error) error {
	return c.Consume(ctx, func(ctx context.Context, msg kafka.Message) error {
		event, ok := DecodeEvent(msg, c.log)
		if !ok {
			return nil
		}
		return handler(ctx, event)
	})
}

func DecodeEvent(msg kafka.Message, log *logger.Logger) (LifecycleEvent, bool) {
	var event LifecycleEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Warn("KAFKA", "decode event error: "+err.Error())
		return LifecycleEvent{}, false
	}
	return event, true
}

// Retrying wraps an event handler with up to attempts tries and a linear
// backoff. An event that still fails is logged and dropped so one bad event
// does not stall the partition.
func Retrying(handler func(context.Context, LifecycleEvent) error, attempts int, backoff time.Duration, log *logger.Logger) func(context.Context, LifecycleEvent) error {
	if attempts < 1 {
		attempts = 1
	}
	return func(ctx context.Context, event LifecycleEvent) error {
		var lastErr error
		for i := 0; i < attempts; i++ {
			if lastErr = handler(ctx, event); lastErr == nil {
				return nil
			}
			log.Warn("KAFKA", fmt.Sprintf("handle %s %s attempt %d failed: %v", event.Type, event.ID, i+1, lastErr))

			if i < attempts-1 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Duration(i+1) * backoff):
				}
			}
		}
		log.Error("KAFKA", fmt.Sprintf("dropping %s %s after %d attempts: %v", event.Type, event.ID, attempts, lastErr))
		return nil
	}
}
