package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/oceanview/internal/logger"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	brokers    []string
	writer     messageWriter
	log        *logger.Logger
	maxRetries int
	backoff    time.Duration
}

type ProducerOption func(*Producer)

func WithRetries(maxRetries int, backoff time.Duration) ProducerOption {
	return func(p *Producer) {
		p.maxRetries = maxRetries
		p.backoff = backoff
	}
}

func WithLogger(log *logger.Logger) ProducerOption {
	return func(p *Producer) {
		p.log = log
	}
}

func NewProducer(brokers []string, opts ...ProducerOption) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return newProducer(brokers, writer, opts...)
}

func newProducer(brokers []string, writer messageWriter, opts ...ProducerOption) *Producer {
	p := &Producer{
		brokers:    brokers,
		writer:     writer,
		log:        logger.Nop(),
		maxRetries: 1,
		backoff:    500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.maxRetries < 1 {
		p.maxRetries = 1
	}
	return p
}

// Publish marshals payload to JSON and writes it to topic, retrying with a
// linear backoff. Messages with the same key land on the same partition.
func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	var lastErr error
	for i := 0; i < p.maxRetries; i++ {
		if lastErr = p.writer.WriteMessages(ctx, message); lastErr == nil {
			p.log.LogKafka("PUBLISH", topic, "key="+key)
			return nil
		}
		p.log.Warn("KAFKA", fmt.Sprintf("publish attempt %d to %s failed: %v", i+1, topic, lastErr))

		if i < p.maxRetries-1 {
			select {
			case <-ctx.Done():
				return errors.Join(lastErr, ctx.Err())
			case <-time.After(time.Duration(i+1) * p.backoff):
			}
		}
	}
	return fmt.Errorf("failed to write message to Kafka after %d attempts: %w", p.maxRetries, lastErr)
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and reads the partition list.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}

	p.log.LogKafka("CONNECT", p.brokers[0], fmt.Sprintf("%d partitions visible", len(partitions)))
	return nil
}
