package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of kafka.Writer used for publishing.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer messageWriter
	logger zerolog.Logger
}

// NewKafkaPublisher creates a publisher that writes events to a Kafka topic,
// keyed by order so events of one order stay ordered.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) Publisher {
	logger = logger.With().Str("component", "kafka-publisher").Logger()

	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}

	logger.Info().
		Str("topic", topic).
		Strs("brokers", brokers).
		Msg("kafka publisher initialised")

	return &kafkaPublisher{writer: w, logger: logger}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event PaymentEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID.String()),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error().Err(err).Str("type", event.Type).Msg("failed to write event to kafka")
		return fmt.Errorf("failed to write event to kafka: %w", err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}
