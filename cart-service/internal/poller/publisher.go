package poller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// Publisher announces orders accepted by this service to downstream
// consumers.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(topic string, brokers ...string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *Publisher) PublishOrderPlaced(ctx context.Context, sessionID, orderID string) error {
	payload, err := json.Marshal(OrderPlaced{SessionID: sessionID, OrderID: orderID})
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	// Keyed by session so events of one session stay ordered.
	msg := kafka.Message{
		Key:   []byte(sessionID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order_placed")},
			{Key: OriginHeader, Value: []byte(ServiceOrigin)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
