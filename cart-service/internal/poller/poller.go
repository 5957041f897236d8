package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/kanap/cart-service/internal/manager"
	"github.com/fjod/kanap/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	DefaultTopic = "kanap-orders"
	groupID      = "kanap-cart-service"
	retryDelay   = time.Second

	// OriginHeader names the producer of an order event. Events produced by
	// this service are skipped: the order handler resets the cart before
	// publishing.
	OriginHeader  = "origin"
	ServiceOrigin = "kanap-cart-service"
)

var ErrInvalidMessage = errors.New("invalid order message")

// ManagerFactory builds the cart manager of one session.
type ManagerFactory interface {
	ForSession(sessionID string) (*manager.CartManager, error)
}

// OrderPlaced is published once an order has been accepted.
type OrderPlaced struct {
	SessionID string `json:"session_id"`
	OrderID   string `json:"order_id"`
}

// Poller empties the cart of every session an order was placed for.
type Poller struct {
	reader   *kafka.Reader
	managers ManagerFactory
	log      *zap.Logger
}

func NewPoller(managers ManagerFactory, log *zap.Logger, topic string, brokers ...string) *Poller {
	if topic == "" {
		topic = DefaultTopic
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{
		reader:   reader,
		managers: managers,
		log:      logger.OrNop(log).With(zap.String("topic", topic)),
	}
}

// Run consumes until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.log.Warn("error reading message", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(retryDelay):
			}
			continue
		}

		if err := p.handleMessage(ctx, m); err != nil {
			p.log.Error("failed to handle order message",
				zap.Int64("offset", m.Offset),
				zap.Error(err))
		}
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.log.Warn("error closing reader", zap.Error(err))
	}
}

func (p *Poller) handleMessage(ctx context.Context, m kafka.Message) error {
	if origin(m) == ServiceOrigin {
		p.log.Debug("skipping own order event", zap.Int64("offset", m.Offset))
		return nil
	}

	var msg OrderPlaced
	if err := json.Unmarshal(m.Value, &msg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	if msg.SessionID == "" {
		return fmt.Errorf("%w: missing session_id", ErrInvalidMessage)
	}

	mgr, err := p.managers.ForSession(msg.SessionID)
	if err != nil {
		return err
	}
	if err := mgr.ResetCart(ctx); err != nil {
		return fmt.Errorf("reset cart of session %s: %w", msg.SessionID, err)
	}

	p.log.Info("cart reset after order",
		zap.String("session", msg.SessionID),
		zap.String("order_id", msg.OrderID))
	return nil
}

func origin(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == OriginHeader {
			return string(h.Value)
		}
	}
	return ""
}
