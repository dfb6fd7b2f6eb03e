package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"orders/internal/config"
	"orders/internal/events"
)

const dialAttempts = 5

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends order events to a durable topic exchange.
type Publisher struct {
	conn     *amqp.Connection
	channel  Channel
	exchange string
	logger   *zap.Logger
	mu       sync.Mutex
}

// Dial connects to the broker, retrying with a growing pause, and declares
// the exchange.
func Dial(cfg config.RabbitMQConfig, logger *zap.Logger) (*Publisher, error) {
	if cfg.Exchange == "" {
		return nil, fmt.Errorf("exchange name cannot be empty")
	}

	var (
		conn *amqp.Connection
		err  error
	)
	for i := 0; i < dialAttempts; i++ {
		conn, err = amqp.Dial(cfg.URL)
		if err == nil {
			break
		}
		retryIn := time.Duration(i*i)*time.Second + time.Second
		logger.Warn("rabbitmq dial failed, retrying", zap.Duration("retryIn", retryIn), zap.Error(err))
		time.Sleep(retryIn)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declaring exchange %s: %w", cfg.Exchange, err)
	}

	logger.Info("rabbitmq exchange declared", zap.String("exchange", cfg.Exchange))

	publisher := NewPublisher(ch, cfg.Exchange, logger)
	publisher.conn = conn
	return publisher, nil
}

func NewPublisher(ch Channel, exchange string, logger *zap.Logger) *Publisher {
	return &Publisher{
		channel:  ch,
		exchange: exchange,
		logger:   logger,
	}
}

func (p *Publisher) Publish(ctx context.Context, routingKey string, event events.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	// amqp channels are not safe for concurrent publishes.
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publishing to exchange %s with routing key %s: %w", p.exchange, routingKey, err)
	}

	p.logger.Debug("event published", zap.String("routingKey", routingKey), zap.Uint("orderId", event.OrderID))
	return nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			return err
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
