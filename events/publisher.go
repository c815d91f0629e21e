package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/navaneethdubbaka/Food-Engine/config"
	"github.com/navaneethdubbaka/Food-Engine/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const BillGeneratedRoutingKey = "bill.generated"

const dialAttempts = 5

// Publisher sends POS events to a topic exchange.
type Publisher struct {
	conn     *amqp.Connection
	exchange string
	log      *zap.Logger

	mu      sync.Mutex // amqp channels are not safe for concurrent publishing
	channel *amqp.Channel
}

// Dial connects with retry and declares the exchange.
func Dial(ctx context.Context, cfg config.AMQPConfig, log *zap.Logger) (*Publisher, error) {
	if cfg.Exchange == "" {
		return nil, fmt.Errorf("exchange name cannot be empty")
	}

	var conn *amqp.Connection
	var err error
	for i := 0; i < dialAttempts; i++ {
		conn, err = amqp.Dial(cfg.URL)
		if err == nil {
			break
		}
		wait := time.Duration(i*i)*time.Second + time.Second
		log.Warn("rabbitmq dial failed, retrying", zap.Duration("in", wait), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq after %d attempts: %w", dialAttempts, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}
	log.Info("rabbitmq exchange ready", zap.String("exchange", cfg.Exchange))

	return &Publisher{conn: conn, channel: ch, exchange: cfg.Exchange, log: log}, nil
}

// PublishBillGenerated announces an accepted bill.
func (p *Publisher) PublishBillGenerated(ctx context.Context, ev models.BillGenerated) error {
	msg, err := newPublishing(ev, time.Now())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(ctx, p.exchange, BillGeneratedRoutingKey, false, false, msg)
	if err != nil {
		return fmt.Errorf("publish to %s/%s: %w", p.exchange, BillGeneratedRoutingKey, err)
	}
	p.log.Debug("bill event published", zap.String("bill_number", ev.BillNumber))
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
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

func newPublishing(ev models.BillGenerated, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal bill event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.BillNumber,
		Type:         BillGeneratedRoutingKey,
		Timestamp:    now,
		Body:         body,
	}, nil
}
