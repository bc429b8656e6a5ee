package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"nuggets/internal/nugget"
)

// NuggetNormalizedMessage is the wire shape published after a submission has
// been normalized and persisted.
type NuggetNormalizedMessage struct {
	Event     string         `json:"event"`
	Timestamp time.Time      `json:"timestamp"`
	Mode      string         `json:"mode"`
	Nugget    nugget.Article `json:"nugget"`
}

type Publisher interface {
	PublishNuggetNormalized(ctx context.Context, mode string, a *nugget.Article) error
	Close()
}

// PublishingChannel is the slice of amqp.Channel the publisher needs, kept as
// an interface so tests can mock it.
type PublishingChannel interface {
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp.Publishing,
	) error
	Close() error
}

type RabbitPublisher struct {
	conn       *amqp.Connection
	ch         PublishingChannel
	exchange   string
	routingKey string
	logger     *log.Logger
}

func NewRabbitPublisher(uri, exchange, routingKey string, logger *log.Logger) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq connection failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel creation failed: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("exchange declare failed: %w", err)
	}

	return &RabbitPublisher{
		conn:       conn,
		ch:         ch,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
	}, nil
}

func (p *RabbitPublisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

func (p *RabbitPublisher) PublishNuggetNormalized(ctx context.Context, mode string, a *nugget.Article) error {
	body, err := json.Marshal(NuggetNormalizedMessage{
		Event:     "nugget.normalized",
		Timestamp: time.Now().UTC(),
		Mode:      mode,
		Nugget:    *a,
	})
	if err != nil {
		return err
	}

	return p.ch.PublishWithContext(
		ctx,
		p.exchange,
		p.routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		},
	)
}
