// Package alert publishes fraud alerts to RabbitMQ so downstream
// consumers (case management, notification fan-out) can react to
// high-risk predictions without being in the request path.
package alert

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// FraudAlert is the message published when a persisted prediction is
// flagged as fraud.
type FraudAlert struct {
	AlertID          string    `json:"alert_id"`
	UserID           int       `json:"user_id"`
	PredictionID     int       `json:"prediction_id"`
	FraudProbability float64   `json:"fraud_probability"`
	RiskScore        int       `json:"risk_score"`
	CreatedAt        time.Time `json:"created_at"`
}

// Publisher delivers fraud alerts. Implementations must not block the
// prediction response on broker availability.
type Publisher interface {
	PublishFraudAlert(ctx context.Context, alert *FraudAlert) error
	Close() error
}

// NoopPublisher drops alerts. Used when RabbitMQ is disabled or
// unreachable at startup.
type NoopPublisher struct{}

func (NoopPublisher) PublishFraudAlert(context.Context, *FraudAlert) error { return nil }
func (NoopPublisher) Close() error                                         { return nil }

// RabbitMQPublisher publishes alerts to a topic exchange.
type RabbitMQPublisher struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	log        zerolog.Logger
}

func NewRabbitMQPublisher(url, exchange, routingKey string, log zerolog.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &RabbitMQPublisher{
		conn:       conn,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
		log:        log,
	}, nil
}

func (p *RabbitMQPublisher) PublishFraudAlert(ctx context.Context, alert *FraudAlert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return err
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		p.routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   alert.CreatedAt,
			Body:        body,
		},
	)
	if err != nil {
		return err
	}

	p.log.Info().
		Str("alert_id", alert.AlertID).
		Int("user_id", alert.UserID).
		Int("risk_score", alert.RiskScore).
		Msg("published fraud alert")
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
