package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"catalog/internal/models"

	"github.com/rs/zerolog"
	amqp "github.com/streadway/amqp"
)

// productEventsPattern binds a queue to every product event routing key.
const productEventsPattern = "product.*"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   zerolog.Logger
	mu       sync.Mutex // serializes publishes on the shared channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string
}

// NewClient connects to RabbitMQ, opens a channel and declares the durable
// topic exchange product events are published to.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	logger = logger.With().Str("component", "rabbitmq").Str("exchange", cfg.Exchange).Logger()
	logger.Info().Msg("RabbitMQ client connected and exchange declared")

	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		logger:   logger,
	}, nil
}

// Close shuts the channel, then the connection. Both are attempted even when
// the first fails.
func (c *Client) Close() error {
	var channelErr, connErr error
	if c.channel != nil {
		if channelErr = c.channel.Close(); channelErr != nil {
			channelErr = fmt.Errorf("close channel: %w", channelErr)
		}
	}
	if c.conn != nil {
		if connErr = c.conn.Close(); connErr != nil {
			connErr = fmt.Errorf("close connection: %w", connErr)
		}
	}

	if err := errors.Join(channelErr, connErr); err != nil {
		c.logger.Warn().Err(err).Msg("RabbitMQ client closed with errors")
		return err
	}
	c.logger.Info().Msg("RabbitMQ client closed")
	return nil
}

// PublishProductEvent publishes event to the exchange, routed by its type.
func (c *Client) PublishProductEvent(ctx context.Context, event models.ProductEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	msg, err := encodeEvent(event)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.channel.Publish(
		c.exchange,         // exchange
		string(event.Type), // routing key
		false,              // mandatory
		false,              // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// ConsumeProductEvents binds queue to every product event and passes each
// delivery to handler until ctx is cancelled or the channel closes. An empty
// queue name declares a private, auto-deleted queue. Messages that cannot be
// decoded are dropped; handler errors requeue the message.
func (c *Client) ConsumeProductEvents(ctx context.Context, queue string, handler func(models.ProductEvent) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	durable, exclusive := true, false
	if queue == "" {
		durable, exclusive = false, true
	}

	q, err := c.channel.QueueDeclare(
		queue,     // name
		durable,   // durable
		!durable,  // delete when unused
		exclusive, // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue for consuming: %w", err)
	}

	if err := c.channel.QueueBind(q.Name, productEventsPattern, c.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", q.Name, err)
	}

	msgs, err := c.channel.Consume(
		q.Name, // queue
		"",     // consumer tag
		false,  // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info().Str("queue", q.Name).Msg("waiting for product events")

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handleDelivery(msg, handler)
		}
	}
}

func (c *Client) handleDelivery(msg amqp.Delivery, handler func(models.ProductEvent) error) {
	event, err := decodeEvent(msg)
	if err != nil {
		c.logger.Warn().Err(err).Uint64("delivery_tag", msg.DeliveryTag).Msg("dropping undecodable message")
		if nackErr := msg.Nack(false, false); nackErr != nil {
			c.logger.Error().Err(nackErr).Msg("error nacking message")
		}
		return
	}

	if err := handler(event); err != nil {
		c.logger.Error().Err(err).Str("event_id", event.ID).Msg("error processing product event")
		if nackErr := msg.Nack(false, true); nackErr != nil {
			c.logger.Error().Err(nackErr).Msg("error nacking message")
		}
		return
	}

	if ackErr := msg.Ack(false); ackErr != nil {
		c.logger.Error().Err(ackErr).Msg("error acking message")
	}
}

func encodeEvent(event models.ProductEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal product event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         string(event.Type),
		Timestamp:    event.OccurredAt,
		Body:         body,
	}, nil
}

func decodeEvent(msg amqp.Delivery) (models.ProductEvent, error) {
	var event models.ProductEvent
	if msg.ContentType != "" && msg.ContentType != "application/json" {
		return event, fmt.Errorf("unexpected content type %q", msg.ContentType)
	}
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return event, fmt.Errorf("failed to unmarshal product event: %w", err)
	}
	if event.Type == "" {
		return event, fmt.Errorf("product event without type")
	}
	return event, nil
}
