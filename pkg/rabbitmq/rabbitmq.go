package rabbitmq

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"produtoapi/internal/models"
	"produtoapi/pkg/logger"

	amqp "github.com/streadway/amqp"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     *logger.Logger
	mu      sync.Mutex // amqp.Channel is not safe for concurrent publishing
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient connects to RabbitMQ, opens a channel and declares the event queue.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.Nop()
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareQueue(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info().Str("queue", cfg.Queue).Msg("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
		log:     log,
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", name, err)
	}
	return nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ client: %v", errs)
	}
	return nil
}

// EncodeEvent builds the persistent JSON message published for event.
func EncodeEvent(event models.ProdutoEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal produto event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Type:         string(event.Type),
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
	}, nil
}

// DecodeEvent parses a delivery produced by PublishProdutoEvent.
func DecodeEvent(body []byte) (models.ProdutoEvent, error) {
	var event models.ProdutoEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return models.ProdutoEvent{}, fmt.Errorf("failed to unmarshal produto event: %w", err)
	}
	return event, nil
}

// PublishProdutoEvent publishes event to the configured queue through the default exchange.
func (c *Client) PublishProdutoEvent(event models.ProdutoEvent) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	msg, err := EncodeEvent(event)
	if err != nil {
		return err
	}

	c.mu.Lock()
	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key
		false,   // mandatory
		false,   // immediate
		msg,
	)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish produto event: %w", err)
	}

	c.log.Debug().Str("event", string(event.Type)).Int64("produto_id", event.ProdutoID).Msg("produto event published")
	return nil
}

// ConsumeProdutoEvents registers a consumer on the event queue and hands each
// decoded event to handler in a background goroutine. Messages are acked when
// handler returns nil and requeued otherwise; undecodable messages are dropped.
func (c *Client) ConsumeProdutoEvents(handler func(models.ProdutoEvent) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			c.handleDelivery(msg, handler)
		}
		c.log.Info().Str("queue", c.queue).Msg("produto event consumer stopped")
	}()

	return nil
}

func (c *Client) handleDelivery(msg amqp.Delivery, handler func(models.ProdutoEvent) error) {
	event, err := DecodeEvent(msg.Body)
	if err != nil {
		c.log.Error().Err(err).Uint64("delivery_tag", msg.DeliveryTag).Msg("discarding malformed produto event")
		if nackErr := msg.Nack(false, false); nackErr != nil {
			c.log.Error().Err(nackErr).Msg("nack failed")
		}
		return
	}

	if err := handler(event); err != nil {
		c.log.Warn().Err(err).Uint64("delivery_tag", msg.DeliveryTag).Msg("produto event handler failed, requeueing")
		if nackErr := msg.Nack(false, true); nackErr != nil {
			c.log.Error().Err(nackErr).Msg("nack failed")
		}
		return
	}

	if ackErr := msg.Ack(false); ackErr != nil {
		c.log.Error().Err(ackErr).Msg("ack failed")
	}
}

// LogProdutoEvent returns a consumer handler that writes every event to log.
func LogProdutoEvent(log *logger.Logger) func(models.ProdutoEvent) error {
	return func(event models.ProdutoEvent) error {
		log.Info().
			Str("event", string(event.Type)).
			Int64("produto_id", event.ProdutoID).
			Time("occurred_at", event.OccurredAt).
			Msg("produto event received")
		return nil
	}
}
