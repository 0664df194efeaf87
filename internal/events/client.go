// Package events announces data mutations over an AMQP fanout exchange so
// other running clients can refresh.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/finai-dev/finai/internal/log"
)

// ErrCircuitOpen is returned by Publish while the broker is considered down.
var ErrCircuitOpen = errors.New("circuit breaker is open")

var errDeliveriesClosed = errors.New("message channel closed")

const publishTimeout = 5 * time.Second

// Handler processes one message from another client.
type Handler func(ctx context.Context, msg *Message) error

// Client publishes and consumes mutation messages.
type Client struct {
	url          string
	exchangeName string
	queueName    string
	source       string
	logger       *log.Logger

	mu          sync.Mutex
	conn        *amqp091.Connection
	channel     *amqp091.Channel
	lastFailure time.Time

	state        int32
	failureCount int64
}

// Option configures a Client.
type Option func(*Client)

// WithQueue names a durable queue. Without it each consumer gets an
// exclusive server-named queue that is removed when it disconnects.
func WithQueue(name string) Option {
	return func(c *Client) { c.queueName = name }
}

// WithSource sets the id stamped on published messages. Defaults to a
// random uuid.
func WithSource(source string) Option {
	return func(c *Client) { c.source = source }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l.WithComponent(log.ComponentEvents) }
}

// NewClient dials the broker and declares the exchange.
func NewClient(url, exchangeName string, opts ...Option) (*Client, error) {
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		logger:       log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.source == "" {
		c.source = NewMessage("", "").ID
	}

	c.mu.Lock()
	_, err := c.connectLocked()
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Source is the id this client stamps on its messages.
func (c *Client) Source() string {
	return c.source
}

func (c *Client) connectLocked() (*amqp091.Channel, error) {
	if c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}
	c.closeLocked()

	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = channel.ExchangeDeclare(
		c.exchangeName, // name
		"fanout",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	c.conn, c.channel = conn, channel
	return channel, nil
}

func (c *Client) ensureChannel() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Client) closeLocked() {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Notify publishes a message of the given kind. It satisfies the dashboard's
// Notifier.
func (c *Client) Notify(ctx context.Context, kind string) error {
	_, err := c.Publish(ctx, kind)
	return err
}

// Publish sends a mutation message and returns it.
func (c *Client) Publish(ctx context.Context, kind string) (*Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.isCircuitOpen() {
		return nil, fmt.Errorf("publish %s: %w", kind, ErrCircuitOpen)
	}

	msg := NewMessage(kind, c.source)
	body, err := msg.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	channel, err := c.ensureChannel()
	if err != nil {
		c.recordFailure()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		"",             // routing key, ignored by fanout
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    msg.ID,
			Timestamp:    msg.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			c.mu.Lock()
			c.closeLocked()
			c.mu.Unlock()
		}
		return nil, fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	c.logger.InfoContext(ctx, "published mutation",
		log.FieldOperation, log.OpPublish,
		log.FieldEventID, msg.ID,
		log.FieldEventKind, msg.Kind)
	return msg, nil
}

// Consume delivers messages from other clients to handler until ctx is done.
// Lost connections are re-established with exponential backoff.
func (c *Client) Consume(ctx context.Context, handler Handler) error {
	attempt := 0
	for {
		started, err := c.consumeOnce(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isConnectionError(err) && !errors.Is(err, errDeliveriesClosed) {
			return err
		}
		if started {
			attempt = 0
		}
		wait := exponentialBackoff(attempt)
		attempt++

		c.logger.WarnContext(ctx, "consumer disconnected, reconnecting",
			log.FieldError, err,
			"backoff", wait.String())
		c.mu.Lock()
		c.closeLocked()
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Client) consumeOnce(ctx context.Context, handler Handler) (bool, error) {
	channel, err := c.ensureChannel()
	if err != nil {
		return false, err
	}

	durable := c.queueName != ""
	queue, err := channel.QueueDeclare(
		c.queueName, // name, empty for server-named
		durable,     // durable
		!durable,    // delete when unused
		!durable,    // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return false, fmt.Errorf("declare queue: %w", err)
	}
	if err := channel.QueueBind(queue.Name, "", c.exchangeName, false, nil); err != nil {
		return false, fmt.Errorf("bind queue: %w", err)
	}

	msgs, err := channel.Consume(
		queue.Name, // queue
		"",         // consumer
		false,      // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return false, fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "consuming mutations",
		log.FieldOperation, log.OpConsume,
		"queue", queue.Name)

	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return true, errDeliveriesClosed
			}
			c.deliver(ctx, delivery, handler)
		}
	}
}

func (c *Client) deliver(ctx context.Context, delivery amqp091.Delivery, handler Handler) {
	msg, err := MessageFromJSON(delivery.Body)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to decode message", log.FieldError, err)
		delivery.Nack(false, false)
		return
	}
	if msg.Source == c.source {
		delivery.Ack(false)
		return
	}

	if err := handler(ctx, msg); err != nil {
		// A failed refresh is not requeued: the next mutation triggers another.
		c.logger.ErrorContext(ctx, "failed to handle message",
			log.FieldError, err,
			log.FieldEventID, msg.ID,
			log.FieldEventKind, msg.Kind)
		delivery.Nack(false, false)
		return
	}
	delivery.Ack(false)
	c.logger.DebugContext(ctx, "handled mutation",
		log.FieldEventID, msg.ID,
		log.FieldEventKind, msg.Kind)
}

// Close closes the channel and connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	return err
}
