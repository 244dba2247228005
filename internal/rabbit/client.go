// Package rabbit implements the enrichment message bus on RabbitMQ.
// It provides a reconnecting client plus the trigger publisher and the
// enrichment consumer built on top of it.
package rabbit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sethvargo/go-retry"
)

// Client is a RabbitMQ connector that declares the enrichment topology,
// publishes with confirms, and reconnects in the background when the
// connection drops.
type Client struct {
	url string
	log *slog.Logger

	mu      sync.RWMutex
	conn    *amqp.Connection
	pubChan *amqp.Channel

	pubMu    sync.Mutex
	confirms chan amqp.Confirmation

	lifeCtx  context.Context
	lifeStop context.CancelFunc
}

// Connect dials RabbitMQ, retrying with exponential backoff for up to a
// minute, and starts background reconnect handling. Call Close to stop it.
func Connect(ctx context.Context, url string, log *slog.Logger) (*Client, error) {
	lifeCtx, lifeStop := context.WithCancel(context.WithoutCancel(ctx))
	c := &Client{url: url, log: log, lifeCtx: lifeCtx, lifeStop: lifeStop}

	backoff := retry.WithMaxDuration(time.Minute, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := c.connect(); err != nil {
			log.WarnContext(ctx, "rabbitmq connect failed, retrying", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		lifeStop()
		return nil, fmt.Errorf("rabbit.Connect: %w", err)
	}

	return c, nil
}

// Close stops reconnect handling and closes the connection and channel.
func (c *Client) Close() {
	c.lifeStop()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pubChan != nil {
		_ = c.pubChan.Close()
		c.pubChan = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// connect performs a single dial plus topology and confirm-mode setup, then
// installs the new connection and arms the close watcher.
func (c *Client) connect() error {
	conn, err := amqp.DialConfig(c.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Dial:      amqp.DefaultDial(30 * time.Second),
	})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare topology: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("enable confirms: %w", err)
	}

	c.pubMu.Lock()
	c.confirms = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	c.pubMu.Unlock()

	c.mu.Lock()
	if c.pubChan != nil && !c.pubChan.IsClosed() {
		_ = c.pubChan.Close()
	}
	c.conn = conn
	c.pubChan = ch
	c.mu.Unlock()

	go c.watch(conn)

	c.log.InfoContext(c.lifeCtx, "rabbitmq connected")
	return nil
}

// watch blocks until conn closes, then reconnects with capped exponential
// backoff until success or Close.
func (c *Client) watch(conn *amqp.Connection) {
	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	select {
	case <-c.lifeCtx.Done():
		return
	case cerr := <-closed:
		if cerr != nil {
			c.log.ErrorContext(c.lifeCtx, "rabbitmq connection lost", "error", cerr)
		}
	}

	backoff := retry.WithCappedDuration(30*time.Second, retry.NewExponential(time.Second))
	err := retry.Do(c.lifeCtx, backoff, func(ctx context.Context) error {
		if err := c.connect(); err != nil {
			c.log.WarnContext(ctx, "rabbitmq reconnect failed, retrying", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err == nil {
		c.log.InfoContext(c.lifeCtx, "rabbitmq reconnected")
	}
}

// publish sends one persistent JSON message and waits for the broker's
// publisher confirm.
func (c *Client) publish(ctx context.Context, exchange, routingKey string, body []byte, headers amqp.Table) error {
	c.mu.RLock()
	conn := c.conn
	ch := c.pubChan
	c.mu.RUnlock()

	if conn == nil || conn.IsClosed() {
		return errors.New("rabbit: connection is not open")
	}
	if ch == nil || ch.IsClosed() {
		return errors.New("rabbit: publish channel is not open")
	}

	// Serialize publishes so each confirm read matches its own publish.
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	confirms := c.confirms

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := ch.PublishWithContext(pctx, exchange, routingKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         body,
		Headers:      headers,
	})
	if err != nil {
		return fmt.Errorf("rabbit: publish: %w", err)
	}

	select {
	case confirm, ok := <-confirms:
		if !ok {
			return errors.New("rabbit: confirm channel closed")
		}
		if !confirm.Ack {
			return errors.New("rabbit: publish not acknowledged")
		}
	case <-pctx.Done():
		return fmt.Errorf("rabbit: await confirm: %w", pctx.Err())
	}

	return nil
}

// consumerChannel opens a fresh channel with the given prefetch applied.
// Consumers get their own channel so a consumer failure never disturbs the
// publishing channel.
func (c *Client) consumerChannel(prefetch int) (*amqp.Channel, error) {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil || conn.IsClosed() {
		return nil, errors.New("rabbit: connection is not ready")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbit: open consumer channel: %w", err)
	}
	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("rabbit: set prefetch: %w", err)
		}
	}
	return ch, nil
}
