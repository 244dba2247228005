package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sethvargo/go-retry"
)

// attemptHeader counts delivery attempts across republishes. The first
// delivery of a trigger carries no header and counts as attempt 1.
const attemptHeader = "x-attempts"

// processTimeout bounds a single trigger-processing attempt, covering the
// trip fetches and both gateway calls.
const processTimeout = 30 * time.Second

// Processor handles one enrichment trigger. A nil return means the trigger
// is finished and must be acknowledged; a non-nil return means the attempt
// failed and is subject to the retry budget.
type Processor interface {
	Process(ctx context.Context, tripID uuid.UUID) error
}

// Consumer reads enrichment triggers from the enrichment queue with manual
// acks and applies a bounded retry policy: a failed attempt is republished
// with an incremented attempt header until maxAttempts is reached, after
// which the delivery is rejected and the broker parks it on the DLQ.
type Consumer struct {
	client      *Client
	proc        Processor
	log         *slog.Logger
	maxAttempts int
}

// NewConsumer constructs a Consumer. maxAttempts below 1 falls back to 3.
func NewConsumer(client *Client, proc Processor, log *slog.Logger, maxAttempts int) *Consumer {
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	return &Consumer{client: client, proc: proc, log: log, maxAttempts: maxAttempts}
}

// action is the broker-side outcome of one delivery.
type action int

const (
	actionAck action = iota
	actionRetry
	actionDeadLetter
)

// decide maps a processing result and the current attempt number onto a
// broker action. It is the whole retry/dead-letter policy: success acks,
// failure retries while budget remains, the final allowed attempt
// dead-letters.
func (c *Consumer) decide(err error, attempt int) action {
	if err == nil {
		return actionAck
	}
	if attempt >= c.maxAttempts {
		return actionDeadLetter
	}
	return actionRetry
}

// deliveryAttempt reads the attempt counter from message headers.
func deliveryAttempt(headers amqp.Table) int {
	switch v := headers[attemptHeader].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	default:
		return 1
	}
}

// Run consumes until ctx is cancelled. When the channel drops (broker
// restart, reconnect) it re-opens with capped exponential backoff.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := retry.WithCappedDuration(30*time.Second, retry.NewExponential(time.Second))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			return nil
		}
		c.log.ErrorContext(ctx, "enrichment consume loop stopped, restarting", "error", err)
		return retry.RetryableError(fmt.Errorf("consume: %w", err))
	})
}

// consume opens a channel and processes deliveries until ctx is cancelled or
// the channel closes.
func (c *Consumer) consume(ctx context.Context) error {
	ch, err := c.client.consumerChannel(1)
	if err != nil {
		return err
	}
	defer ch.Close()

	deliveries, err := ch.Consume(QueueEnrichment, "enrichment-consumer", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbit: consume %s: %w", QueueEnrichment, err)
	}

	chClosed := ch.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-ctx.Done():
			_ = ch.Cancel("enrichment-consumer", false)
			return nil
		case cerr := <-chClosed:
			if cerr != nil {
				return fmt.Errorf("rabbit: channel closed: %w", cerr)
			}
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.handle(ctx, d)
		}
	}
}

// handle processes one delivery end to end, including the broker action.
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var msg triggerMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		// Poison message: no amount of redelivery fixes a bad payload.
		c.log.ErrorContext(ctx, "malformed enrichment trigger, dead-lettering", "error", err)
		_ = d.Nack(false, false)
		return
	}
	tripID, err := uuid.Parse(msg.ID)
	if err != nil {
		c.log.ErrorContext(ctx, "invalid trip id in enrichment trigger, dead-lettering", "id", msg.ID, "error", err)
		_ = d.Nack(false, false)
		return
	}

	attempt := deliveryAttempt(d.Headers)

	hctx, cancel := context.WithTimeout(ctx, processTimeout)
	procErr := c.proc.Process(hctx, tripID)
	cancel()

	switch c.decide(procErr, attempt) {
	case actionAck:
		_ = d.Ack(false)

	case actionRetry:
		c.log.WarnContext(ctx, "enrichment attempt failed, requeueing",
			"trip_id", tripID, "attempt", attempt, "max_attempts", c.maxAttempts, "error", procErr)
		headers := amqp.Table{attemptHeader: int32(attempt + 1)}
		if err := c.client.publish(ctx, "", QueueEnrichment, d.Body, headers); err != nil {
			// Could not republish: leave redelivery to the broker instead.
			c.log.ErrorContext(ctx, "requeue publish failed, returning delivery to broker", "trip_id", tripID, "error", err)
			_ = d.Nack(false, true)
			return
		}
		_ = d.Ack(false)

	case actionDeadLetter:
		c.log.ErrorContext(ctx, "enrichment retry budget exhausted, dead-lettering",
			"trip_id", tripID, "attempt", attempt, "error", procErr)
		_ = d.Nack(false, false)
	}
}
