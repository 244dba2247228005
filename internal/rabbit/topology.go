package rabbit

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// ExchangeTripsEnrichment is the fanout exchange trip triggers are
	// published to.
	ExchangeTripsEnrichment = "trips-enrichment"

	// QueueEnrichment is the durable queue the consumer reads from.
	QueueEnrichment = "enrichment-queue"

	// QueueEnrichmentDLQ holds triggers that exhausted their retry budget.
	// Rejected deliveries are routed here via the default exchange.
	QueueEnrichmentDLQ = "enrichment-queue.dlq"
)

// declareTopology declares the enrichment exchange, queue, and dead-letter
// queue. Declarations are idempotent, so this runs on every (re)connect.
func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeTripsEnrichment, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", ExchangeTripsEnrichment, err)
	}

	// Rejected messages leave the enrichment queue through the default
	// exchange straight into the DLQ.
	queueArgs := amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": QueueEnrichmentDLQ,
	}
	if _, err := ch.QueueDeclare(QueueEnrichment, true, false, false, false, queueArgs); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueEnrichment, err)
	}

	if _, err := ch.QueueDeclare(QueueEnrichmentDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueEnrichmentDLQ, err)
	}

	if err := ch.QueueBind(QueueEnrichment, "", ExchangeTripsEnrichment, false, nil); err != nil {
		return fmt.Errorf("bind queue %s to %s: %w", QueueEnrichment, ExchangeTripsEnrichment, err)
	}

	return nil
}
