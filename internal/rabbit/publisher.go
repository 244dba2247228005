package rabbit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// triggerMessage is the wire shape of an enrichment trigger. The trip id is
// the only payload: the consumer re-reads current trip state instead of
// trusting message content, making the message a pure wake-up signal.
type triggerMessage struct {
	ID string `json:"id"`
}

// Publisher publishes enrichment triggers to the trips-enrichment exchange.
// It implements service.TriggerPublisher.
type Publisher struct {
	client *Client
}

// NewPublisher constructs a Publisher using the provided client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// PublishEnrichment publishes a trigger for tripID and waits for the
// broker's confirm.
func (p *Publisher) PublishEnrichment(ctx context.Context, tripID uuid.UUID) error {
	body, err := json.Marshal(triggerMessage{ID: tripID.String()})
	if err != nil {
		return fmt.Errorf("rabbit.Publisher.PublishEnrichment: %w", err)
	}
	if err := p.client.publish(ctx, ExchangeTripsEnrichment, "", body, nil); err != nil {
		return fmt.Errorf("rabbit.Publisher.PublishEnrichment: %w", err)
	}
	return nil
}
