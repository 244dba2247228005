package rabbit

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func testConsumer(maxAttempts int) *Consumer {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewConsumer(nil, nil, log, maxAttempts)
}

func TestDecide_SuccessAcks(t *testing.T) {
	c := testConsumer(3)

	assert.Equal(t, actionAck, c.decide(nil, 1))
	// Success acks even on the final allowed attempt.
	assert.Equal(t, actionAck, c.decide(nil, 3))
}

func TestDecide_FailureRetriesWithinBudget(t *testing.T) {
	c := testConsumer(3)
	err := errors.New("gateway down")

	assert.Equal(t, actionRetry, c.decide(err, 1))
	assert.Equal(t, actionRetry, c.decide(err, 2))
}

func TestDecide_FinalAttemptDeadLetters(t *testing.T) {
	c := testConsumer(3)
	err := errors.New("gateway down")

	// Attempt 3 of 3 is the last one: no republish, straight to the DLQ.
	assert.Equal(t, actionDeadLetter, c.decide(err, 3))
	assert.Equal(t, actionDeadLetter, c.decide(err, 4))
}

func TestDecide_SingleAttemptBudget(t *testing.T) {
	c := testConsumer(1)

	assert.Equal(t, actionAck, c.decide(nil, 1))
	assert.Equal(t, actionDeadLetter, c.decide(errors.New("boom"), 1))
}

func TestNewConsumer_DefaultsMaxAttempts(t *testing.T) {
	assert.Equal(t, 3, testConsumer(0).maxAttempts)
	assert.Equal(t, 3, testConsumer(-5).maxAttempts)
	assert.Equal(t, 5, testConsumer(5).maxAttempts)
}

func TestDeliveryAttempt(t *testing.T) {
	cases := []struct {
		name    string
		headers amqp.Table
		want    int
	}{
		{"nil headers", nil, 1},
		{"missing header", amqp.Table{}, 1},
		{"int", amqp.Table{attemptHeader: 2}, 2},
		{"int32", amqp.Table{attemptHeader: int32(3)}, 3},
		{"int64", amqp.Table{attemptHeader: int64(4)}, 4},
		{"unexpected type", amqp.Table{attemptHeader: "7"}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, deliveryAttempt(tc.headers))
		})
	}
}
