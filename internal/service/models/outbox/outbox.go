package outbox

import (
	"time"
)

// Message is an event waiting to be published to RabbitMQ. Rows are written
// in the same transaction as the order mutation they describe and removed by
// the outbox worker after a successful publish, which gives the exchange
// at-least-once delivery without ever coupling the HTTP request to the
// broker being up.
type Message struct {
	ID           int64
	MessageID    string // uuid carried to consumers for de-duplication
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}
