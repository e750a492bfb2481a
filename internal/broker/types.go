package broker

import (
	"context"

	"github.com/segmentio/kafka-go"

	"relay/pkg/models"
)

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte, headers []kafka.Header) error
	Close() error
}

type Consumer interface {
	Consume(ctx context.Context, handler HandlerFunc) error
	Close() error
	SetServiceName(name string)
}

// HandlerFunc processes one decoded envelope. The returned error decides
// whether the message is retried, parked on the error topic or acknowledged.
type HandlerFunc func(ctx context.Context, env models.Envelope) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
