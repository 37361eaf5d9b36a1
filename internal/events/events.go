package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/MrJamesThe3rd/billroom/internal/transaction"
)

type Type string

const (
	TypeCreated  Type = "transaction.created"
	TypeVerified Type = "transaction.verified"
	TypeArchived Type = "transaction.archived"
)

// Event describes a transaction lifecycle change.
type Event struct {
	Type          Type                     `json:"type"`
	TransactionID string                   `json:"transaction_id"`
	Room          string                   `json:"room"`
	Status        transaction.Status       `json:"status"`
	Total         int64                    `json:"total"`
	At            time.Time                `json:"at"`
	Transaction   *transaction.Transaction `json:"transaction,omitempty"`
}

// New builds an event for tx. The transaction payload is only attached to creation events.
func New(typ Type, tx transaction.Transaction, at time.Time) Event {
	e := Event{
		Type:          typ,
		TransactionID: tx.ID,
		Room:          tx.AssignedRoom,
		Status:        tx.Status,
		Total:         tx.Total,
		At:            at,
	}

	if typ == TypeCreated {
		e.Transaction = &tx
	}

	return e
}

// Publisher hands events off without blocking the caller.
type Publisher interface {
	Publish(e Event)
}

// Discard drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) {}

// MessageWriter is the subset of *kafka.Writer the publisher needs.
//
//go:generate mockgen -source=events.go -destination=events_mock.go -package=events
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	queueSize    = 256
	writeTimeout = 5 * time.Second
)

// Kafka publishes events as JSON, keyed by transaction id, from a bounded
// in-memory queue. Events are dropped when the queue is full.
type Kafka struct {
	w     MessageWriter
	log   *slog.Logger
	queue chan Event
}

// NewKafkaWriter returns a writer for topic on brokers.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

func NewKafka(w MessageWriter, log *slog.Logger) *Kafka {
	return &Kafka{
		w:     w,
		log:   log.With("component", "events"),
		queue: make(chan Event, queueSize),
	}
}

func (k *Kafka) Publish(e Event) {
	select {
	case k.queue <- e:
	default:
		k.log.Warn("event queue full, dropping event", "type", e.Type, "transaction_id", e.TransactionID)
	}
}

// Run writes queued events until ctx is cancelled, then drains what is left
// and closes the writer.
func (k *Kafka) Run(ctx context.Context) error {
	for {
		select {
		case e := <-k.queue:
			k.write(ctx, e)
		case <-ctx.Done():
			drainCtx := context.WithoutCancel(ctx)

			for {
				select {
				case e := <-k.queue:
					k.write(drainCtx, e)
				default:
					if err := k.w.Close(); err != nil {
						return fmt.Errorf("closing kafka writer: %w", err)
					}

					return nil
				}
			}
		}
	}
}

func (k *Kafka) write(ctx context.Context, e Event) {
	value, err := json.Marshal(e)
	if err != nil {
		k.log.Warn("failed to encode event", "type", e.Type, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	err = k.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.TransactionID),
		Value: value,
		Time:  e.At,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	})
	if err != nil {
		k.log.Warn("failed to publish event", "type", e.Type, "transaction_id", e.TransactionID, "error", err)
	}
}
