package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/avstrong/resort/internal/booking"
	"github.com/avstrong/resort/internal/logger"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Conf struct {
	L            *logger.Logger
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// Publisher sends booking events to a kafka topic keyed by booking id, so
// every event of one booking lands on the same partition.
type Publisher struct {
	l      *logger.Logger
	writer messageWriter
}

func New(conf Conf) *Publisher {
	//nolint:exhaustruct
	w := &kafka.Writer{
		Addr:         kafka.TCP(conf.Brokers...),
		Topic:        conf.Topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: conf.WriteTimeout,
		RequiredAcks: kafka.RequireOne,
	}

	return newWithWriter(conf.L, w)
}

func newWithWriter(l *logger.Logger, w messageWriter) *Publisher {
	return &Publisher{l: l, writer: w}
}

type headerCarrier []kafka.Header

func (c *headerCarrier) Get(key string) string {
	for _, h := range *c {
		if h.Key == key {
			return string(h.Value)
		}
	}

	return ""
}

func (c *headerCarrier) Set(key, value string) {
	*c = append(*c, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(*c))
	for _, h := range *c {
		keys = append(keys, h.Key)
	}

	return keys
}

var _ propagation.TextMapCarrier = (*headerCarrier)(nil)

func (p *Publisher) Publish(ctx context.Context, event booking.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %v: %w", event.ID, err)
	}

	headers := headerCarrier{{Key: "event-type", Value: []byte(event.Type)}}
	otel.GetTextMapPropagator().Inject(ctx, &headers)

	msg := kafka.Message{
		Key:     []byte(event.BookingID),
		Value:   payload,
		Headers: headers,
		Time:    event.CreatedAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event %v: %w", event.ID, err)
	}

	p.l.LogDebugf("Event %v for booking %v sent to kafka", event.Type, event.BookingID)

	return nil
}

func (p *Publisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("close kafka writer: %w", err)
	}

	return nil
}
