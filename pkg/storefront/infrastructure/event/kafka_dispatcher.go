package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/storefront/domain/model"
	"storefront/pkg/storefront/domain/service"
)

const writeTimeout = 5 * time.Second

type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaDispatcher(producer Producer, logger log.FieldLogger) *KafkaDispatcher {
	return &KafkaDispatcher{producer: producer, logger: logger}
}

// KafkaDispatcher publishes events as JSON envelopes keyed by aggregate id,
// so all events of one order land in the same partition.
type KafkaDispatcher struct {
	producer Producer
	logger   log.FieldLogger
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, event service.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrapf(err, "marshal event %s", event.Type())
	}
	value, err := json.Marshal(envelope{
		Type:       event.Type(),
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return errors.Wrapf(err, "marshal envelope of %s", event.Type())
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:     eventKey(event),
		Value:   value,
		Headers: []kafka.Header{{Key: "event-type", Value: []byte(event.Type())}},
	}
	if err := d.producer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrapf(err, "publish event %s", event.Type())
	}

	d.logger.WithField("type", event.Type()).Debug("event published")
	return nil
}

func (d *KafkaDispatcher) Close() error {
	return d.producer.Close()
}

func eventKey(event service.Event) []byte {
	if placed, ok := event.(model.OrderPlaced); ok {
		return []byte(placed.OrderID.String())
	}
	return []byte(event.Type())
}
