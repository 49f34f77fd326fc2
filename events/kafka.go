package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

// KafkaPublisher produces events to a single topic keyed by event type.
type KafkaPublisher struct {
	client  *kgo.Client
	topic   string
	logger  *zap.Logger
	backoff func() backoff.BackOff
}

// NewKafkaPublisher connects to brokers. The connection is lazy; broker
// errors surface on the first Publish.
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("events: no seed brokers provided")
	}
	if topic == "" {
		return nil, fmt.Errorf("events: topic required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequestRetries(3),
		kgo.ProducerBatchMaxBytes(1000000),
	)
	if err != nil {
		return nil, fmt.Errorf("events: kafka client: %w", err)
	}

	return &KafkaPublisher{
		client: client,
		topic:  topic,
		logger: logger.Named("kafka"),
		backoff: func() backoff.BackOff {
			expo := backoff.NewExponentialBackOff()
			expo.InitialInterval = 100 * time.Millisecond
			expo.MaxInterval = 2 * time.Second
			expo.MaxElapsedTime = 10 * time.Second
			return expo
		},
	}, nil
}

// Publish produces ev synchronously, retrying transient failures with
// exponential backoff.
func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	record, err := Record(p.topic, ev)
	if err != nil {
		return err
	}

	op := func() error {
		if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return backoff.Permanent(err)
			}
			p.logger.Debug("produce attempt failed", zap.String("event_id", ev.ID), zap.Error(err))
			return err
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(p.backoff(), ctx)); err != nil {
		return fmt.Errorf("events: produce %s: %w", ev.Type, err)
	}
	return nil
}

// Close flushes buffered records and closes the client.
func (p *KafkaPublisher) Close() {
	p.client.Close()
}

// Record encodes ev as a Kafka record. The key is the event type so one
// kind of event stays ordered within a partition.
func Record(topic string, ev Event) (*kgo.Record, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("events: encode %s: %w", ev.Type, err)
	}
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(ev.Type),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event_id", Value: []byte(ev.ID)},
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}, nil
}
