// Package kafka publishes discovery lifecycle events to Kafka topics.  The
// producer is optional: without brokers configured the service runs with a
// nil publisher and nothing here is constructed.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/turtacn/APISource-Intelligence/internal/config"
	"github.com/turtacn/APISource-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/APISource-Intelligence/pkg/errors"
)

// messageWriter is the slice of kafka.Writer the producer uses, kept as an
// interface so tests can capture messages.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// RecordsInsertedEvent announces newly persisted records.
type RecordsInsertedEvent struct {
	Entity    string    `json:"entity"`
	APIName   string    `json:"api_name"`
	Count     int       `json:"count"`
	EmittedAt time.Time `json:"emitted_at"`
}

// RunCompletedEvent announces a finished discovery run.
type RunCompletedEvent struct {
	Entity    string    `json:"entity"`
	APIName   string    `json:"api_name"`
	Inserted  int       `json:"inserted"`
	Rejected  int       `json:"rejected"`
	EmittedAt time.Time `json:"emitted_at"`
}

// Producer implements discovery.EventPublisher over two Kafka topics.
type Producer struct {
	records messageWriter
	runs    messageWriter
	logger  logging.Logger
}

// NewProducer builds a producer from config.  Call Close on shutdown.
func NewProducer(cfg config.KafkaConfig, logger logging.Logger) *Producer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	newWriter := func(topic string) *kafkago.Writer {
		return &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafkago.LeastBytes{},
			WriteTimeout: cfg.WriteTimeout,
			RequiredAcks: kafkago.RequireOne,
		}
	}
	return &Producer{
		records: newWriter(cfg.RecordsTopic),
		runs:    newWriter(cfg.RunsTopic),
		logger:  logger.Named("kafka"),
	}
}

// RecordsInserted implements discovery.EventPublisher.
func (p *Producer) RecordsInserted(ctx context.Context, entity, apiName string, count int) error {
	return p.publish(ctx, p.records, apiName, RecordsInsertedEvent{
		Entity: entity, APIName: apiName, Count: count, EmittedAt: time.Now().UTC(),
	})
}

// RunCompleted implements discovery.EventPublisher.
func (p *Producer) RunCompleted(ctx context.Context, entity, apiName string, inserted, rejected int) error {
	return p.publish(ctx, p.runs, apiName, RunCompletedEvent{
		Entity: entity, APIName: apiName, Inserted: inserted, Rejected: rejected,
		EmittedAt: time.Now().UTC(),
	})
}

func (p *Producer) publish(ctx context.Context, w messageWriter, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode event")
	}
	if err := w.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now().UTC(),
	}); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeServiceUnavailable, "publish event")
	}
	return nil
}

// Close flushes and closes both writers.
func (p *Producer) Close() error {
	errRecords := p.records.Close()
	errRuns := p.runs.Close()
	if errRecords != nil {
		return errRecords
	}
	return errRuns
}

//Personal.AI order the ending
