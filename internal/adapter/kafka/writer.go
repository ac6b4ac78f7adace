package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/couchcryptid/jismesh-etl/internal/config"
	"github.com/couchcryptid/jismesh-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces messages to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	return NewTopicWriter(cfg.KafkaBrokers, cfg.KafkaSinkTopic, logger)
}

// NewTopicWriter creates a Kafka producer for an arbitrary topic. meshctl uses
// it to publish census rows onto the source topic.
func NewTopicWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes multiple cell events to the sink topic in a single
// WriteMessages call. Keys are mesh codes so a cell always lands on the same
// partition.
func (w *Writer) LoadBatch(ctx context.Context, events []domain.OutputEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msgs[i] = outputToMessage(events[i])
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

// PublishRecords marshals mesh records and writes them as one batch.
func (w *Writer) PublishRecords(ctx context.Context, records []domain.MeshRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := recordToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d records: %w", len(msgs), err)
	}
	w.logger.Info("published mesh records", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// outputToMessage converts an OutputEvent into a Kafka message. Headers are
// sorted by key so message layout is stable.
func outputToMessage(event domain.OutputEvent) kafkago.Message {
	keys := make([]string, 0, len(event.Headers))
	for k := range event.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]kafkago.Header, 0, len(keys))
	for _, k := range keys {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(event.Headers[k])})
	}
	return kafkago.Message{
		Key:     event.Key,
		Value:   event.Value,
		Headers: headers,
	}
}

func recordToMessage(rec domain.MeshRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize mesh record %s: %w", rec.KeyCode, err)
	}
	return kafkago.Message{
		Key:   []byte(rec.KeyCode),
		Value: data,
	}, nil
}
