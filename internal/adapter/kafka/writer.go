// Package kafka publishes finalized simulation reports to a downstream topic
// for consumers that want push delivery instead of polling.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/couchcryptid/landscape-sim-service/internal/config"
	"github.com/couchcryptid/landscape-sim-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// ReportWriter produces final reports to a Kafka topic.
// It implements coordinator.Publisher.
type ReportWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewReportWriter creates a Kafka producer for the configured report topic.
func NewReportWriter(cfg *config.Config, logger *slog.Logger) *ReportWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaReportTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &ReportWriter{writer: w, logger: logger}
}

// Publish serializes and writes one final report, keyed by request id so a
// request's report always lands on a stable partition.
func (w *ReportWriter) Publish(ctx context.Context, report domain.FinalReport) error {
	msg, err := serializeToMessage(report)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing report message: %w", err)
	}
	w.logger.Debug("final report published", "request_id", report.RequestID)
	return nil
}

func (w *ReportWriter) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a FinalReport into a Kafka message.
func serializeToMessage(report domain.FinalReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize final report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.RequestID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "location", Value: []byte(report.Location)},
			{Key: "partial", Value: []byte(strconv.FormatBool(report.Partial))},
		},
	}, nil
}
