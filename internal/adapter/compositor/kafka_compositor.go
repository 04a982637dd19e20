package compositor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/adpoint/ad-scheduler/internal/core/domain"
)

// KafkaCompositor hands composition jobs to the external video compositor
// over a kafka topic. The compositor consumes jobs, concatenates the listed
// media and reports back out of band; a publish failure here is the only
// failure mode this adapter surfaces.
type KafkaCompositor struct {
	writer *kafka.Writer
}

func NewKafkaCompositor(brokerURL, topic string) *KafkaCompositor {
	return &KafkaCompositor{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokerURL),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (c *KafkaCompositor) Compose(ctx context.Context, job domain.CompositionJob) error {
	value, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal composition job: %w", err)
	}

	err = c.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(job.PlaylistID.String()),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to publish composition job: %w", err)
	}

	return nil
}

func (c *KafkaCompositor) Close() error {
	return c.writer.Close()
}
