package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/api-sage/wallet-ledger-engine/internal/events"
)

const transferCompletedTopic = "transfer_completed"

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    transferCompletedTopic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *Publisher) PublishTransferCompleted(ctx context.Context, event events.TransferCompleted) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal transfer event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ReferenceID),
		Value: data,
	}); err != nil {
		return fmt.Errorf("write transfer event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
