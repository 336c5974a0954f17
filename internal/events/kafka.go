package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ikkim/agroshop-backend/pkg/logger"
	"github.com/segmentio/kafka-go"
)

const publishTimeout = 5 * time.Second

// KafkaPublisher writes order events to one topic per event type,
// keyed by order id so a single order's events stay ordered.
type KafkaPublisher struct {
	writer      *kafka.Writer
	topicPrefix string
}

func NewKafkaPublisher(brokers []string, topicPrefix string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker is required")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Warn(fmt.Sprintf("kafka writer: "+msg, args...))
		}),
	}

	logger.Info("Kafka publisher initialized", map[string]interface{}{
		"brokers":      brokers,
		"topic_prefix": topicPrefix,
	})
	return &KafkaPublisher{writer: writer, topicPrefix: topicPrefix}, nil
}

func (p *KafkaPublisher) Topic(t Type) string {
	return p.topicPrefix + string(t)
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt OrderEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", evt.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := kafka.Message{
		Topic: p.Topic(evt.Type),
		Key:   []byte(strconv.FormatUint(uint64(evt.OrderID), 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", evt.Type, err)
	}

	logger.Debug("Order event published", map[string]interface{}{
		"topic":    msg.Topic,
		"order_id": evt.OrderID,
	})
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
