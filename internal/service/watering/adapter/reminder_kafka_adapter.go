// internal/service/watering/adapter/reminder_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"verdant/internal/pkg/mq"
	"verdant/internal/service/watering/port"
)

// ReminderTopic 是浇水提醒事件使用的主题。
const ReminderTopic = "watering-reminders"

// ReminderKafkaAdapter 是 port.ReminderPublisher 的 Kafka 实现。
type ReminderKafkaAdapter struct {
	writer *kafka.Writer
}

// NewReminderKafkaAdapter 创建提醒事件生产者。
func NewReminderKafkaAdapter(brokers []string) *ReminderKafkaAdapter {
	return &ReminderKafkaAdapter{
		writer: mq.NewKafkaWriter(brokers, ReminderTopic),
	}
}

// Publish 把提醒事件写入 Kafka，以 businessId 作为分区键，
// 并把追踪上下文注入消息头。
func (a *ReminderKafkaAdapter) Publish(ctx context.Context, event *port.WateringReminderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.BusinessID),
		Value: payload,
	}
	mq.InjectTraceContext(ctx, &msg.Headers)

	return a.writer.WriteMessages(ctx, msg)
}

// Close 关闭生产者。
func (a *ReminderKafkaAdapter) Close() error {
	return a.writer.Close()
}
