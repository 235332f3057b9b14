// internal/service/chat/adapter/message_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"verdant/internal/pkg/mq"
	"verdant/internal/service/chat/port"
)

// MessageTopic 新聊天消息事件主题。
const MessageTopic = "chat-messages"

// MessageKafkaAdapter 把聊天消息事件写入 Kafka。
type MessageKafkaAdapter struct {
	writer *kafka.Writer
}

func NewMessageKafkaAdapter(brokers []string) *MessageKafkaAdapter {
	return &MessageKafkaAdapter{writer: mq.NewKafkaWriter(brokers, MessageTopic)}
}

func (a *MessageKafkaAdapter) PublishNewMessage(ctx context.Context, event *port.MessageEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal message event: %w", err)
	}

	// 以会话 ID 为 key，同一会话的消息保序
	msg := kafka.Message{
		Key:   []byte(event.ConversationID),
		Value: payload,
	}
	mq.InjectTraceContext(ctx, &msg.Headers)

	return a.writer.WriteMessages(ctx, msg)
}

func (a *MessageKafkaAdapter) Close() error {
	return a.writer.Close()
}
