// internal/service/notification/adapter/push_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"

	"verdant/internal/pkg/mq"
	"verdant/internal/service/notification/port"
)

// NodeTopicPrefix 拼接网关节点专属主题: push-gateway-<nodeID>。
const NodeTopicPrefix = "push-node-"

// PushKafkaAdapter 按网关节点惰性创建 Writer 并缓存复用。
type PushKafkaAdapter struct {
	brokers []string

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

func NewPushKafkaAdapter(brokers []string) *PushKafkaAdapter {
	return &PushKafkaAdapter{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

// PublishToNode 把推送消息写入目标节点的专属主题。
func (a *PushKafkaAdapter) PublishToNode(ctx context.Context, nodeID string, msg *port.PushMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal push message: %w", err)
	}

	kafkaMsg := kafka.Message{
		Key:   []byte(msg.DeviceToken),
		Value: payload,
	}
	mq.InjectTraceContext(ctx, &kafkaMsg.Headers)

	return a.writerFor(nodeID).WriteMessages(ctx, kafkaMsg)
}

func (a *PushKafkaAdapter) writerFor(nodeID string) *kafka.Writer {
	a.mu.Lock()
	defer a.mu.Unlock()

	if w, ok := a.writers[nodeID]; ok {
		return w
	}
	w := mq.NewKafkaWriter(a.brokers, NodeTopicPrefix+nodeID)
	a.writers[nodeID] = w
	return w
}

func (a *PushKafkaAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var firstErr error
	for _, w := range a.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
