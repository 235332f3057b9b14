// internal/service/chat/port/publisher.go
package port

import (
	"context"
	"time"
)

// MessageEvent 新消息事件，供通知侧做实时推送。
type MessageEvent struct {
	ConversationID string    `json:"conversationId"`
	MessageID      string    `json:"messageId"`
	SenderID       string    `json:"senderId"`
	ReceiverID     string    `json:"receiverId"`
	Text           string    `json:"text"`
	SentAt         time.Time `json:"sentAt"`
}

// MessagePublisher 把新消息事件发到消息队列。
type MessagePublisher interface {
	PublishNewMessage(ctx context.Context, event *MessageEvent) error
}
