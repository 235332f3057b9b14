// internal/service/chat/domain/repository.go
package domain

import (
	"context"
	"time"
)

// ConversationRepository 会话仓储。
type ConversationRepository interface {
	// FindBetween 查找两个用户围绕某植物的既有会话，没有时返回 (nil, nil)。
	FindBetween(ctx context.Context, userA, userB, plantID string) (*Conversation, error)
	FindByID(ctx context.Context, id string) (*Conversation, error)
	Save(ctx context.Context, conversation *Conversation) error
	ListForUser(ctx context.Context, userID string) ([]*Conversation, error)
}

// MessageRepository 消息仓储。
type MessageRepository interface {
	Append(ctx context.Context, message *Message) error
	ListByConversation(ctx context.Context, conversationID string) ([]*Message, error)
	// MarkRead 把会话里其他人发给 readerID 的未读消息置为已读。
	MarkRead(ctx context.Context, conversationID, readerID string, at time.Time) error
}
