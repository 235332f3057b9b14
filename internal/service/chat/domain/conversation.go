// internal/service/chat/domain/conversation.go
package domain

import (
	"time"

	"github.com/pkg/errors"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("user is not a participant of this conversation")
	ErrEmptyMessage         = errors.New("message text must not be empty")
	ErrInvalidParticipants  = errors.New("a conversation needs two distinct participants")
)

// MessagePreview 会话列表里展示的最后一条消息摘要。
type MessagePreview struct {
	SenderID string    `json:"senderId"`
	Text     string    `json:"text"`
	SentAt   time.Time `json:"sentAt"`
}

// Conversation 是两个用户围绕一棵植物的会话。
// 同一对用户对同一植物只存在一个会话。
type Conversation struct {
	ID            string          `json:"id"`
	Participants  []string        `json:"participants"`
	PlantID       string          `json:"plantId,omitempty"`
	LastMessage   *MessagePreview `json:"lastMessage,omitempty"`
	LastMessageAt time.Time       `json:"lastMessageAt"`
	UnreadCounts  map[string]int  `json:"unreadCounts"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// NewConversation 创建会话，参与者必须是两个不同的用户。
func NewConversation(id, senderID, receiverID, plantID string, at time.Time) (*Conversation, error) {
	if senderID == "" || receiverID == "" || senderID == receiverID {
		return nil, ErrInvalidParticipants
	}
	return &Conversation{
		ID:            id,
		Participants:  []string{senderID, receiverID},
		PlantID:       plantID,
		UnreadCounts:  map[string]int{senderID: 0, receiverID: 0},
		CreatedAt:     at,
		LastMessageAt: at,
	}, nil
}

// HasParticipant 判断用户是否在会话里。
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// RegisterMessage 记录一条新消息: 更新摘要并给除发送者外的
// 所有参与者加未读数。
func (c *Conversation) RegisterMessage(senderID, text string, at time.Time) {
	c.LastMessage = &MessagePreview{SenderID: senderID, Text: text, SentAt: at}
	c.LastMessageAt = at
	if c.UnreadCounts == nil {
		c.UnreadCounts = make(map[string]int)
	}
	for _, p := range c.Participants {
		if p != senderID {
			c.UnreadCounts[p]++
		}
	}
}

// MarkRead 清零某个参与者的未读数。
func (c *Conversation) MarkRead(userID string) {
	if c.UnreadCounts != nil {
		c.UnreadCounts[userID] = 0
	}
}

// Message 会话中的一条消息。
type Message struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversationId"`
	SenderID       string     `json:"senderId"`
	Text           string     `json:"text"`
	SentAt         time.Time  `json:"sentAt"`
	Read           bool       `json:"read"`
	ReadAt         *time.Time `json:"readAt,omitempty"`
}
