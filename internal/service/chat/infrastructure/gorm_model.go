// internal/service/chat/infrastructure/gorm_model.go
package infrastructure

import "time"

// ConversationModel 对应 chat_conversations 表。
// participant_low/high 是排序后的参与者对，配合 plant_id
// 组成唯一索引，保证同一对用户同一植物只有一个会话。
type ConversationModel struct {
	ID              string `gorm:"primaryKey;size:64"`
	ParticipantLow  string `gorm:"size:64;index:idx_chat_pair,unique"`
	ParticipantHigh string `gorm:"size:64;index:idx_chat_pair,unique"`
	PlantID         string `gorm:"size:64;index:idx_chat_pair,unique"`

	Participants []string       `gorm:"serializer:json"`
	UnreadCounts map[string]int `gorm:"serializer:json"`

	LastMessageSender string `gorm:"size:64"`
	LastMessageText   string `gorm:"type:text"`
	LastMessageAt     time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ConversationModel) TableName() string {
	return "chat_conversations"
}

// MessageModel 对应 chat_messages 表。
type MessageModel struct {
	ID             string `gorm:"primaryKey;size:64"`
	ConversationID string `gorm:"size:64;index"`
	SenderID       string `gorm:"size:64"`
	Text           string `gorm:"type:text"`
	SentAt         time.Time
	Read           bool
	ReadAt         *time.Time
}

func (MessageModel) TableName() string {
	return "chat_messages"
}
