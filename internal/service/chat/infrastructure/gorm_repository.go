// internal/service/chat/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"verdant/internal/service/chat/domain"
)

// GormConversationRepository 基于 MySQL 的会话仓储。
type GormConversationRepository struct {
	db *gorm.DB
}

func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

func participantPair(userA, userB string) (low, high string) {
	if userA < userB {
		return userA, userB
	}
	return userB, userA
}

func (r *GormConversationRepository) FindBetween(ctx context.Context, userA, userB, plantID string) (*domain.Conversation, error) {
	low, high := participantPair(userA, userB)

	var model ConversationModel
	err := r.db.WithContext(ctx).
		Where("participant_low = ? AND participant_high = ? AND plant_id = ?", low, high, plantID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find conversation")
	}
	return toDomainConversation(&model), nil
}

func (r *GormConversationRepository) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	var model ConversationModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrConversationNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find conversation")
	}
	return toDomainConversation(&model), nil
}

func (r *GormConversationRepository) Save(ctx context.Context, conversation *domain.Conversation) error {
	return r.db.WithContext(ctx).Save(toConversationModel(conversation)).Error
}

func (r *GormConversationRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	var models []*ConversationModel
	err := r.db.WithContext(ctx).
		Where("participant_low = ? OR participant_high = ?", userID, userID).
		Order("last_message_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list conversations")
	}

	conversations := make([]*domain.Conversation, 0, len(models))
	for _, m := range models {
		conversations = append(conversations, toDomainConversation(m))
	}
	return conversations, nil
}

func toDomainConversation(m *ConversationModel) *domain.Conversation {
	c := &domain.Conversation{
		ID:            m.ID,
		Participants:  m.Participants,
		PlantID:       m.PlantID,
		UnreadCounts:  m.UnreadCounts,
		LastMessageAt: m.LastMessageAt,
		CreatedAt:     m.CreatedAt,
	}
	if m.LastMessageText != "" || m.LastMessageSender != "" {
		c.LastMessage = &domain.MessagePreview{
			SenderID: m.LastMessageSender,
			Text:     m.LastMessageText,
			SentAt:   m.LastMessageAt,
		}
	}
	return c
}

func toConversationModel(c *domain.Conversation) *ConversationModel {
	low, high := "", ""
	if len(c.Participants) == 2 {
		low, high = participantPair(c.Participants[0], c.Participants[1])
	}
	m := &ConversationModel{
		ID:              c.ID,
		ParticipantLow:  low,
		ParticipantHigh: high,
		PlantID:         c.PlantID,
		Participants:    c.Participants,
		UnreadCounts:    c.UnreadCounts,
		LastMessageAt:   c.LastMessageAt,
		CreatedAt:       c.CreatedAt,
	}
	if c.LastMessage != nil {
		m.LastMessageSender = c.LastMessage.SenderID
		m.LastMessageText = c.LastMessage.Text
	}
	return m
}

// GormMessageRepository 基于 MySQL 的消息仓储。
type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Append(ctx context.Context, message *domain.Message) error {
	model := &MessageModel{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		SenderID:       message.SenderID,
		Text:           message.Text,
		SentAt:         message.SentAt,
		Read:           message.Read,
		ReadAt:         message.ReadAt,
	}
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *GormMessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	var models []*MessageModel
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sent_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list messages")
	}

	messages := make([]*domain.Message, 0, len(models))
	for _, m := range models {
		messages = append(messages, &domain.Message{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			SenderID:       m.SenderID,
			Text:           m.Text,
			SentAt:         m.SentAt,
			Read:           m.Read,
			ReadAt:         m.ReadAt,
		})
	}
	return messages, nil
}

func (r *GormMessageRepository) MarkRead(ctx context.Context, conversationID, readerID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("conversation_id = ? AND sender_id <> ? AND `read` = ?", conversationID, readerID, false).
		Updates(map[string]interface{}{"read": true, "read_at": at}).Error
}
