// internal/service/chat/application/service.go
package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"verdant/internal/pkg/logger"
	"verdant/internal/service/chat/domain"
	"verdant/internal/service/chat/port"
)

// StartChatResult 发起会话的结果。
type StartChatResult struct {
	ConversationID string `json:"conversationId"`
	IsNew          bool   `json:"isNew"`
}

// ChatService 买卖双方围绕植物的站内聊天。
type ChatService struct {
	conversations domain.ConversationRepository
	messages      domain.MessageRepository
	publisher     port.MessagePublisher
	tracer        trace.Tracer

	now func() time.Time
}

func NewChatService(conversations domain.ConversationRepository, messages domain.MessageRepository, publisher port.MessagePublisher, tracer trace.Tracer) *ChatService {
	return &ChatService{
		conversations: conversations,
		messages:      messages,
		publisher:     publisher,
		tracer:        tracer,
		now:           time.Now,
	}
}

// StartChat 发起会话。同一对用户对同一植物复用既有会话，
// 首条消息随发起一起写入。
func (s *ChatService) StartChat(ctx context.Context, senderID, receiverID, plantID, text string) (*StartChatResult, error) {
	ctx, span := s.tracer.Start(ctx, "ChatService.StartChat")
	defer span.End()

	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyMessage
	}

	conversation, err := s.conversations.FindBetween(ctx, senderID, receiverID, plantID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up conversation")
	}

	isNew := conversation == nil
	if isNew {
		conversation, err = domain.NewConversation(uuid.New().String(), senderID, receiverID, plantID, s.now().UTC())
		if err != nil {
			return nil, err
		}
	}
	span.SetAttributes(
		attribute.String("chat.conversation_id", conversation.ID),
		attribute.Bool("chat.is_new", isNew),
	)

	if _, err := s.appendMessage(ctx, conversation, senderID, text); err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Str("conversation_id", conversation.ID).
		Bool("is_new", isNew).
		Msg("chat started")
	return &StartChatResult{ConversationID: conversation.ID, IsNew: isNew}, nil
}

// SendMessage 向既有会话发消息，发送者必须是参与者。
func (s *ChatService) SendMessage(ctx context.Context, conversationID, senderID, text string) (*domain.Message, error) {
	ctx, span := s.tracer.Start(ctx, "ChatService.SendMessage")
	defer span.End()

	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyMessage
	}

	conversation, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(senderID) {
		return nil, domain.ErrNotParticipant
	}

	return s.appendMessage(ctx, conversation, senderID, text)
}

// GetMessages 拉取会话消息并把读者的未读清零。
func (s *ChatService) GetMessages(ctx context.Context, conversationID, userID string) ([]*domain.Message, error) {
	ctx, span := s.tracer.Start(ctx, "ChatService.GetMessages")
	defer span.End()

	conversation, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(userID) {
		return nil, domain.ErrNotParticipant
	}

	messages, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list messages")
	}

	now := s.now().UTC()
	if err := s.messages.MarkRead(ctx, conversationID, userID, now); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("conversation_id", conversationID).Msg("failed to mark messages read")
	}
	conversation.MarkRead(userID)
	if err := s.conversations.Save(ctx, conversation); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("conversation_id", conversationID).Msg("failed to reset unread count")
	}

	return messages, nil
}

// ListConversations 按最近活跃排序返回用户的会话。
func (s *ChatService) ListConversations(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	ctx, span := s.tracer.Start(ctx, "ChatService.ListConversations")
	defer span.End()

	return s.conversations.ListForUser(ctx, userID)
}

func (s *ChatService) appendMessage(ctx context.Context, conversation *domain.Conversation, senderID, text string) (*domain.Message, error) {
	now := s.now().UTC()
	message := &domain.Message{
		ID:             uuid.New().String(),
		ConversationID: conversation.ID,
		SenderID:       senderID,
		Text:           text,
		SentAt:         now,
	}

	conversation.RegisterMessage(senderID, text, now)
	if err := s.conversations.Save(ctx, conversation); err != nil {
		return nil, errors.Wrap(err, "failed to save conversation")
	}
	if err := s.messages.Append(ctx, message); err != nil {
		return nil, errors.Wrap(err, "failed to append message")
	}

	// 推送事件尽力而为，失败不影响消息本身
	for _, p := range conversation.Participants {
		if p == senderID {
			continue
		}
		event := &port.MessageEvent{
			ConversationID: conversation.ID,
			MessageID:      message.ID,
			SenderID:       senderID,
			ReceiverID:     p,
			Text:           text,
			SentAt:         now,
		}
		if err := s.publisher.PublishNewMessage(ctx, event); err != nil {
			logger.Ctx(ctx).Warn().Err(err).
				Str("conversation_id", conversation.ID).
				Msg("failed to publish message event")
		}
	}
	return message, nil
}
