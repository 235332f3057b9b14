package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"verdant/internal/service/chat/domain"
	"verdant/internal/service/chat/port"
)

// fakeConversationRepo 内存会话仓储。
type fakeConversationRepo struct {
	conversations map[string]*domain.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[string]*domain.Conversation)}
}

func (f *fakeConversationRepo) FindBetween(ctx context.Context, userA, userB, plantID string) (*domain.Conversation, error) {
	for _, c := range f.conversations {
		if c.PlantID == plantID && c.HasParticipant(userA) && c.HasParticipant(userB) {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeConversationRepo) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	c, ok := f.conversations[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	return c, nil
}

func (f *fakeConversationRepo) Save(ctx context.Context, c *domain.Conversation) error {
	f.conversations[c.ID] = c
	return nil
}

func (f *fakeConversationRepo) ListForUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	var out []*domain.Conversation
	for _, c := range f.conversations {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

// fakeMessageRepo 内存消息仓储。
type fakeMessageRepo struct {
	messages []*domain.Message
}

func (f *fakeMessageRepo) Append(ctx context.Context, m *domain.Message) error {
	f.messages = append(f.messages, m)
	return nil
}

func (f *fakeMessageRepo) ListByConversation(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	var out []*domain.Message
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) MarkRead(ctx context.Context, conversationID, readerID string, at time.Time) error {
	for _, m := range f.messages {
		if m.ConversationID == conversationID && m.SenderID != readerID {
			m.Read = true
			m.ReadAt = &at
		}
	}
	return nil
}

type fakeMessagePublisher struct {
	events []*port.MessageEvent
}

func (f *fakeMessagePublisher) PublishNewMessage(ctx context.Context, event *port.MessageEvent) error {
	f.events = append(f.events, event)
	return nil
}

func newChatService(convs *fakeConversationRepo, msgs *fakeMessageRepo, pub *fakeMessagePublisher) *ChatService {
	s := NewChatService(convs, msgs, pub, otel.Tracer("test"))
	s.now = func() time.Time { return time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestStartChat_CreatesConversationWithFirstMessage(t *testing.T) {
	convs := newFakeConversationRepo()
	msgs := &fakeMessageRepo{}
	pub := &fakeMessagePublisher{}
	svc := newChatService(convs, msgs, pub)

	result, err := svc.StartChat(context.Background(), "buyer", "seller", "plant-1", "Is this still available?")
	require.NoError(t, err)
	assert.True(t, result.IsNew)

	conversation := convs.conversations[result.ConversationID]
	require.NotNil(t, conversation)
	assert.Equal(t, 1, conversation.UnreadCounts["seller"])
	assert.Equal(t, 0, conversation.UnreadCounts["buyer"])
	require.Len(t, msgs.messages, 1)
	assert.Equal(t, "Is this still available?", msgs.messages[0].Text)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "seller", pub.events[0].ReceiverID)
}

func TestStartChat_ReusesExistingConversation(t *testing.T) {
	convs := newFakeConversationRepo()
	msgs := &fakeMessageRepo{}
	svc := newChatService(convs, msgs, &fakeMessagePublisher{})

	first, err := svc.StartChat(context.Background(), "buyer", "seller", "plant-1", "hello")
	require.NoError(t, err)

	// 同一对用户同一植物 -> 复用；参数顺序无关
	second, err := svc.StartChat(context.Background(), "seller", "buyer", "plant-1", "hi again")
	require.NoError(t, err)
	assert.False(t, second.IsNew)
	assert.Equal(t, first.ConversationID, second.ConversationID)

	// 另一棵植物 -> 新会话
	third, err := svc.StartChat(context.Background(), "buyer", "seller", "plant-2", "and this one?")
	require.NoError(t, err)
	assert.True(t, third.IsNew)
	assert.NotEqual(t, first.ConversationID, third.ConversationID)
}

func TestStartChat_Validation(t *testing.T) {
	svc := newChatService(newFakeConversationRepo(), &fakeMessageRepo{}, &fakeMessagePublisher{})

	_, err := svc.StartChat(context.Background(), "buyer", "seller", "plant-1", "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)

	_, err = svc.StartChat(context.Background(), "buyer", "buyer", "plant-1", "hello me")
	assert.ErrorIs(t, err, domain.ErrInvalidParticipants)
}

func TestSendMessage_IncrementsUnreadForReceiverOnly(t *testing.T) {
	convs := newFakeConversationRepo()
	svc := newChatService(convs, &fakeMessageRepo{}, &fakeMessagePublisher{})

	result, err := svc.StartChat(context.Background(), "buyer", "seller", "plant-1", "first")
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), result.ConversationID, "buyer", "second")
	require.NoError(t, err)

	conversation := convs.conversations[result.ConversationID]
	assert.Equal(t, 2, conversation.UnreadCounts["seller"])
	assert.Equal(t, 0, conversation.UnreadCounts["buyer"])
	assert.Equal(t, "second", conversation.LastMessage.Text)
}

func TestSendMessage_RejectsOutsiders(t *testing.T) {
	convs := newFakeConversationRepo()
	svc := newChatService(convs, &fakeMessageRepo{}, &fakeMessagePublisher{})

	result, err := svc.StartChat(context.Background(), "buyer", "seller", "plant-1", "first")
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), result.ConversationID, "stranger", "let me in")
	assert.ErrorIs(t, err, domain.ErrNotParticipant)

	_, err = svc.SendMessage(context.Background(), "no-such-conversation", "buyer", "hello")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestGetMessages_ResetsUnreadAndMarksRead(t *testing.T) {
	convs := newFakeConversationRepo()
	msgs := &fakeMessageRepo{}
	svc := newChatService(convs, msgs, &fakeMessagePublisher{})

	result, err := svc.StartChat(context.Background(), "buyer", "seller", "plant-1", "first")
	require.NoError(t, err)
	_, err = svc.SendMessage(context.Background(), result.ConversationID, "buyer", "second")
	require.NoError(t, err)

	messages, err := svc.GetMessages(context.Background(), result.ConversationID, "seller")
	require.NoError(t, err)
	require.Len(t, messages, 2)

	conversation := convs.conversations[result.ConversationID]
	assert.Equal(t, 0, conversation.UnreadCounts["seller"])
	for _, m := range msgs.messages {
		assert.True(t, m.Read, "message %s", m.ID)
	}
}
