package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"verdant/internal/pkg/session"
	"verdant/internal/service/notification/port"
)

// fakeSessions 模拟 Redis 中的 设备 -> 网关节点 映射。
type fakeSessions struct {
	nodes map[string]string
	err   error
}

func (f *fakeSessions) GetDeviceGateway(ctx context.Context, token string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	node, ok := f.nodes[token]
	if !ok {
		return "", session.ErrSessionNotFound
	}
	return node, nil
}

// fakeNodePublisher 记录每个节点收到的消息。
type fakeNodePublisher struct {
	published map[string][]*port.PushMessage
	err       error
}

func newFakeNodePublisher() *fakeNodePublisher {
	return &fakeNodePublisher{published: make(map[string][]*port.PushMessage)}
}

func (f *fakeNodePublisher) PublishToNode(ctx context.Context, nodeID string, msg *port.PushMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published[nodeID] = append(f.published[nodeID], msg)
	return nil
}

func newTestRouter(sessions *fakeSessions, pub *fakeNodePublisher, hour int) *Router {
	r := NewRouter(sessions, pub, otel.Tracer("test"))
	r.now = func() time.Time { return time.Date(2026, 8, 23, hour, 0, 0, 0, time.UTC) }
	return r
}

func event(tokens []string, rule string, plantCount int) *port.ReminderEvent {
	return &port.ReminderEvent{
		BusinessID:   "b1",
		Title:        "Plant Watering Reminder",
		Body:         "Monstera needs watering today.",
		PlantCount:   plantCount,
		DeviceTokens: tokens,
		DeliveryRule: rule,
	}
}

func TestRoute_FansOutToDeviceNodes(t *testing.T) {
	sessions := &fakeSessions{nodes: map[string]string{
		"tok-1": "node-a",
		"tok-2": "node-b",
		"tok-3": "node-a",
	}}
	pub := newFakeNodePublisher()

	r := newTestRouter(sessions, pub, 10)
	require.NoError(t, r.Route(context.Background(), event([]string{"tok-1", "tok-2", "tok-3"}, "", 1)))

	assert.Len(t, pub.published["node-a"], 2)
	assert.Len(t, pub.published["node-b"], 1)
	assert.Equal(t, pushTypeWateringReminder, pub.published["node-b"][0].Type)
	assert.Equal(t, "tok-2", pub.published["node-b"][0].DeviceToken)
}

func TestRoute_OfflineDevicesAreSkipped(t *testing.T) {
	sessions := &fakeSessions{nodes: map[string]string{"tok-1": "node-a"}}
	pub := newFakeNodePublisher()

	r := newTestRouter(sessions, pub, 10)
	require.NoError(t, r.Route(context.Background(), event([]string{"tok-1", "tok-offline"}, "", 1)))

	assert.Len(t, pub.published["node-a"], 1)
	total := 0
	for _, msgs := range pub.published {
		total += len(msgs)
	}
	assert.Equal(t, 1, total)
}

func TestRoute_RuleSuppressesDelivery(t *testing.T) {
	sessions := &fakeSessions{nodes: map[string]string{"tok-1": "node-a"}}
	pub := newFakeNodePublisher()

	r := newTestRouter(sessions, pub, 10)
	require.NoError(t, r.Route(context.Background(), event([]string{"tok-1"}, "plantCount >= 3", 1)))

	assert.Empty(t, pub.published)
}

func TestRoute_RuleHonorsHourOfDay(t *testing.T) {
	sessions := &fakeSessions{nodes: map[string]string{"tok-1": "node-a"}}
	rule := "hour >= 8 && hour <= 21"

	pub := newFakeNodePublisher()
	require.NoError(t, newTestRouter(sessions, pub, 6).Route(context.Background(), event([]string{"tok-1"}, rule, 1)))
	assert.Empty(t, pub.published)

	pub = newFakeNodePublisher()
	require.NoError(t, newTestRouter(sessions, pub, 12).Route(context.Background(), event([]string{"tok-1"}, rule, 1)))
	assert.Len(t, pub.published["node-a"], 1)
}

func TestRoute_InvalidRuleFailsOpen(t *testing.T) {
	sessions := &fakeSessions{nodes: map[string]string{"tok-1": "node-a"}}
	pub := newFakeNodePublisher()

	r := newTestRouter(sessions, pub, 10)
	require.NoError(t, r.Route(context.Background(), event([]string{"tok-1"}, "plantCount >=", 1)))

	assert.Len(t, pub.published["node-a"], 1)
}

func TestRoute_SessionLookupErrorSkipsDevice(t *testing.T) {
	sessions := &fakeSessions{err: errors.New("redis gone")}
	pub := newFakeNodePublisher()

	r := newTestRouter(sessions, pub, 10)
	require.NoError(t, r.Route(context.Background(), event([]string{"tok-1"}, "", 1)))

	assert.Empty(t, pub.published)
}
