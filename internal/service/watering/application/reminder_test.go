package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"verdant/internal/service/watering/domain"
	"verdant/internal/service/watering/port"
)

// fakeSettingsRepo 是 domain.SettingsRepository 的内存实现。
type fakeSettingsRepo struct {
	settings map[string][]*domain.NotificationSetting
	sent     map[string]time.Time
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{
		settings: make(map[string][]*domain.NotificationSetting),
		sent:     make(map[string]time.Time),
	}
}

func (f *fakeSettingsRepo) ListBusinessesInWindow(ctx context.Context, start, end string) ([]string, error) {
	var ids []string
	for id := range f.settings {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeSettingsRepo) ListActiveSettings(ctx context.Context, businessID string) ([]*domain.NotificationSetting, error) {
	return f.settings[businessID], nil
}

func (f *fakeSettingsRepo) MarkSent(ctx context.Context, settingID string, at time.Time) error {
	f.sent[settingID] = at
	return nil
}

// fakePublisher 记录发布的事件。
type fakePublisher struct {
	events []*port.WateringReminderEvent
}

func (f *fakePublisher) Publish(ctx context.Context, event *port.WateringReminderEvent) error {
	f.events = append(f.events, event)
	return nil
}

func needsWater(id, businessID, name string) *domain.Plant {
	return &domain.Plant{
		ID: id, BusinessID: businessID, Name: name,
		Schedule: &domain.WateringSchedule{NeedsWatering: true},
	}
}

func newDispatcher(plants *fakePlantRepo, settings *fakeSettingsRepo, pub *fakePublisher) *ReminderDispatcher {
	d := NewReminderDispatcher(plants, settings, pub, otel.Tracer("test"))
	d.now = func() time.Time { return time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC) }
	return d
}

func TestDispatch_SinglePlantBody(t *testing.T) {
	plants := newFakePlantRepo()
	plants.add(needsWater("p1", "b1", "Monstera"))
	settings := newFakeSettingsRepo()
	settings.settings["b1"] = []*domain.NotificationSetting{
		{ID: "s1", BusinessID: "b1", DeviceTokens: []string{"tok-1"}, Status: "active"},
	}
	pub := &fakePublisher{}

	require.NoError(t, newDispatcher(plants, settings, pub).Run(context.Background()))

	require.Len(t, pub.events, 1)
	event := pub.events[0]
	assert.Equal(t, "Monstera needs watering today.", event.Body)
	assert.Equal(t, 1, event.PlantCount)
	assert.Equal(t, []string{"tok-1"}, event.DeviceTokens)
	assert.Contains(t, settings.sent, "s1")
}

func TestDispatch_ManyPlantsBodyIsFolded(t *testing.T) {
	plants := newFakePlantRepo()
	plants.add(needsWater("p1", "b1", "Monstera"))
	plants.add(needsWater("p2", "b1", "Ficus"))
	plants.add(needsWater("p3", "b1", "Basil"))
	plants.add(needsWater("p4", "b1", "Aloe"))
	plants.add(needsWater("p5", "b1", "Fern"))
	settings := newFakeSettingsRepo()
	settings.settings["b1"] = []*domain.NotificationSetting{
		{ID: "s1", BusinessID: "b1", DeviceTokens: []string{"tok-1"}, Status: "active"},
	}
	pub := &fakePublisher{}

	require.NoError(t, newDispatcher(plants, settings, pub).Run(context.Background()))

	require.Len(t, pub.events, 1)
	assert.Equal(t, "Monstera, Ficus, Basil and 2 more plants need watering today.", pub.events[0].Body)
	assert.Equal(t, 5, pub.events[0].PlantCount)
}

func TestDispatch_NoPlantsNeedingWaterPublishesNothing(t *testing.T) {
	plants := newFakePlantRepo()
	plants.add(&domain.Plant{
		ID: "p1", BusinessID: "b1",
		Schedule: &domain.WateringSchedule{NeedsWatering: false},
	})
	settings := newFakeSettingsRepo()
	settings.settings["b1"] = []*domain.NotificationSetting{
		{ID: "s1", BusinessID: "b1", DeviceTokens: []string{"tok-1"}, Status: "active"},
	}
	pub := &fakePublisher{}

	require.NoError(t, newDispatcher(plants, settings, pub).Run(context.Background()))
	assert.Empty(t, pub.events)
	assert.Empty(t, settings.sent)
}

func TestDispatch_DeviceTokensAreDeduplicated(t *testing.T) {
	plants := newFakePlantRepo()
	plants.add(needsWater("p1", "b1", "Monstera"))
	settings := newFakeSettingsRepo()
	settings.settings["b1"] = []*domain.NotificationSetting{
		{ID: "s1", BusinessID: "b1", DeviceTokens: []string{"tok-1", "tok-2"}, Status: "active"},
		{ID: "s2", BusinessID: "b1", DeviceTokens: []string{"tok-2", "tok-3"}, Status: "active"},
	}
	pub := &fakePublisher{}

	require.NoError(t, newDispatcher(plants, settings, pub).Run(context.Background()))

	require.Len(t, pub.events, 1)
	assert.ElementsMatch(t, []string{"tok-1", "tok-2", "tok-3"}, pub.events[0].DeviceTokens)
	// 每条配置都要盖 lastSent 章
	assert.Len(t, settings.sent, 2)
}
