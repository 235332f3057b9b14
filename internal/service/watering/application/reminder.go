// internal/service/watering/application/reminder.go
package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"verdant/internal/pkg/logger"
	"verdant/internal/service/watering/domain"
	"verdant/internal/service/watering/port"
)

const reminderTitle = "Plant Watering Reminder"

// 提醒窗口: 提醒时刻前后各 30 分钟内都算命中，
// 调度周期比窗口小得多，保证不会漏发。
const reminderWindow = 30 * time.Minute

// ReminderDispatcher 在商家配置的提醒时刻附近，收集需要浇水的植物，
// 组装摘要文案并发布提醒事件。
type ReminderDispatcher struct {
	plants    domain.PlantRepository
	settings  domain.SettingsRepository
	publisher port.ReminderPublisher
	tracer    trace.Tracer

	now func() time.Time
}

// NewReminderDispatcher 创建提醒分发器。
func NewReminderDispatcher(
	plants domain.PlantRepository,
	settings domain.SettingsRepository,
	publisher port.ReminderPublisher,
	tracer trace.Tracer,
) *ReminderDispatcher {
	return &ReminderDispatcher{
		plants:    plants,
		settings:  settings,
		publisher: publisher,
		tracer:    tracer,
		now:       time.Now,
	}
}

// Run 执行一轮提醒检查。和日更一样，商家级失败被隔离。
func (d *ReminderDispatcher) Run(ctx context.Context) error {
	ctx, span := d.tracer.Start(ctx, "watering.DispatchReminders")
	defer span.End()

	now := d.now().UTC()
	start := now.Add(-reminderWindow).Format("15:04")
	end := now.Add(reminderWindow).Format("15:04")

	businessIDs, err := d.settings.ListBusinessesInWindow(ctx, start, end)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to find businesses in notification window: %w", err)
	}
	span.SetAttributes(
		attribute.String("window.start", start),
		attribute.String("window.end", end),
		attribute.Int("business_count", len(businessIDs)),
	)

	for _, businessID := range businessIDs {
		if err := d.processBusiness(ctx, businessID); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("business_id", businessID).
				Msg("failed to dispatch watering reminder")
			continue
		}
	}
	return nil
}

func (d *ReminderDispatcher) processBusiness(ctx context.Context, businessID string) error {
	ctx, span := d.tracer.Start(ctx, "watering.DispatchBusinessReminder", trace.WithAttributes(
		attribute.String("business.id", businessID),
	))
	defer span.End()

	plants, err := d.plants.ListPlantsNeedingWater(ctx, businessID)
	if err != nil {
		return fmt.Errorf("failed to list plants needing water: %w", err)
	}
	if len(plants) == 0 {
		logger.Ctx(ctx).Debug().Str("business_id", businessID).Msg("no plants need watering")
		return nil
	}

	settings, err := d.settings.ListActiveSettings(ctx, businessID)
	if err != nil {
		return fmt.Errorf("failed to load notification settings: %w", err)
	}
	if len(settings) == 0 {
		logger.Ctx(ctx).Debug().Str("business_id", businessID).Msg("no active notification settings")
		return nil
	}

	// 去重后的设备 token 全集
	seen := make(map[string]struct{})
	var tokens []string
	var rule string
	for _, s := range settings {
		if rule == "" {
			rule = s.DeliveryRule
		}
		for _, t := range s.DeviceTokens {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tokens = append(tokens, t)
		}
	}
	if len(tokens) == 0 {
		logger.Ctx(ctx).Debug().Str("business_id", businessID).Msg("no device tokens registered")
		return nil
	}

	sentAt := d.now().UTC()
	event := &port.WateringReminderEvent{
		BusinessID:   businessID,
		Title:        reminderTitle,
		Body:         reminderBody(plants),
		PlantCount:   len(plants),
		DeviceTokens: tokens,
		DeliveryRule: rule,
		Timestamp:    sentAt.Format(time.RFC3339),
	}
	if err := d.publisher.Publish(ctx, event); err != nil {
		return fmt.Errorf("failed to publish reminder event: %w", err)
	}
	remindersPublished.Inc()

	for _, s := range settings {
		if err := d.settings.MarkSent(ctx, s.ID, sentAt); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("setting_id", s.ID).
				Msg("failed to stamp lastSent on notification setting")
		}
	}

	logger.Ctx(ctx).Info().
		Str("business_id", businessID).
		Int("plants", len(plants)).
		Int("devices", len(tokens)).
		Msg("watering reminder dispatched")
	return nil
}

// reminderBody 组装摘要文案: 最多点名三株，其余折叠为数量。
func reminderBody(plants []*domain.Plant) string {
	names := make([]string, 0, 3)
	for i, p := range plants {
		if i == 3 {
			break
		}
		names = append(names, p.DisplayName())
	}

	switch {
	case len(plants) == 1:
		return fmt.Sprintf("%s needs watering today.", names[0])
	case len(plants) <= 3:
		return fmt.Sprintf("%s need watering today.", strings.Join(names, ", "))
	default:
		return fmt.Sprintf("%s and %d more plants need watering today.",
			strings.Join(names, ", "), len(plants)-3)
	}
}
