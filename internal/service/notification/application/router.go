// internal/service/notification/application/router.go
package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"verdant/internal/pkg/logger"
	"verdant/internal/pkg/session"
	"verdant/internal/service/notification/domain"
	"verdant/internal/service/notification/port"
)

const pushTypeWateringReminder = "watering_reminder"

// Router 消费浇水提醒事件，按商家的投递规则过滤后，
// 把消息扇出到各设备所在的推送网关节点。
type Router struct {
	sessions  port.SessionResolver
	publisher port.NodePublisher
	tracer    trace.Tracer

	now func() time.Time
}

func NewRouter(sessions port.SessionResolver, publisher port.NodePublisher, tracer trace.Tracer) *Router {
	return &Router{
		sessions:  sessions,
		publisher: publisher,
		tracer:    tracer,
		now:       time.Now,
	}
}

// Route 处理一条提醒事件。规则编译或求值失败时按放行处理，
// 提醒宁可多发不可漏发。
func (r *Router) Route(ctx context.Context, event *port.ReminderEvent) error {
	ctx, span := r.tracer.Start(ctx, "NotificationRouter.Route")
	defer span.End()
	span.SetAttributes(
		attribute.String("business.id", event.BusinessID),
		attribute.Int("reminder.plant_count", event.PlantCount),
		attribute.Int("reminder.device_count", len(event.DeviceTokens)),
	)

	if !r.ruleAllows(ctx, event) {
		logger.Ctx(ctx).Info().
			Str("business_id", event.BusinessID).
			Str("rule", event.DeliveryRule).
			Msg("delivery rule suppressed reminder")
		remindersSuppressed.Inc()
		return nil
	}

	delivered := 0
	for _, token := range event.DeviceTokens {
		nodeID, err := r.sessions.GetDeviceGateway(ctx, token)
		if errors.Is(err, session.ErrSessionNotFound) {
			logger.Ctx(ctx).Debug().Str("device_token", token).Msg("device offline, skipping push")
			continue
		}
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("device_token", token).Msg("session lookup failed")
			continue
		}

		msg := &port.PushMessage{
			DeviceToken: token,
			Type:        pushTypeWateringReminder,
			Title:       event.Title,
			Body:        event.Body,
			BusinessID:  event.BusinessID,
			PlantCount:  event.PlantCount,
			Timestamp:   event.Timestamp,
		}
		if err := r.publisher.PublishToNode(ctx, nodeID, msg); err != nil {
			logger.Ctx(ctx).Warn().Err(err).
				Str("device_token", token).
				Str("gateway_node", nodeID).
				Msg("failed to publish push message")
			continue
		}
		delivered++
	}

	pushesRouted.Add(float64(delivered))
	logger.Ctx(ctx).Info().
		Str("business_id", event.BusinessID).
		Int("devices", len(event.DeviceTokens)).
		Int("delivered", delivered).
		Msg("reminder routed")
	return nil
}

func (r *Router) ruleAllows(ctx context.Context, event *port.ReminderEvent) bool {
	rule, err := domain.CompileDeliveryRule(event.DeliveryRule)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).
			Str("business_id", event.BusinessID).
			Msg("invalid delivery rule, delivering anyway")
		return true
	}
	allowed, err := rule.Allow(event.PlantCount, r.now().UTC().Hour())
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).
			Str("business_id", event.BusinessID).
			Msg("delivery rule evaluation failed, delivering anyway")
		return true
	}
	return allowed
}
