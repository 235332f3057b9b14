// cmd/notification-service/main.go
package main

import (
	"context"
	"encoding/json"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"verdant/internal/pkg/bootstrap"
	"verdant/internal/pkg/logger"
	"verdant/internal/pkg/mq"
	"verdant/internal/pkg/session"
	"verdant/internal/service/notification/adapter"
	"verdant/internal/service/notification/application"
	"verdant/internal/service/notification/port"
	wateringadapter "verdant/internal/service/watering/adapter"
)

const (
	serviceName     = "notification-service"
	servicePort     = 8086
	consumerGroupID = "notification-group"
)

var tracer = otel.Tracer(serviceName)

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	sessions := session.NewManager(cfg.Infra.Redis.Addr)
	publisher := adapter.NewPushKafkaAdapter(cfg.Infra.Kafka.Brokers)
	router := application.NewRouter(sessions, publisher, tracer)

	reader := mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, wateringadapter.ReminderTopic, consumerGroupID)

	consumerCtx, cancel := context.WithCancel(context.Background())
	go consumeLoop(consumerCtx, reader, router)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
		},
		OnShutdown: func(shutdownCtx context.Context) {
			cancel()
			if err := reader.Close(); err != nil {
				logger.L().Warn().Err(err).Msg("failed to close kafka reader")
			}
			if err := publisher.Close(); err != nil {
				logger.L().Warn().Err(err).Msg("failed to close kafka writers")
			}
		},
	})
}

func consumeLoop(ctx context.Context, reader *kafka.Reader, router *application.Router) {
	logger.L().Info().Str("topic", wateringadapter.ReminderTopic).Msg("consuming watering reminders")
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.L().Error().Err(err).Msg("could not read message")
			continue
		}
		go processReminder(router, msg)
	}
}

// processReminder 处理单条提醒事件，把消费者挂回上游追踪链路。
func processReminder(router *application.Router, msg kafka.Message) {
	ctx := mq.ExtractTraceContext(context.Background(), msg.Headers)
	ctx, span := tracer.Start(ctx, "notification-service.ProcessReminder",
		trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	var event port.ReminderEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal reminder event")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	if err := router.Route(ctx, &event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("business_id", event.BusinessID).Msg("failed to route reminder")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
