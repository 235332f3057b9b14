// cmd/chat-service/main.go
package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"verdant/internal/pkg/bootstrap"
	"verdant/internal/pkg/database"
	"verdant/internal/pkg/logger"
	"verdant/internal/service/chat/adapter"
	"verdant/internal/service/chat/application"
	"verdant/internal/service/chat/infrastructure"
	"verdant/internal/service/chat/interfaces"
)

const (
	serviceName = "chat-service"
	servicePort = 8082
)

var tracer = otel.Tracer(serviceName)

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	db, err := database.Open(database.MysqlConfig{
		Host:     cfg.Infra.Mysql.Host,
		Port:     cfg.Infra.Mysql.Port,
		User:     cfg.Infra.Mysql.User,
		Password: cfg.Infra.Mysql.Password,
		Database: cfg.Infra.Mysql.Database,
	})
	if err != nil {
		panic(errors.Wrap(err, "FATAL: failed to connect to mysql"))
	}

	publisher := adapter.NewMessageKafkaAdapter(cfg.Infra.Kafka.Brokers)
	service := application.NewChatService(
		infrastructure.NewGormConversationRepository(db),
		infrastructure.NewGormMessageRepository(db),
		publisher,
		tracer,
	)
	handler := interfaces.NewChatHandler(service)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
		},
		OnShutdown: func(ctx context.Context) {
			if err := publisher.Close(); err != nil {
				logger.L().Warn().Err(err).Msg("failed to close kafka writer")
			}
		},
	})
}
