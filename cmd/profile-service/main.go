// cmd/profile-service/main.go
package main

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"verdant/internal/pkg/bootstrap"
	"verdant/internal/pkg/database"
	"verdant/internal/service/profile/application"
	"verdant/internal/service/profile/infrastructure"
	"verdant/internal/service/profile/interfaces"
)

const (
	serviceName = "profile-service"
	servicePort = 8084
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

	service := application.NewProfileService(
		infrastructure.NewGormBusinessRepository(db),
		infrastructure.NewGormUserRepository(db),
		infrastructure.NewGormRatingSource(db),
		tracer,
	)
	handler := interfaces.NewProfileHandler(service)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
		},
	})
}
