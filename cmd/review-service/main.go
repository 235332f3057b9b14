// cmd/review-service/main.go
package main

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"verdant/internal/pkg/bootstrap"
	"verdant/internal/pkg/database"
	"verdant/internal/service/review/application"
	"verdant/internal/service/review/infrastructure"
	"verdant/internal/service/review/interfaces"
)

const (
	serviceName = "review-service"
	servicePort = 8083
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

	service := application.NewReviewService(
		infrastructure.NewGormReviewRepository(db),
		infrastructure.NewGormUserDirectory(db),
		infrastructure.NewGormRatingStore(db),
		tracer,
	)
	handler := interfaces.NewReviewHandler(service)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
		},
	})
}
