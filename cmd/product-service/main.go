// cmd/product-service/main.go
package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"verdant/internal/pkg/bootstrap"
	"verdant/internal/pkg/database"
	"verdant/internal/pkg/httpclient"
	"verdant/internal/pkg/logger"
	"verdant/internal/pkg/redis"
	"verdant/internal/service/catalog/application"
	"verdant/internal/service/catalog/infrastructure"
	"verdant/internal/service/catalog/interfaces"
)

const (
	serviceName = "product-service"
	servicePort = 8081
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

	cache, err := redis.NewClient(cfg.Infra.Redis.Addr, cfg.Infra.Redis.Password)
	if err != nil {
		panic(errors.Wrap(err, "FATAL: failed to connect to redis"))
	}

	geocoder := infrastructure.NewCachedGeocoder(cache, httpclient.NewClient(tracer), cfg.Geocode.BaseURL)
	service := application.NewCatalogService(
		infrastructure.NewGormProductRepository(db),
		infrastructure.NewGormWishlistRepository(db),
		geocoder,
		tracer,
	)
	handler := interfaces.NewProductHandler(service)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
		},
		OnShutdown: func(ctx context.Context) {
			if err := cache.Close(); err != nil {
				logger.L().Warn().Err(err).Msg("failed to close redis client")
			}
		},
	})
}
