// cmd/watering-scheduler/main.go
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"verdant/internal/pkg/bootstrap"
	"verdant/internal/pkg/database"
	"verdant/internal/pkg/httpclient"
	"verdant/internal/pkg/logger"
	"verdant/internal/service/watering/adapter"
	"verdant/internal/service/watering/application"
	"verdant/internal/service/watering/infrastructure"
	"verdant/internal/zookeeper"
)

const (
	serviceName = "watering-scheduler"
	servicePort = 8085

	// 排程每小时对一次表，真正的状态推进由"每日一次"的
	// lastWateringUpdate 戳保证，多跑只是空转
	updateInterval = time.Hour
	// 提醒窗口是 ±30 分钟，轮询间隔必须小于窗口宽度
	reminderInterval = 15 * time.Minute

	zkLockResource = "watering-daily-run"
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

	zkConn, err := zookeeper.Connect(cfg.Infra.Zookeeper.Servers, 5*time.Second)
	if err != nil {
		panic(errors.Wrap(err, "FATAL: failed to connect to zookeeper"))
	}
	defer zkConn.Close()

	weather, err := adapter.NewWeatherHTTPAdapter(httpclient.NewClient(tracer), cfg.Weather.BaseURL, cfg.Weather.APIKey)
	if err != nil {
		panic(errors.Wrap(err, "FATAL: weather service misconfigured"))
	}

	plants := infrastructure.NewGormPlantRepository(db)
	settings := infrastructure.NewGormSettingsRepository(db)
	publisher := adapter.NewReminderKafkaAdapter(cfg.Infra.Kafka.Brokers)

	updater := application.NewDailyUpdater(plants, weather, tracer)
	dispatcher := application.NewReminderDispatcher(plants, settings, publisher, tracer)

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		runLoop(ctx, updateInterval, func(runCtx context.Context) {
			runDailyUpdate(runCtx, zkConn, updater)
		})
		return nil
	})
	g.Go(func() error {
		runLoop(ctx, reminderInterval, func(runCtx context.Context) {
			if err := dispatcher.Run(runCtx); err != nil {
				logger.Ctx(runCtx).Error().Err(err).Msg("reminder dispatch failed")
			}
		})
		return nil
	})

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			// 手工触发入口，运维排障用
			appCtx.Mux.HandleFunc("/trigger", func(w http.ResponseWriter, r *http.Request) {
				runDailyUpdate(r.Context(), zkConn, updater)
				w.WriteHeader(http.StatusAccepted)
			})
		},
		OnShutdown: func(shutdownCtx context.Context) {
			cancel()
			_ = g.Wait()
			if err := publisher.Close(); err != nil {
				logger.L().Warn().Err(err).Msg("failed to close kafka writer")
			}
		},
	})
}

// runLoop 启动时先跑一轮，之后按间隔触发，ctx 取消即退出。
func runLoop(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	fn(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// runDailyUpdate 在 Zookeeper 锁的保护下跑每日更新，保证同一时刻
// 只有一个实例在推进排程。抢不到锁说明别的实例正在跑，直接跳过。
func runDailyUpdate(ctx context.Context, zkConn *zookeeper.Conn, updater *application.DailyUpdater) {
	lock, err := zookeeper.NewDistributedLock(zkConn, zkLockResource)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to create distributed lock")
		return
	}

	if err := lock.TryLock(); err != nil {
		if errors.Is(err, zookeeper.ErrLockHeld) {
			logger.Ctx(ctx).Info().Msg("daily update already running elsewhere, skipping")
			return
		}
		logger.Ctx(ctx).Error().Err(err).Msg("failed to acquire distributed lock")
		return
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("failed to release distributed lock")
		}
	}()

	if err := updater.Run(ctx); err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("daily watering update failed")
	}
}
