// internal/service/watering/application/updater.go
package application

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"verdant/internal/pkg/logger"
	"verdant/internal/service/watering/domain"
	"verdant/internal/service/watering/port"
)

// DailyUpdater 是浇水倒计时的日更跑批:
// 按商家逐个处理，查询一次天气，对商家的每株植物做状态迁移并写回。
// 整个过程是顺序的，单个商家的失败被隔离，不会中断整轮。
type DailyUpdater struct {
	plants  domain.PlantRepository
	weather port.WeatherService
	tracer  trace.Tracer

	// now 可注入，测试用固定日期驱动衰减/幂等路径
	now func() time.Time
}

// NewDailyUpdater 创建日更跑批实例。
func NewDailyUpdater(plants domain.PlantRepository, weather port.WeatherService, tracer trace.Tracer) *DailyUpdater {
	return &DailyUpdater{
		plants:  plants,
		weather: weather,
		tracer:  tracer,
		now:     time.Now,
	}
}

// Run 执行一轮日更。只有商家发现这一步的失败会让整轮失败，
// 之后的一切错误都缩小到单个商家范围。
func (u *DailyUpdater) Run(ctx context.Context) error {
	ctx, span := u.tracer.Start(ctx, "watering.DailyUpdate")
	defer span.End()

	businessIDs, err := u.plants.ListBusinessIDs(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to discover businesses with plants: %w", err)
	}
	span.SetAttributes(attribute.Int("watering.business_count", len(businessIDs)))

	logger.Ctx(ctx).Info().Int("businesses", len(businessIDs)).Msg("daily watering update started")

	for _, businessID := range businessIDs {
		if err := u.processBusiness(ctx, businessID); err != nil {
			// 按商家隔离: 记录并继续处理下一个商家
			businessesFailed.Inc()
			logger.Ctx(ctx).Error().Err(err).Str("business_id", businessID).
				Msg("failed to update watering schedules for business")
			continue
		}
	}

	logger.Ctx(ctx).Info().Msg("daily watering update completed")
	return nil
}

// processBusiness 处理单个商家: 代表坐标 -> 天气 -> 全量植物状态迁移 -> 写回。
func (u *DailyUpdater) processBusiness(ctx context.Context, businessID string) error {
	ctx, span := u.tracer.Start(ctx, "watering.ProcessBusiness", trace.WithAttributes(
		attribute.String("business.id", businessID),
	))
	defer span.End()

	location, err := u.plants.RepresentativeLocation(ctx, businessID)
	if err != nil {
		return fmt.Errorf("failed to resolve representative location: %w", err)
	}
	if location == nil {
		// 没有任何植物带 GPS 坐标，跳过整个商家
		businessesSkipped.Inc()
		span.AddEvent("BusinessSkippedNoCoordinates")
		logger.Ctx(ctx).Warn().Str("business_id", businessID).
			Msg("no GPS coordinates found for business, skipping")
		return nil
	}

	hasRained := u.checkRain(ctx, businessID, location)
	span.SetAttributes(attribute.Bool("weather.has_rained", hasRained))
	if hasRained {
		rainResets.Inc()
	}

	plants, err := u.plants.ListPlants(ctx, businessID)
	if err != nil {
		return fmt.Errorf("failed to load plants: %w", err)
	}

	today := u.now().UTC().Format(domain.DateLayout)
	var updated int
	for _, plant := range plants {
		if !plant.ApplyDailyUpdate(hasRained, today) {
			continue
		}
		// 逐条写回；单条失败不回滚已写入的条目
		if err := u.plants.UpsertSchedule(ctx, plant); err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("business_id", businessID).
				Str("plant_id", plant.ID).
				Msg("failed to persist watering schedule")
			continue
		}
		updated++
	}

	plantsUpdated.Add(float64(updated))
	businessesProcessed.Inc()
	span.SetAttributes(attribute.Int("watering.plants_updated", updated))
	logger.Ctx(ctx).Info().
		Str("business_id", businessID).
		Bool("has_rained", hasRained).
		Int("plants_updated", updated).
		Msg("business watering schedules reconciled")
	return nil
}

// checkRain 查询天气并分类降雨。取不到或取到畸形数据都按"没有下雨"处理。
func (u *DailyUpdater) checkRain(ctx context.Context, businessID string, loc *domain.GPSCoordinates) bool {
	report, err := u.weather.FetchCurrent(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("business_id", businessID).
			Msg("weather lookup failed, assuming no rain")
		return false
	}
	return report.HasRained()
}
