// internal/service/watering/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"verdant/internal/service/watering/domain"
)

// GormPlantRepository 是 domain.PlantRepository 的 GORM 实现。
type GormPlantRepository struct {
	db *gorm.DB
}

// NewGormPlantRepository 创建一个新的 GORM 仓储实例
func NewGormPlantRepository(db *gorm.DB) *GormPlantRepository {
	return &GormPlantRepository{db: db}
}

// storeError 把底层数据库错误归类为存储不可用，保留原始信息。
func storeError(err error) error {
	return pkgerrors.Wrap(domain.ErrStoreUnavailable, err.Error())
}

// ListBusinessIDs 返回拥有带位置植物档案的商家 (去重，排序保证可复现)。
func (r *GormPlantRepository) ListBusinessIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&PlantModel{}).
		Where("product_type = ? AND latitude IS NOT NULL AND longitude IS NOT NULL", domain.ProductTypePlant).
		Distinct().
		Order("business_id ASC").
		Pluck("business_id", &ids).Error
	if err != nil {
		return nil, storeError(err)
	}
	return ids, nil
}

// RepresentativeLocation 取带 GPS 坐标的植物中 id 最小的一条作为商家坐标。
// 没有符合条件的植物时返回 (nil, nil)，由调用方按"跳过商家"处理。
func (r *GormPlantRepository) RepresentativeLocation(ctx context.Context, businessID string) (*domain.GPSCoordinates, error) {
	var model PlantModel
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND product_type = ? AND latitude IS NOT NULL AND longitude IS NOT NULL",
			businessID, domain.ProductTypePlant).
		Order("id ASC").
		First(&model).Error
	if pkgerrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError(err)
	}
	return &domain.GPSCoordinates{Latitude: *model.Latitude, Longitude: *model.Longitude}, nil
}

// ListPlants 返回商家的全部植物档案。
func (r *GormPlantRepository) ListPlants(ctx context.Context, businessID string) ([]*domain.Plant, error) {
	var models []PlantModel
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND product_type = ?", businessID, domain.ProductTypePlant).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, storeError(err)
	}

	plants := make([]*domain.Plant, 0, len(models))
	for i := range models {
		plants = append(plants, ToDomainPlant(&models[i]))
	}
	return plants, nil
}

// ListPlantsNeedingWater 返回商家当前需要浇水的植物。
func (r *GormPlantRepository) ListPlantsNeedingWater(ctx context.Context, businessID string) ([]*domain.Plant, error) {
	var models []PlantModel
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND product_type = ? AND has_schedule = ? AND needs_watering = ?",
			businessID, domain.ProductTypePlant, true, true).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, storeError(err)
	}

	plants := make([]*domain.Plant, 0, len(models))
	for i := range models {
		plants = append(plants, ToDomainPlant(&models[i]))
	}
	return plants, nil
}

// UpsertSchedule 以 (id, business_id) 为键写回浇水状态列。
// 只更新 schedule 相关列，不触碰档案的其他字段。
func (r *GormPlantRepository) UpsertSchedule(ctx context.Context, plant *domain.Plant) error {
	if plant.Schedule == nil {
		return pkgerrors.New("plant has no schedule to persist")
	}

	model := PlantModel{
		ID:                 plant.ID,
		BusinessID:         plant.BusinessID,
		ProductType:        domain.ProductTypePlant,
		HasSchedule:        true,
		ScheduleWaterDays:  plant.Schedule.WaterDays,
		ActiveWaterDays:    plant.Schedule.ActiveWaterDays,
		LastWatered:        plant.Schedule.LastWatered,
		LastWateringUpdate: plant.Schedule.LastWateringUpdate,
		NeedsWatering:      plant.Schedule.NeedsWatering,
		WeatherAffected:    plant.Schedule.WeatherAffected,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}, {Name: "business_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"has_schedule",
			"schedule_water_days",
			"active_water_days",
			"last_watered",
			"last_watering_update",
			"needs_watering",
			"weather_affected",
			"updated_at",
		}),
	}).Create(&model).Error
	if err != nil {
		return storeError(err)
	}
	return nil
}

// GormSettingsRepository 是 domain.SettingsRepository 的 GORM 实现。
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository 创建提醒配置仓储。
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// ListBusinessesInWindow 返回提醒时刻落在窗口内的商家。
// start > end 表示窗口跨午夜，此时按两段取并集。
func (r *GormSettingsRepository) ListBusinessesInWindow(ctx context.Context, start, end string) ([]string, error) {
	q := r.db.WithContext(ctx).
		Model(&NotificationSettingModel{}).
		Where("status = ?", "active")
	if start <= end {
		q = q.Where("notification_time BETWEEN ? AND ?", start, end)
	} else {
		q = q.Where("notification_time >= ? OR notification_time <= ?", start, end)
	}

	var ids []string
	if err := q.Distinct().Order("business_id ASC").Pluck("business_id", &ids).Error; err != nil {
		return nil, storeError(err)
	}
	return ids, nil
}

// ListActiveSettings 返回商家的全部 active 提醒配置。
func (r *GormSettingsRepository) ListActiveSettings(ctx context.Context, businessID string) ([]*domain.NotificationSetting, error) {
	var models []NotificationSettingModel
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND status = ?", businessID, "active").
		Find(&models).Error
	if err != nil {
		return nil, storeError(err)
	}

	settings := make([]*domain.NotificationSetting, 0, len(models))
	for i := range models {
		settings = append(settings, ToDomainSetting(&models[i]))
	}
	return settings, nil
}

// MarkSent 更新配置的 lastSent 时间戳。
func (r *GormSettingsRepository) MarkSent(ctx context.Context, settingID string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&NotificationSettingModel{}).
		Where("id = ?", settingID).
		Update("last_sent", at).Error
	if err != nil {
		return storeError(err)
	}
	return nil
}
