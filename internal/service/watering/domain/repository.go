// internal/service/watering/domain/repository.go
package domain

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable 表示植物档案存储的连接/配额类故障。
// 调用方按业务维度捕获，不中断整轮跑批。
var ErrStoreUnavailable = errors.New("plant store unavailable")

// PlantRepository 是植物档案存储的最小契约。
type PlantRepository interface {
	// ListBusinessIDs 返回所有拥有至少一条带位置的植物档案的商家
	ListBusinessIDs(ctx context.Context) ([]string, error)
	// RepresentativeLocation 返回商家的代表坐标: 取带 GPS 坐标的
	// 植物中 id 最小的一条，保证可复现。没有则返回 (nil, nil)。
	RepresentativeLocation(ctx context.Context, businessID string) (*GPSCoordinates, error)
	// ListPlants 返回商家的全部植物档案
	ListPlants(ctx context.Context, businessID string) ([]*Plant, error)
	// ListPlantsNeedingWater 返回商家当前需要浇水的植物
	ListPlantsNeedingWater(ctx context.Context, businessID string) ([]*Plant, error)
	// UpsertSchedule 以 (id, businessId) 为键写回浇水状态。
	// 逐条写入，没有跨条目的事务保证。
	UpsertSchedule(ctx context.Context, plant *Plant) error
}

// NotificationSetting 是商家的浇水提醒配置。
type NotificationSetting struct {
	ID         string
	BusinessID string
	// NotificationTime 是期望的提醒时刻，"HH:MM" (UTC)
	NotificationTime string
	DeviceTokens     []string
	Status           string
	// DeliveryRule 是可选的 CEL 表达式，在投递侧求值
	DeliveryRule string
	LastSent     *time.Time
}

// SettingsRepository 是提醒配置存储的契约。
type SettingsRepository interface {
	// ListBusinessesInWindow 返回提醒时刻落在 [start, end] 窗口内
	// 且配置处于 active 状态的商家。窗口允许跨午夜。
	ListBusinessesInWindow(ctx context.Context, start, end string) ([]string, error)
	ListActiveSettings(ctx context.Context, businessID string) ([]*NotificationSetting, error)
	MarkSent(ctx context.Context, settingID string, at time.Time) error
}
