// internal/service/watering/infrastructure/gorm_model.go
package infrastructure

import "time"

// PlantModel 对应数据库中的 inventory 表 (浇水调度关心的列)。
// 浇水状态按列打平内嵌，Upsert 以 (id, business_id) 为联合主键。
type PlantModel struct {
	ID          string `gorm:"primaryKey;size:64"`
	BusinessID  string `gorm:"primaryKey;size:64;index"`
	ProductType string `gorm:"size:32;index"`
	Name        string `gorm:"size:255"`
	CommonName  string `gorm:"size:255"`
	WaterDays   int

	Latitude  *float64
	Longitude *float64

	// wateringSchedule 内嵌状态；HasSchedule 标记惰性创建是否已发生
	HasSchedule        bool
	ScheduleWaterDays  int
	ActiveWaterDays    int
	LastWatered        *time.Time
	LastWateringUpdate string `gorm:"size:10"`
	NeedsWatering      bool   `gorm:"index"`
	WeatherAffected    bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定 GORM 应该使用的表名
func (PlantModel) TableName() string {
	return "inventory"
}

// NotificationSettingModel 对应数据库中的 watering_notifications 表。
type NotificationSettingModel struct {
	ID         string `gorm:"primaryKey;size:64"`
	BusinessID string `gorm:"size:64;index"`
	// NotificationTime 格式 "HH:MM" (UTC)
	NotificationTime string   `gorm:"size:5"`
	DeviceTokens     []string `gorm:"serializer:json;type:text"`
	Status           string   `gorm:"size:16;index"`
	DeliveryRule     string   `gorm:"type:text"`
	LastSent         *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定 GORM 应该使用的表名
func (NotificationSettingModel) TableName() string {
	return "watering_notifications"
}
