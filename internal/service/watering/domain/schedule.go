// internal/service/watering/domain/schedule.go
package domain

import "time"

// DateLayout 是 lastWateringUpdate 使用的日期戳格式 (YYYY-MM-DD)。
// 它既是幂等键也是并发控制手段: 同一天最多衰减一次。
const DateLayout = "2006-01-02"

// DefaultWaterDays 是植物未配置浇水间隔时的默认值 (每周一次)。
const DefaultWaterDays = 7

// GPSCoordinates 是植物档案上的经纬度。
type GPSCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WateringSchedule 是内嵌在植物档案里的浇水倒计时状态。
type WateringSchedule struct {
	// WaterDays 记录创建时刻的基础间隔，之后不再变化
	WaterDays int `json:"waterDays"`
	// ActiveWaterDays 是剩余倒计时，>= 0
	ActiveWaterDays int `json:"activeWaterDays"`
	// LastWatered 由商家手动"已浇水"操作维护，本组件从不修改
	LastWatered *time.Time `json:"lastWatered"`
	// LastWateringUpdate 是上一次倒计时变更的日期戳
	LastWateringUpdate string `json:"lastWateringUpdate"`
	NeedsWatering      bool   `json:"needsWatering"`
	// WeatherAffected 为 true 表示最近一次变更是降雨重置而不是每日衰减
	WeatherAffected bool `json:"weatherAffected"`
}

// NewSchedule 按基础间隔创建初始倒计时状态。
func NewSchedule(baseWaterDays int, today string) *WateringSchedule {
	if baseWaterDays <= 0 {
		baseWaterDays = DefaultWaterDays
	}
	return &WateringSchedule{
		WaterDays:          baseWaterDays,
		ActiveWaterDays:    baseWaterDays,
		LastWatered:        nil,
		LastWateringUpdate: today,
		NeedsWatering:      false,
		WeatherAffected:    false,
	}
}

// ResetForRain 降雨重置: 倒计时回满。
// 即使当天已经更新过也会再次重置并盖章，重复执行结果相同。
func (s *WateringSchedule) ResetForRain(today string) {
	s.ActiveWaterDays = s.WaterDays
	s.NeedsWatering = false
	s.WeatherAffected = true
	s.LastWateringUpdate = today
}

// Decrement 每日衰减: 倒计时减一，下限为 0。
func (s *WateringSchedule) Decrement(today string) {
	s.ActiveWaterDays = s.ActiveWaterDays - 1
	if s.ActiveWaterDays < 0 {
		s.ActiveWaterDays = 0
	}
	s.NeedsWatering = s.ActiveWaterDays <= 0
	s.WeatherAffected = false
	s.LastWateringUpdate = today
}

// UpdatedOn 判断倒计时在给定日期是否已经变更过。
func (s *WateringSchedule) UpdatedOn(today string) bool {
	return s.LastWateringUpdate == today
}
