// internal/service/watering/infrastructure/mapper.go
package infrastructure

import "verdant/internal/service/watering/domain"

// ToDomainPlant 将数据库模型转换为领域模型。
func ToDomainPlant(m *PlantModel) *domain.Plant {
	p := &domain.Plant{
		ID:         m.ID,
		BusinessID: m.BusinessID,
		Name:       m.Name,
		CommonName: m.CommonName,
		WaterDays:  m.WaterDays,
	}
	if m.Latitude != nil && m.Longitude != nil {
		p.Location = &domain.GPSCoordinates{
			Latitude:  *m.Latitude,
			Longitude: *m.Longitude,
		}
	}
	if m.HasSchedule {
		p.Schedule = &domain.WateringSchedule{
			WaterDays:          m.ScheduleWaterDays,
			ActiveWaterDays:    m.ActiveWaterDays,
			LastWatered:        m.LastWatered,
			LastWateringUpdate: m.LastWateringUpdate,
			NeedsWatering:      m.NeedsWatering,
			WeatherAffected:    m.WeatherAffected,
		}
	}
	return p
}

// ToDomainSetting 将提醒配置模型转换为领域模型。
func ToDomainSetting(m *NotificationSettingModel) *domain.NotificationSetting {
	return &domain.NotificationSetting{
		ID:               m.ID,
		BusinessID:       m.BusinessID,
		NotificationTime: m.NotificationTime,
		DeviceTokens:     m.DeviceTokens,
		Status:           m.Status,
		DeliveryRule:     m.DeliveryRule,
		LastSent:         m.LastSent,
	}
}
