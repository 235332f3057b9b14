// internal/service/watering/port/notifier.go
package port

import "context"

// WateringReminderEvent 是发往通知管道的浇水提醒事件。
type WateringReminderEvent struct {
	BusinessID   string   `json:"businessId"`
	Title        string   `json:"title"`
	Body         string   `json:"body"`
	PlantCount   int      `json:"plantCount"`
	DeviceTokens []string `json:"deviceTokens"`
	// DeliveryRule 是商家配置的 CEL 投递规则，由消费方求值
	DeliveryRule string `json:"deliveryRule,omitempty"`
	Timestamp    string `json:"timestamp"`
}

// ReminderPublisher 是提醒事件的出站端口。
type ReminderPublisher interface {
	Publish(ctx context.Context, event *WateringReminderEvent) error
}
