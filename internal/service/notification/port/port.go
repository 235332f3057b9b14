// internal/service/notification/port/port.go
package port

import "context"

// ReminderEvent 是排程服务发布到 Kafka 的浇水提醒事件，
// 字段与 watering-reminders 主题上的 JSON 负载一致。
type ReminderEvent struct {
	BusinessID   string   `json:"businessId"`
	Title        string   `json:"title"`
	Body         string   `json:"body"`
	PlantCount   int      `json:"plantCount"`
	DeviceTokens []string `json:"deviceTokens"`
	DeliveryRule string   `json:"deliveryRule,omitempty"`
	Timestamp    string   `json:"timestamp"`
}

// PushMessage 是路由到某个推送网关节点的单设备消息。
type PushMessage struct {
	DeviceToken string `json:"deviceToken"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	BusinessID  string `json:"businessId"`
	PlantCount  int    `json:"plantCount"`
	Timestamp   string `json:"timestamp"`
}

// SessionResolver 查询设备当前连接的网关节点。
type SessionResolver interface {
	GetDeviceGateway(ctx context.Context, deviceToken string) (string, error)
}

// NodePublisher 把消息投递到指定网关节点的专属主题。
type NodePublisher interface {
	PublishToNode(ctx context.Context, nodeID string, msg *PushMessage) error
}
