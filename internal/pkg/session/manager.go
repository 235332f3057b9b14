// internal/pkg/session/manager.go
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "gateway:session:"
	sessionTTL       = 24 * time.Hour
)

// ErrSessionNotFound 表示设备当前没有在任何网关节点上登录。
var ErrSessionNotFound = errors.New("session: device not connected")

// Manager 在 Redis 中维护 设备 -> 网关节点 的会话映射，
// 让任意服务都能找到应该把推送路由到哪个 push-gateway 实例。
type Manager struct {
	rdb *goredis.Client
}

// NewManager 创建一个会话管理器。
func NewManager(redisAddr string) *Manager {
	return &Manager{
		rdb: goredis.NewClient(&goredis.Options{Addr: redisAddr}),
	}
}

// SetDeviceGateway 记录设备连接到了哪个网关节点。
func (m *Manager) SetDeviceGateway(ctx context.Context, deviceToken, nodeID string) error {
	return m.rdb.Set(ctx, sessionKeyPrefix+deviceToken, nodeID, sessionTTL).Err()
}

// GetDeviceGateway 查询设备所在的网关节点。
func (m *Manager) GetDeviceGateway(ctx context.Context, deviceToken string) (string, error) {
	nodeID, err := m.rdb.Get(ctx, sessionKeyPrefix+deviceToken).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session lookup for %s: %w", deviceToken, err)
	}
	return nodeID, nil
}

// RemoveDeviceGateway 在设备断开时清除会话。
func (m *Manager) RemoveDeviceGateway(ctx context.Context, deviceToken string) error {
	return m.rdb.Del(ctx, sessionKeyPrefix+deviceToken).Err()
}
