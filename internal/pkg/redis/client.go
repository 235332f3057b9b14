// internal/pkg/redis/client.go
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ErrCacheMiss 表示键不存在。
var ErrCacheMiss = errors.New("redis: cache miss")

// Client 封装了 go-redis 客户端，提供 JSON 缓存和 Lua 脚本管理。
type Client struct {
	rdb *goredis.Client

	scriptLock sync.RWMutex
	scripts    map[string]*goredis.Script
}

// NewClient 创建一个新的客户端实例并验证连通性。
func NewClient(addr, password string) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &Client{
		rdb:     rdb,
		scripts: make(map[string]*goredis.Script),
	}, nil
}

// GetClient 暴露底层客户端，供需要 pipeline 等高级操作的调用方使用。
func (c *Client) GetClient() *goredis.Client {
	return c.rdb
}

// GetJSON 读取键并反序列化到 dest。键不存在时返回 ErrCacheMiss。
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	return json.Unmarshal(data, dest)
}

// SetJSON 序列化 value 并以给定 TTL 写入。
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value for %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, data, ttl).Err()
}

// LoadScriptFromContent 注册一个命名 Lua 脚本。
func (c *Client) LoadScriptFromContent(name, content string) error {
	if content == "" {
		return fmt.Errorf("script %s has empty content", name)
	}
	c.scriptLock.Lock()
	defer c.scriptLock.Unlock()
	c.scripts[name] = goredis.NewScript(content)
	return nil
}

// RunScript 执行一个已注册的脚本。
func (c *Client) RunScript(ctx context.Context, name string, keys []string, args ...interface{}) (interface{}, error) {
	c.scriptLock.RLock()
	script, ok := c.scripts[name]
	c.scriptLock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("script %s is not loaded", name)
	}
	return script.Run(ctx, c.rdb, keys, args...).Result()
}

// Close 关闭底层连接池。
func (c *Client) Close() error {
	return c.rdb.Close()
}
