// cmd/push-gateway/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/segmentio/kafka-go"

	"verdant/internal/pkg/bootstrap"
	"verdant/internal/pkg/logger"
	"verdant/internal/pkg/mq"
	"verdant/internal/pkg/session"
	"verdant/internal/service/notification/adapter"
	"verdant/internal/service/notification/port"
)

const (
	serviceName = "push-gateway"
	servicePort = 8087

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var (
	nodeID   = "push-gateway-" + uuid.New().String()[:8]
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool { // 简化处理，允许所有跨域
			return true
		},
	}
)

// Hub 维护本节点所有活跃的设备连接。
type Hub struct {
	clients    map[string]*Client // 以设备 token 为 Key
	register   chan *Client
	unregister chan *Client
	lock       sync.RWMutex
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.lock.Lock()
			if old, ok := h.clients[client.deviceToken]; ok {
				close(old.send)
			}
			h.clients[client.deviceToken] = client
			h.lock.Unlock()
			logger.L().Info().Str("device_token", client.deviceToken).Str("node", nodeID).Msg("client registered")
		case client := <-h.unregister:
			h.lock.Lock()
			if current, ok := h.clients[client.deviceToken]; ok && current == client {
				delete(h.clients, client.deviceToken)
				close(client.send)
			}
			h.lock.Unlock()
			logger.L().Info().Str("device_token", client.deviceToken).Msg("client unregistered")
		}
	}
}

// send 把消息投递给某个在线设备，设备不在本节点时返回 false。
func (h *Hub) send(deviceToken string, payload []byte) bool {
	h.lock.RLock()
	client, ok := h.clients[deviceToken]
	h.lock.RUnlock()
	if !ok {
		return false
	}
	select {
	case client.send <- payload:
		return true
	default: // 发送缓冲已满，视为连接不健康
		return false
	}
}

// Client 是一个 WebSocket 连接的代表。
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	deviceToken string
	sessions    *session.Manager
}

// readPump 读取客户端心跳并维持连接存活。
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		if err := c.sessions.RemoveDeviceGateway(context.Background(), c.deviceToken); err != nil {
			logger.L().Warn().Err(err).Str("device_token", c.deviceToken).Msg("failed to remove session")
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.L().Debug().Err(err).Str("device_token", c.deviceToken).Msg("websocket read error")
			}
			return
		}
	}
}

// writePump 把 send channel 中的消息写入 websocket，并定期发 ping。
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func serveWs(hub *Hub, sessions *session.Manager, w http.ResponseWriter, r *http.Request) {
	deviceToken := r.URL.Query().Get("deviceToken")
	if deviceToken == "" {
		http.Error(w, "deviceToken is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.L().Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, 256),
		deviceToken: deviceToken,
		sessions:    sessions,
	}
	client.hub.register <- client

	// 在 Redis 中登记 设备 -> 本节点，路由侧据此投递
	if err := sessions.SetDeviceGateway(context.Background(), deviceToken, nodeID); err != nil {
		logger.L().Error().Err(err).Str("device_token", deviceToken).Msg("failed to register session")
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// consumeNodeTopic 订阅本节点的专属主题，把路由过来的消息推给设备。
func consumeNodeTopic(ctx context.Context, reader *kafka.Reader, hub *Hub) {
	logger.L().Info().Str("topic", adapter.NodeTopicPrefix+nodeID).Msg("consuming node topic")
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.L().Error().Err(err).Msg("could not read message")
			continue
		}

		var push port.PushMessage
		if err := json.Unmarshal(msg.Value, &push); err != nil {
			logger.L().Error().Err(err).Msg("failed to unmarshal push message")
			continue
		}

		if !hub.send(push.DeviceToken, msg.Value) {
			// 设备已断开但会话还没过期，消息只能丢弃
			logger.L().Debug().Str("device_token", push.DeviceToken).Msg("device not connected, dropping push")
		}
	}
}

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	sessions := session.NewManager(cfg.Infra.Redis.Addr)
	hub := newHub()
	go hub.run()

	reader := mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, adapter.NodeTopicPrefix+nodeID, nodeID)
	consumerCtx, cancel := context.WithCancel(context.Background())
	go consumeNodeTopic(consumerCtx, reader, hub)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
				serveWs(hub, sessions, w, r)
			})
		},
		OnShutdown: func(shutdownCtx context.Context) {
			cancel()
			if err := reader.Close(); err != nil {
				logger.L().Warn().Err(err).Msg("failed to close kafka reader")
			}
		},
	})
}
