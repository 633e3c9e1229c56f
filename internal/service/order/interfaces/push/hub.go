// internal/service/order/interfaces/push/hub.go
package push

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"orderflow/internal/pkg/logger"
	"orderflow/internal/service/order/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool { // 简化处理，允许所有跨域
		return true
	},
}

// statusPush 是推送给 WebSocket 客户端的消息体。
type statusPush struct {
	OrderID   string `json:"orderId"`
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
	PushedAt  string `json:"pushedAt"`
}

// Hub 维护所有活跃的连接，把订单状态变化广播给订阅端。
// 它同时实现 Observer，直接挂到事件引擎上。
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub 创建推送中心，需调用 Run 启动事件循环。
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Run 是 Hub 的事件循环，注册、注销和广播都在这里串行处理。
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client.id] = client
			logger.Logger().Info().Str("client_id", client.id).Msg("push client registered")
		case client := <-h.unregister:
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
			}
			logger.Logger().Info().Str("client_id", client.id).Msg("push client unregistered")
		case message := <-h.broadcast:
			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// 消费太慢的客户端直接踢掉，不拖累广播
					delete(h.clients, id)
					close(client.send)
				}
			}
		case <-h.done:
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.send)
			}
			return
		}
	}
}

// Close 停止事件循环并断开所有客户端。
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// OnEventProcessed 对推送中心是空操作，只有状态变化才值得推送。
func (h *Hub) OnEventProcessed(context.Context, domain.Event, *domain.Order) {}

func (h *Hub) OnStatusChanged(ctx context.Context, orderID string, oldStatus, newStatus domain.Status) {
	payload, err := json.Marshal(statusPush{
		OrderID:   orderID,
		OldStatus: string(oldStatus),
		NewStatus: string(newStatus),
		PushedAt:  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to marshal status push")
		return
	}
	select {
	case h.broadcast <- payload:
	case <-h.done:
	default:
		logger.Ctx(ctx).Warn().Str("order_id", orderID).Msg("push broadcast buffer full, dropping")
	}
}

// ServeWS 把 HTTP 请求升级为 WebSocket 并注册到 Hub。
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Logger().Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
		id:   uuid.New().String()[:8],
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client 是一个WebSocket连接的代表
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string
}

// writePump 把 send channel 中的消息写入 websocket，并定期发心跳。
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// readPump 消费客户端消息（主要是心跳），连接断开时注销。
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
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
			return
		}
	}
}
