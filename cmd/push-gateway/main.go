package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"manabi/internal/pkg/bootstrap"
	"manabi/internal/pkg/logger"
	"manabi/internal/pkg/mq"
	"manabi/internal/service/booking/domain"
)

const serviceName = "push-gateway"

var (
	nodeID   = "push-gateway-" + uuid.New().String()[:8]
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool { // 店面页面跨域，放开校验
			return true
		},
	}
)

// Hub 维护所有活跃的连接，按订阅的会话 ID 分组广播。
type Hub struct {
	clients    map[int64]map[*Client]struct{} // sessionID -> 订阅的连接
	register   chan *Client
	unregister chan *Client
	broadcast  chan *domain.SeatChanged
	lock       sync.RWMutex
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *domain.SeatChanged, 64),
	}
}

func (h *Hub) run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.lock.Lock()
			if h.clients[client.sessionID] == nil {
				h.clients[client.sessionID] = make(map[*Client]struct{})
			}
			h.clients[client.sessionID][client] = struct{}{}
			h.lock.Unlock()
			logger.Logger().Info().
				Int64("session_id", client.sessionID).
				Str("node", nodeID).
				Msg("client subscribed")
		case client := <-h.unregister:
			h.lock.Lock()
			if subs, ok := h.clients[client.sessionID]; ok {
				if _, ok := subs[client]; ok {
					delete(subs, client)
					close(client.send)
					if len(subs) == 0 {
						delete(h.clients, client.sessionID)
					}
				}
			}
			h.lock.Unlock()
		case event := <-h.broadcast:
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			h.lock.RLock()
			for client := range h.clients[event.SessionID] {
				select {
				case client.send <- payload:
				default:
					// 发送缓冲满说明连接已经不健康，踢掉
					go func(c *Client) { h.unregister <- c }(client)
				}
			}
			h.lock.RUnlock()
		case <-ctx.Done():
			return
		}
	}
}

// Client 代表一条订阅了某个课堂会话余位的 WebSocket 连接。
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID int64
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		// 只消费心跳，任何读错误都视为连接断开
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func serveWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(r.URL.Query().Get("session_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Logger().Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, 16),
		sessionID: sessionID,
	}
	hub.register <- client
	go client.writePump()
	go client.readPump()
}

// consumeSeatEvents 把 Kafka 上的座位变化事件搬进 Hub 的广播通道。
func consumeSeatEvents(ctx context.Context, hub *Hub) error {
	cfg := bootstrap.GetCurrentConfig()
	reader := mq.NewReader(cfg.Infra.Kafka.Brokers, serviceName+"-"+nodeID, cfg.Infra.Kafka.SeatEventTopic)
	defer reader.Close()

	logger.Logger().Info().Str("topic", cfg.Infra.Kafka.SeatEventTopic).Msg("seat event consumer started")
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Logger().Error().Err(err).Msg("failed to fetch seat event")
			continue
		}
		var event domain.SeatChanged
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Logger().Error().Err(err).Msg("failed to unmarshal seat event, dropping")
		} else {
			hub.broadcast <- &event
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Logger().Error().Err(err).Msg("failed to commit seat event")
		}
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8093,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			hub := newHub()
			go hub.run(ctx)
			go func() {
				if err := consumeSeatEvents(ctx, hub); err != nil && err != context.Canceled {
					logger.Logger().Error().Err(err).Msg("seat event consumer exited")
				}
			}()
			appCtx.Mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
				serveWs(hub, w, r)
			})
		},
		OnShutdown: func(shutdownCtx context.Context) {
			cancel()
		},
	})
}
