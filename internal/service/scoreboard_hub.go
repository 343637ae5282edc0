package service

import (
	"encoding/json"
	"net/http"
	"sql_range_backend/pkg/logger"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	broadcastPeriod = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type scoreboardClient struct {
	hub  *ScoreboardHub
	conn *websocket.Conn
	send chan []byte
}

// ScoreboardHub 记分板实时推送。订阅是匿名只读的：
// 客户端不发业务消息，榜单每 10 秒全量推一次，有人通关立即加推。
type ScoreboardHub struct {
	Scoreboard *ScoreboardService

	mu         sync.RWMutex
	clients    map[*scoreboardClient]struct{}
	register   chan *scoreboardClient
	unregister chan *scoreboardClient
	refresh    chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
}

func NewScoreboardHub(scoreboard *ScoreboardService) *ScoreboardHub {
	return &ScoreboardHub{
		Scoreboard: scoreboard,
		clients:    make(map[*scoreboardClient]struct{}),
		register:   make(chan *scoreboardClient),
		unregister: make(chan *scoreboardClient),
		refresh:    make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
}

// NotifySolve 通关事件触发即时推送；信号已挂起时合并
func (h *ScoreboardHub) NotifySolve() {
	select {
	case h.refresh <- struct{}{}:
	default:
	}
}

func (h *ScoreboardHub) Run() {
	ticker := time.NewTicker(broadcastPeriod)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			// 新连接立刻给一份当前榜单，不等下一个周期
			if payload := h.snapshot(); payload != nil {
				select {
				case client.send <- payload:
				default:
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case <-ticker.C:
			h.broadcast()

		case <-h.refresh:
			h.broadcast()

		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *ScoreboardHub) Stop() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

func (h *ScoreboardHub) snapshot() []byte {
	entries, err := h.Scoreboard.GetScoreboard()
	if err != nil {
		logger.Log.Error("failed to build scoreboard snapshot", zap.Error(err))
		return nil
	}
	payload, err := json.Marshal(wsMessage{Type: "SCOREBOARD", Data: entries})
	if err != nil {
		return nil
	}
	return payload
}

func (h *ScoreboardHub) broadcast() {
	h.mu.RLock()
	count := len(h.clients)
	h.mu.RUnlock()
	if count == 0 {
		return
	}

	payload := h.snapshot()
	if payload == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			// 写不进去的慢客户端直接丢这一帧
		}
	}
}

func (c *scoreboardClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		// 只消费控制帧，业务消息一律忽略
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *scoreboardClient) writePump() {
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

func ServeScoreboardWs(hub *ScoreboardHub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}
	client := &scoreboardClient{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 8),
	}
	hub.register <- client

	go client.writePump()
	go client.readPump()
}
