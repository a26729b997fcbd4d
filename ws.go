package board_sdk

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/cydxin/board-sdk/models"
	"github.com/cydxin/board-sdk/service"
	"github.com/gorilla/websocket"
)

const (
	// Time 写入超时时间
	writeWait = 10 * time.Second

	// Time pong超时时间
	pongWait = 60 * time.Second

	// Send 对应的ping 必须小于pong
	pingPeriod = (pongWait * 9) / 10

	// Maximum 对等端允许消息大小
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for SDK
	},
}

// Client 一条 websocket 连接。
// 每条连接绑定一个公告过滤条件，注册时建立对应的 live view 订阅，
// 断开时退订。同一用户多设备各自一条连接、各自一个订阅。
type Client struct {
	hub *WsServer

	// 🔗链接
	conn *websocket.Conn

	// 消息缓冲区
	send chan []byte

	// UserID 和用户关联
	UserID uint64

	// Filter 该连接的公告过滤条件
	Filter models.NoticeFilter

	// unsubscribe live view 退订句柄（注册时由 hub 填）
	unsubscribe func()
}

// readPump 把消息从 client (websocket 连接) 交给 hub 管理。
// 公告 live view 是服务端单向推送，客户端上行只用于心跳/保活。
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { _ = c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("readPump error: %v", err)
			}
			break
		}
	}
}

// writePump 把消息从 hub 写到具体的 client (websocket 连接)。
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)

			// 一次性发送管道剩余全部的消息，不重新走 message, ok := <-c.send，提升性能
			n := len(c.send)
			for i := 0; i < n; i++ {
				_, _ = w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("writePump 写入ping失败")
				return
			}
		}
	}
}

type WsServer struct {
	clients map[*Client]bool
	// 用户ID -> 该用户所有活跃的 Websocket 连接（支持多设备）
	userClients map[uint64][]*Client

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	// subscribe live view 订阅入口（engine 注入 NoticeWatchService.Subscribe）
	subscribe func(f models.NoticeFilter, onData func([]service.EnrichedNotice), onError func(error)) func()
}

func NewWsServer() *WsServer {
	return &WsServer{
		broadcast:   make(chan []byte),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		clients:     make(map[*Client]bool),
		userClients: make(map[uint64][]*Client),
	}
}

func (h *WsServer) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
			h.mu.Unlock()

			// 注册后建立该连接的 live view：初始全量 + 每次变化推完整列表
			if h.subscribe != nil {
				client.unsubscribe = h.subscribe(client.Filter,
					func(items []service.EnrichedNotice) {
						h.pushNotices(client, items)
					},
					func(err error) {
						h.pushWatchError(client, err)
					},
				)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)

				if userConns, exists := h.userClients[client.UserID]; exists {
					for i, conn := range userConns {
						if conn == client {
							h.userClients[client.UserID] = append(userConns[:i], userConns[i+1:]...)
							break
						}
					}
					if len(h.userClients[client.UserID]) == 0 {
						delete(h.userClients, client.UserID)
					}
				}
			}
			h.mu.Unlock()

			// 退订幂等，重复断开也安全
			if client.unsubscribe != nil {
				client.unsubscribe()
			}

		case message := <-h.broadcast:
			// 注意：不能在 RLock 下修改 map / close channel，否则会引发竞态/崩溃。
			var toRemove []*Client
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					toRemove = append(toRemove, client)
				}
			}
			h.mu.RUnlock()

			if len(toRemove) > 0 {
				h.mu.Lock()
				for _, client := range toRemove {
					if _, ok := h.clients[client]; !ok {
						continue
					}
					delete(h.clients, client)
					if userConns, exists := h.userClients[client.UserID]; exists {
						for i, conn := range userConns {
							if conn == client {
								h.userClients[client.UserID] = append(userConns[:i], userConns[i+1:]...)
								break
							}
						}
						if len(h.userClients[client.UserID]) == 0 {
							delete(h.userClients, client.UserID)
						}
					}
					// close 之前再确认一次，避免 panic（多处 close 的竞态）
					func() {
						defer func() { _ = recover() }()
						close(client.send)
					}()
				}
				h.mu.Unlock()
			}
		}
	}
}

// pushNotices 把重算后的完整公告列表推给该连接。
func (h *WsServer) pushNotices(client *Client, items []service.EnrichedNotice) {
	msg := struct {
		Type  string                   `json:"type"`
		Items []service.EnrichedNotice `json:"items"`
	}{Type: "notices", Items: items}

	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case client.send <- b:
	default:
		// 丢弃避免阻塞
	}
}

// pushWatchError 推订阅终态错误；之后该连接不再收到列表更新，
// 客户端自行决定是否重连重订。
func (h *WsServer) pushWatchError(client *Client, err error) {
	msg := struct {
		Type string `json:"type"`
		Msg  string `json:"msg"`
	}{Type: "watch_error", Msg: err.Error()}

	b, mErr := json.Marshal(msg)
	if mErr != nil {
		return
	}
	select {
	case client.send <- b:
	default:
	}
}

// ServeWS 处理 ws 的请求，filter 为该连接的公告过滤条件。
func (h *WsServer) ServeWS(w http.ResponseWriter, r *http.Request, userID uint64, filter models.NoticeFilter) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		UserID: userID,
		Filter: filter,
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()

	// 不要 select{} 永久阻塞 handler；连接生命周期由 readPump/writePump 控制。
}

// SendToUser 发送消息到用户（事件推送用，多设备都发）
func (h *WsServer) SendToUser(userID uint64, msg []byte) {
	h.mu.RLock()
	clients := h.userClients[userID]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- msg:
		default:
			// 丢弃避免阻塞
		}
	}
}
