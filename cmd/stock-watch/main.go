// cmd/stock-watch/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"itemservice/internal/pkg/config"
	"itemservice/internal/pkg/logger"
	"itemservice/internal/pkg/mq"
	"itemservice/internal/service/item/domain"

	"github.com/gorilla/websocket"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const serviceName = "stock-watch"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool { // 简化处理，允许所有跨域
		return true
	},
}

// Hub 维护按 itemId 订阅的所有活跃连接
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{} // itemId -> 订阅该商品的客户端
}

func newHub() *Hub {
	return &Hub{clients: make(map[int64]map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.itemID] == nil {
		h.clients[c.itemID] = make(map[*Client]struct{})
	}
	h.clients[c.itemID][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[c.itemID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.clients, c.itemID)
		}
	}
}

// broadcast 把一条结果推给该商品的所有订阅者，推不动的连接直接摘除
func (h *Hub) broadcast(itemID int64, payload []byte) {
	h.mu.RLock()
	var stale []*Client
	for c := range h.clients[itemID] {
		select {
		case c.send <- payload:
		default:
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range stale {
		h.unregister(c)
	}
}

// Client 是一个 WebSocket 连接的代表
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	itemID int64
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	for {
		// 只消费心跳等控制消息；读失败即断开
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func serveWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(r.URL.Query().Get("itemId"), 10, 64)
	if err != nil {
		http.Error(w, "itemId is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zlog.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256), itemID: itemID}
	hub.register(client)
	go client.writePump()
	go client.readPump()
}

// consumeResults 消费结果主题并广播给订阅者
func consumeResults(ctx context.Context, hub *Hub) error {
	cfg := config.GetCurrentConfig()
	reader := mq.NewReader(cfg.Infra.Kafka.Brokers, serviceName, cfg.Infra.Kafka.ResultTopic)
	defer reader.Close()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Ctx(ctx).Error().Err(err).Msg("could not read result message")
			continue
		}

		var result domain.StockUpdateResult
		if err := json.Unmarshal(msg.Value, &result); err != nil {
			logger.Ctx(ctx).Error().Err(err).Msg("malformed result message, skipping")
			continue
		}
		hub.broadcast(result.ItemID, msg.Value)
	}
}

func main() {
	if err := config.Load(""); err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(serviceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := newHub()
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) { serveWs(hub, w, r) })

	server := &http.Server{
		Addr:    ":" + strconv.Itoa(config.GetCurrentConfig().StockWatch.Port),
		Handler: mux,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zlog.Info().Str("addr", server.Addr).Msg("stock-watch listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return consumeResults(gctx, hub)
	})
	g.Go(func() error {
		<-gctx.Done()
		return server.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		zlog.Fatal().Err(err).Msg("stock-watch exited with error")
	}
	zlog.Info().Msg("stock-watch gracefully shut down")
}
