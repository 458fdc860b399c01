package bind

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gorilla/websocket"
	"github.com/vango-dev/pulse/pkg/reactive"
	"go.uber.org/zap"
)

// client is one WebSocket connection. Fields marked loop-owned are only
// touched from the goroutine running the server's loop.
type client struct {
	id     string
	conn   *websocket.Conn
	config *ServerConfig
	logger *zap.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	// loop-owned
	digests   map[string]uint64
	disposers []reactive.Disposer
}

func newClient(id string, conn *websocket.Conn, config *ServerConfig, logger *zap.Logger) *client {
	size := config.SendQueueSize
	if size <= 0 {
		size = 64
	}
	return &client{
		id:      id,
		conn:    conn,
		config:  config,
		logger:  logger.With(zap.String("client", id)),
		send:    make(chan []byte, size),
		done:    make(chan struct{}),
		digests: make(map[string]uint64),
	}
}

// watch subscribes to cell. Its current value is queued immediately.
func (c *client) watch(name string, cell reactive.Dynamic) {
	d := cell.EffectAny(func(v any) {
		c.push(name, v)
	})
	c.disposers = append(c.disposers, d)
}

// dispose removes every listener the client registered.
func (c *client) dispose() {
	for _, d := range c.disposers {
		d()
	}
	c.disposers = nil
}

// push queues a value frame unless it repeats the last one sent for name.
func (c *client) push(name string, value any) {
	data, err := valueFrame(name, value)
	if err != nil {
		c.logger.Warn("encode failed", zap.String("cell", name), zap.Error(err))
		return
	}

	sum := xxhash.Sum64(data)
	if last, ok := c.digests[name]; ok && last == sum {
		return
	}
	c.digests[name] = sum
	c.enqueue(data)
}

// sendError queues an error frame. Safe from any goroutine.
func (c *client) sendError(cell string, err error) {
	c.enqueue(errorFrame(cell, err))
}

func (c *client) enqueue(data []byte) {
	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.logger.Warn("send queue full, disconnecting")
		c.close()
	}
}

// writePump writes queued frames until the client is closed.
func (c *client) writePump() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			if c.config.WriteTimeout > 0 {
				_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("write failed", zap.Error(err))
				c.close()
				return
			}
		}
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}
