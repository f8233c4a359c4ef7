package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rustyeddy/papertrader/config"
	"github.com/rustyeddy/papertrader/market"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type streamMessage struct {
	Type      string                  `json:"type"`
	Prices    map[string]market.Quote `json:"prices"`
	Timestamp time.Time               `json:"timestamp"`
}

// handleStream pushes a quote snapshot on connect and then every interval
// until the client goes away or the server shuts down.
func (s *Server) handleStream(c *gin.Context) {
	interval := s.opts.StreamInterval
	if v := c.Query("interval_ms"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			badRequest(c, "interval_ms must be a positive integer")
			return
		}
		interval = time.Duration(ms) * time.Millisecond
	}
	if interval < config.MinStreamInterval {
		interval = config.MinStreamInterval
	}
	symbols := s.symbolsParam(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The reader only watches for the close frame or a broken connection.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		prices, err := market.Snapshot(ctx, s.engine, symbols)
		if err != nil {
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(streamMessage{Type: "prices", Prices: prices, Timestamp: time.Now().UTC()}); err != nil {
			s.logger.Debug("stream write failed", zap.Error(err))
			return
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		case <-s.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		}
	}
}
