package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/krili-app/krili/internal/pkg/metrics"
)

// WebSocketUpgradeHandler authenticates the connection via a token query
// parameter (browsers cannot set headers on WebSocket upgrades) and relays
// the user's notification stream.
func WebSocketUpgradeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			return errUnauthorized(c, "token query parameter is required")
		}
		claims, err := deps.Auth.VerifyToken(token)
		if err != nil {
			return errUnauthorized(c, "invalid or expired token")
		}
		uid := claims.Subject

		return websocket.New(notificationRelay(deps.NATS, uid))(c)
	}
}

// notificationRelay subscribes to the user's notification subject and writes
// each event to the socket until the client disconnects.
func notificationRelay(nc *nats.Conn, uid string) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr, "user_id", uid)

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		if nc == nil {
			_ = writeJSON(map[string]string{"error": "notifications unavailable"})
			return
		}

		// Each user gets their own subject, so no client-side filtering.
		sub, err := nc.Subscribe("krili.notify."+uid, func(msg *nats.Msg) {
			_ = writeJSON(json.RawMessage(msg.Data))
		})
		if err != nil {
			slog.Warn("ws subscribe failed", "user_id", uid, "error", err)
			return
		}
		defer func() { _ = sub.Unsubscribe() }()

		_ = writeJSON(map[string]string{"status": "connected"})

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Block on reads; any error means the client went away.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}

		close(done)
		slog.Info("ws client disconnected", "remote", remoteAddr, "user_id", uid)
	}
}
