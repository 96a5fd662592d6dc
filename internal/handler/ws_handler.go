package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/brightclass/brightclass-backend/internal/config"
	"github.com/brightclass/brightclass-backend/internal/middleware"
	"github.com/brightclass/brightclass-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const wsWriteTimeout = 10 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow-list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams notifications to connected clients over WebSocket.
type WSHandler struct {
	rdb      *redis.Client
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:      rdb,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// NotificationStream godoc
// WS /ws/v1/notifications/stream
// Subscribes to the caller's notification channel and forwards each
// published notification as one JSON text frame.
func (h *WSHandler) NotificationStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	role := "student"
	if claims.TokenType == service.TokenTypeTeacher {
		role = "teacher"
	}
	channel := config.CacheKey.NotificationChannel(role, claims.UserID)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Int("user_id", claims.UserID).Str("role", role).Logger()
	wsLog.Info().Msg("Notification stream connected")

	sub := h.rdb.Subscribe(c.Request.Context(), channel)
	defer sub.Close()

	// Reader goroutine: drains client frames and unblocks on disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			wsLog.Debug().Msg("Notification stream closed by client")
			return
		case <-c.Request.Context().Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				wsLog.Warn().Msg("Subscription channel closed")
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				wsLog.Debug().Err(err).Msg("Notification stream write failed")
				return
			}
		}
	}
}
