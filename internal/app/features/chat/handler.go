// Package chat is the websocket gateway in front of the realtime router.
package chat

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/peerhub/internal/app/realtime"
	"github.com/dalemusser/peerhub/internal/app/system/auth"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Socket timing.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Gate decides whether two accounts may chat.
type Gate interface {
	AreConnected(ctx context.Context, a, b primitive.ObjectID) (bool, error)
}

type Handler struct {
	Router   *realtime.Router
	Gate     Gate
	Upgrader websocket.Upgrader
	Log      *zap.Logger
}

// NewHandler builds the gateway. allowedOrigins lists the browser origins
// accepted on upgrade; empty accepts same-origin requests only.
func NewHandler(router *realtime.Router, gate Gate, allowedOrigins []string, logger *zap.Logger) *Handler {
	h := &Handler{
		Router: router,
		Gate:   gate,
		Log:    logger,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if len(allowedOrigins) > 0 {
		allowed := make(map[string]bool, len(allowedOrigins))
		for _, o := range allowedOrigins {
			allowed[o] = true
		}
		h.Upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed[origin]
		}
	}
	return h
}

// ServeWS handles GET /ws. The caller must already be signed in; the
// identity on every event comes from the session, never from the payload.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	ws, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.Log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	s := &session{
		h:      h,
		ws:     ws,
		conn:   realtime.NewConn(uuid.NewString(), user.ID.Hex(), realtime.DefaultQueueSize),
		userID: user.ID,
		joined: make(map[string]bool),
		log:    h.Log.With(zap.String("user_id", user.ID.Hex())),
	}
	s.log.Debug("websocket connected", zap.String("conn_id", s.conn.ID))

	go s.writePump()
	s.readPump(r.Context())
}
