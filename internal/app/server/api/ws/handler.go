// Package ws - websocket-транспорт хаба синхронизации.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"clipsync/internal/app/server/api/http/envelope"
	"clipsync/internal/app/server/api/http/middleware/auth"
	"clipsync/internal/domain/apperr"
	"clipsync/internal/domain/clipboard"
	gosync "clipsync/internal/domain/sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/exp/slog"
)

const (
	DefaultPingInterval = 30 * time.Second
	DefaultPongWait     = 60 * time.Second

	frameTimeout = 10 * time.Second
	// Кадр clipboard:sync может нести элемент максимального размера.
	maxFrameSize = 2*clipboard.MaxContentSize + 64<<10
)

// Hub - операции хаба, которые использует транспорт.
type Hub interface {
	Authenticate(ctx context.Context, token string) (int, error)
	Join(userID int, conn gosync.Conn, addr string) *gosync.Session
	Dispatch(ctx context.Context, s *gosync.Session, frame []byte) error
	Reject(s *gosync.Session, event string, err error)
	Disconnect(ctx context.Context, s *gosync.Session)
}

type Handler struct {
	hub          Hub
	base         context.Context
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	pongWait     time.Duration
	log          *slog.Logger
}

// NewHandler создает обработчик /ws. Отмена base закрывает все соединения.
func NewHandler(base context.Context, hub Hub, log *slog.Logger) *Handler {
	return &Handler{
		hub:  hub,
		base: base,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// клиенты - CLI и расширения браузера, Origin не проверяется
			CheckOrigin: func(*http.Request) bool { return true },
		},
		pingInterval: DefaultPingInterval,
		pongWait:     DefaultPongWait,
		log:          log.With("component", "ws_handler"),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		token = r.URL.Query().Get("token")
	}

	userID, err := h.hub.Authenticate(r.Context(), token)
	if err != nil {
		h.reject(w, err)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("upgrade failed", "error", err)
		return
	}

	c := newConn(uuid.NewString(), ws)
	go c.writePump(h.pingInterval)

	s := h.hub.Join(userID, c, remoteHost(r))
	h.log.Info("client connected", "user_id", userID, "conn_id", c.ID())

	h.readPump(s, c)
}

func (h *Handler) readPump(s *gosync.Session, c *conn) {
	stop := context.AfterFunc(h.base, func() { c.Close() })
	defer func() {
		stop()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(h.base), frameTimeout)
		defer cancel()
		h.hub.Disconnect(ctx, s)
		h.log.Info("client disconnected", "user_id", s.UserID(), "conn_id", s.ID())
	}()

	c.ws.SetReadLimit(maxFrameSize)
	extend := func() { _ = c.ws.SetReadDeadline(time.Now().Add(h.pongWait)) }
	extend()
	c.ws.SetPongHandler(func(string) error {
		extend()
		return nil
	})

	for {
		_, frame, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("read failed", "conn_id", s.ID(), "error", err)
			}
			return
		}
		extend()

		ctx, cancel := context.WithTimeout(h.base, frameTimeout)
		err = h.hub.Dispatch(ctx, s, frame)
		cancel()
		if err != nil {
			h.hub.Reject(s, eventName(frame), err)
		}
	}
}

func (h *Handler) reject(w http.ResponseWriter, err error) {
	status := http.StatusUnauthorized
	msg := "unauthorized"
	if !errors.Is(err, apperr.ErrUnauthenticated) {
		h.log.Error("authenticate websocket", "error", err)
		status = http.StatusInternalServerError
		msg = "internal error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope.Error{Message: msg})
}

func eventName(frame []byte) string {
	var env struct {
		Event string `json:"event"`
	}
	_ = json.Unmarshal(frame, &env)
	return env.Event
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
