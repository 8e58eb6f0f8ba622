package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"clipsync/internal/domain/apperr"
	"clipsync/internal/domain/device"

	"golang.org/x/exp/slog"
)

// Verifier проверяет токен и возвращает ID пользователя.
type Verifier interface {
	Validate(ctx context.Context, token string) (int, error)
}

// Presence - часть реестра устройств, нужная хабу.
type Presence interface {
	Register(ctx context.Context, userID int, connID, addr string, d device.Descriptor) (*device.Session, error)
	Heartbeat(ctx context.Context, connID string) error
	Lookup(ctx context.Context, connID string) (*device.Session, bool, error)
	Release(ctx context.Context, connID string) error
}

var (
	ErrUnauthenticated = apperr.New(apperr.ErrUnauthenticated, "unauthorized")
	ErrDeviceBound     = apperr.New(apperr.ErrInvalidArgument, "connection is already registered as another device")
)

// Hub рассылает события между соединениями одного пользователя.
type Hub struct {
	verifier Verifier
	presence Presence
	rooms    rooms
	log      *slog.Logger
}

func NewHub(verifier Verifier, presence Presence, log *slog.Logger) *Hub {
	return &Hub{
		verifier: verifier,
		presence: presence,
		log:      log.With("component", "sync_hub"),
	}
}

// Authenticate проверяет учетные данные до установки соединения.
func (h *Hub) Authenticate(ctx context.Context, token string) (int, error) {
	if token == "" {
		return 0, ErrUnauthenticated
	}
	userID, err := h.verifier.Validate(ctx, token)
	if errors.Is(err, apperr.ErrUnauthenticated) {
		h.log.Debug("credential rejected", "error", err)
		return 0, ErrUnauthenticated
	}
	if err != nil {
		return 0, fmt.Errorf("verify credential: %w", err)
	}
	return userID, nil
}

// Join добавляет соединение в комнату пользователя и сообщает ему его ID.
func (h *Hub) Join(userID int, conn Conn, addr string) *Session {
	s := newSession(conn, userID, addr)
	s.advance(StateAuthenticated)
	h.rooms.join(s)

	h.send(s, EventSessionReady, SessionReady{ConnectionID: s.ID()})
	h.log.Debug("connection joined", "user_id", userID, "conn_id", s.ID())
	return s
}

// Connect - Authenticate и Join за один вызов.
func (h *Hub) Connect(ctx context.Context, token string, conn Conn, addr string) (*Session, error) {
	userID, err := h.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return h.Join(userID, conn, addr), nil
}

func (h *Hub) RegisterDevice(ctx context.Context, s *Session, d device.Descriptor) error {
	if !s.receives() {
		return apperr.New(apperr.ErrInvalidArgument, "connection is not authenticated")
	}

	// одно соединение - одно устройство, иначе при отключении освободится
	// только одна из привязок
	ok, fresh := s.bindDevice(d.DeviceID)
	if !ok {
		return ErrDeviceBound
	}

	ds, err := h.presence.Register(ctx, s.userID, s.ID(), s.addr, d)
	if err != nil {
		if fresh {
			s.unbindDevice()
		}
		return err
	}

	if !s.advance(StateRegistered) {
		// соединение закрылось, пока шла регистрация
		if err := h.presence.Release(ctx, s.ID()); err != nil {
			h.log.Error("release after late register", "conn_id", s.ID(), "error", err)
		}
		return nil
	}

	h.Broadcast(s.userID, EventDeviceConnected, DeviceConnected{DeviceInfo: ds}, s.ID())
	return nil
}

func (h *Hub) Heartbeat(ctx context.Context, s *Session) error {
	return h.presence.Heartbeat(ctx, s.ID())
}

// Relay пересылает clipboard:sync остальным соединениям как clipboard:new без сохранения.
func (h *Hub) Relay(s *Session, payload json.RawMessage) {
	if !s.receives() {
		return
	}
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	h.Broadcast(s.userID, EventClipboardNew, payload, s.ID())
}

// Disconnect выводит соединение из комнаты и снимает привязку устройства.
// Повторный вызов ничего не делает.
func (h *Hub) Disconnect(ctx context.Context, s *Session) {
	if !s.close() {
		return
	}
	h.rooms.leave(s.userID, s.ID())
	if err := s.conn.Close(); err != nil {
		h.log.Debug("close connection", "conn_id", s.ID(), "error", err)
	}

	ds, found, err := h.presence.Lookup(ctx, s.ID())
	if err != nil {
		h.log.Error("lookup device on disconnect", "conn_id", s.ID(), "error", err)
		return
	}
	if !found {
		return
	}

	h.Broadcast(s.userID, EventDeviceDisconnected, DeviceDisconnected{
		DeviceID:   ds.DeviceID,
		DeviceName: ds.DeviceName,
	}, s.ID())

	if err := h.presence.Release(ctx, s.ID()); err != nil {
		h.log.Error("release device", "conn_id", s.ID(), "error", err)
	}
}

// Broadcast отправляет событие всем соединениям пользователя, кроме except.
// Переполненная очередь получателя означает потерю кадра только для него.
func (h *Hub) Broadcast(userID int, event string, payload any, except string) {
	members := h.rooms.members(userID)
	if len(members) == 0 {
		return
	}

	frame, err := Encode(event, payload)
	if err != nil {
		h.log.Error("encode broadcast", "event", event, "error", err)
		return
	}

	for _, s := range members {
		if s.ID() == except || !s.receives() {
			continue
		}
		if !s.conn.Send(frame) {
			h.log.Debug("frame dropped", "event", event, "conn_id", s.ID())
		}
	}
}

// Dispatch разбирает входящий кадр и вызывает соответствующую операцию.
func (h *Hub) Dispatch(ctx context.Context, s *Session, frame []byte) error {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return apperr.New(apperr.ErrInvalidArgument, "malformed frame")
	}

	switch env.Event {
	case EventRegisterDevice:
		var d device.Descriptor
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return apperr.New(apperr.ErrInvalidArgument, "malformed device descriptor")
		}
		return h.RegisterDevice(ctx, s, d)
	case EventHeartbeat:
		return h.Heartbeat(ctx, s)
	case EventClipboardSync:
		h.Relay(s, env.Data)
		return nil
	default:
		return apperr.New(apperr.ErrInvalidArgument, fmt.Sprintf("unknown event %q", env.Event))
	}
}

// Reject сообщает соединению об ошибке обработки кадра.
func (h *Hub) Reject(s *Session, event string, err error) {
	msg := apperr.Message(err)
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		h.log.Error("dispatch failed", "event", event, "conn_id", s.ID(), "error", err)
	}
	h.send(s, EventError, ErrorPayload{Event: event, Message: msg})
}

// IsOnline сообщает, подключено ли соединение к комнате пользователя.
func (h *Hub) IsOnline(userID int, connID string) bool {
	if connID == "" {
		return false
	}
	return h.rooms.contains(userID, connID)
}

// Connections возвращает число соединений во всех комнатах.
func (h *Hub) Connections() int {
	return int(h.rooms.total.Load())
}

func (h *Hub) send(s *Session, event string, payload any) {
	frame, err := Encode(event, payload)
	if err != nil {
		h.log.Error("encode frame", "event", event, "error", err)
		return
	}
	if !s.conn.Send(frame) {
		h.log.Debug("frame dropped", "event", event, "conn_id", s.ID())
	}
}
