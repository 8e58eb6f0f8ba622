package device

import (
	"context"

	"clipsync/internal/app/server/api/http/envelope"
	"clipsync/internal/app/server/api/http/middleware/auth"
	"clipsync/internal/domain/device"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Presence отвечает, открыто ли соединение с данным id у пользователя.
type Presence interface {
	IsOnline(userID int, connID string) bool
}

type Handler struct {
	service    device.Servicer
	presence   Presence
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service device.Servicer, presence Presence, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		presence:   presence,
		log:        log.With("component", "device_handler"),
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.removeOp(), h.remove)
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, envelope.Unauthorized()
	}

	sessions, err := h.service.List(ctx, userID)
	if err != nil {
		h.log.Error("list devices", "user_id", userID, "error", err)
		return nil, envelope.Fail(err)
	}

	devices := make([]Device, 0, len(sessions))
	for _, s := range sessions {
		online := s.ConnectionID != "" && h.presence != nil && h.presence.IsOnline(userID, s.ConnectionID)
		devices = append(devices, Device{Session: s, Online: online})
	}
	return envelope.OK(devices), nil
}

func (h *Handler) remove(ctx context.Context, input *removeInput) (*removeOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, envelope.Unauthorized()
	}

	if err := h.service.Remove(ctx, userID, input.DeviceID); err != nil {
		if envelope.Internal(err) {
			h.log.Error("remove device", "user_id", userID, "error", err)
		}
		return nil, envelope.Fail(err)
	}
	return envelope.OK(DeviceRemoved{DeviceID: input.DeviceID}), nil
}
