package backup

import (
	"context"

	"clipsync/internal/app/server/api/http/envelope"
	"clipsync/internal/app/server/api/http/middleware/auth"
	"clipsync/internal/domain/backup"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

type Handler struct {
	service    backup.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service backup.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log.With("component", "backup_handler"),
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.deleteOp(), h.delete)
	huma.Register(api, h.triggerOp(), h.trigger)
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, envelope.Unauthorized()
	}

	configs, err := h.service.List(ctx, userID)
	if err != nil {
		return nil, h.fail(err)
	}
	return envelope.OK(configs), nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*configOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, envelope.Unauthorized()
	}

	cfg, err := h.service.Create(ctx, userID, input.Body)
	if err != nil {
		return nil, h.fail(err)
	}
	return envelope.Created(*cfg), nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*configOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, envelope.Unauthorized()
	}

	cfg, err := h.service.Update(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, h.fail(err)
	}
	return envelope.OK(*cfg), nil
}

func (h *Handler) delete(ctx context.Context, input *idInput) (*deleteOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, envelope.Unauthorized()
	}

	if err := h.service.Delete(ctx, userID, input.ID); err != nil {
		return nil, h.fail(err)
	}
	return envelope.OK(ConfigDeleted{ID: input.ID}), nil
}

// trigger выполняет экспорт синхронно. Ошибка хранилища отдается как 502.
func (h *Handler) trigger(ctx context.Context, input *idInput) (*configOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, envelope.Unauthorized()
	}

	cfg, err := h.service.Trigger(ctx, userID, input.ID)
	if err != nil {
		return nil, h.fail(err)
	}
	return envelope.OK(*cfg), nil
}

func (h *Handler) fail(err error) error {
	if envelope.Internal(err) {
		h.log.Error("backup request failed", "error", err)
	} else {
		h.log.Debug("backup request rejected", "error", err)
	}
	return envelope.Fail(err)
}
