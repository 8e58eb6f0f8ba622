package clipboard

import (
	"context"

	"clipsync/internal/app/server/api/http/envelope"
	"clipsync/internal/app/server/api/http/middleware/auth"
	"clipsync/internal/domain/clipboard"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

type Handler struct {
	service    clipboard.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service clipboard.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log.With("component", "clipboard_handler"),
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	// Статические пути регистрируются до /{id}.
	huma.Register(api, h.mostUsedOp(), h.mostUsed)
	huma.Register(api, h.statsOp(), h.stats)
	huma.Register(api, h.searchOp(), h.search)

	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.deleteOp(), h.delete)
	huma.Register(api, h.useOp(), h.use)
}

func (h *Handler) list(ctx context.Context, input *listInput) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, envelope.Unauthorized()
	}

	filter := clipboard.ListFilter{
		Limit: input.Limit,
		Skip:  input.Skip,
		Type:  clipboard.ItemType(input.Type),
	}
	switch input.Pinned {
	case "true":
		filter.Pinned = ptr(true)
	case "false":
		filter.Pinned = ptr(false)
	}

	result, err := h.service.List(ctx, userID, filter)
	if err != nil {
		return nil, h.fail(err)
	}
	return envelope.OK(result), nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*itemOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, envelope.Unauthorized()
	}

	item, err := h.service.Create(ctx, userID, input.Body)
	if err != nil {
		return nil, h.fail(err)
	}
	return envelope.Created(*item), nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*itemOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, envelope.Unauthorized()
	}

	item, err := h.service.Update(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, h.fail(err)
	}
	return envelope.OK(*item), nil
}

func (h *Handler) delete(ctx context.Context, input *idInput) (*deleteOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, envelope.Unauthorized()
	}

	if err := h.service.Delete(ctx, userID, input.ID); err != nil {
		return nil, h.fail(err)
	}
	return envelope.OK(ItemDeleted{ID: input.ID}), nil
}

func (h *Handler) use(ctx context.Context, input *idInput) (*itemOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, envelope.Unauthorized()
	}

	item, err := h.service.IncrementUsage(ctx, userID, input.ID)
	if err != nil {
		return nil, h.fail(err)
	}
	return envelope.OK(*item), nil
}

func (h *Handler) mostUsed(ctx context.Context, input *mostUsedInput) (*itemsOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, envelope.Unauthorized()
	}

	items, err := h.service.MostUsed(ctx, userID, input.Limit)
	if err != nil {
		return nil, h.fail(err)
	}
	return envelope.OK(items), nil
}

func (h *Handler) search(ctx context.Context, input *searchInput) (*itemsOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, envelope.Unauthorized()
	}

	items, err := h.service.Search(ctx, userID, input.Query, input.Limit)
	if err != nil {
		return nil, h.fail(err)
	}
	return envelope.OK(items), nil
}

func (h *Handler) stats(ctx context.Context, _ *struct{}) (*statsOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, envelope.Unauthorized()
	}

	stats, err := h.service.Stats(ctx, userID)
	if err != nil {
		return nil, h.fail(err)
	}
	return envelope.OK(stats), nil
}

func (h *Handler) fail(err error) error {
	if envelope.Internal(err) {
		h.log.Error("clipboard request failed", "error", err)
	}
	return envelope.Fail(err)
}

func ptr[T any](v T) *T {
	return &v
}
