package health

import (
	"context"

	"clipsync/internal/app/server/api/http/envelope"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Counter сообщает число активных соединений хаба.
type Counter interface {
	Connections() int
}

type Handler struct {
	counter    Counter
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(counter Counter, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		counter:    counter,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

func (h *Handler) healthCheck(_ context.Context, _ *Input) (*Output, error) {
	h.log.Debug("health check request received")

	st := Status{Status: "OK"}
	if h.counter != nil {
		st.Connections = h.counter.Connections()
	}
	return envelope.OK(st), nil
}
