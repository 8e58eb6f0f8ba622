package device

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "devices-list",
		Method:      http.MethodGet,
		Path:        "/api/devices",
		Summary:     "Устройства пользователя",
		Tags:        []string{"devices"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) removeOp() huma.Operation {
	return huma.Operation{
		OperationID: "devices-remove",
		Method:      http.MethodDelete,
		Path:        "/api/devices/{deviceId}",
		Summary:     "Забыть устройство",
		Tags:        []string{"devices"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
