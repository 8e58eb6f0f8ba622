package clipboard

import (
	"net/http"

	"clipsync/internal/domain/clipboard"

	"github.com/danielgtaylor/huma/v2"
)

// Тело запроса должно вмещать элемент максимального размера в JSON-кодировке.
const maxBodyBytes = 2*clipboard.MaxContentSize + 64<<10

var bearer = []map[string][]string{{"bearer": {}}}

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "clipboard-list",
		Method:      http.MethodGet,
		Path:        "/api/clipboard",
		Summary:     "История буфера обмена",
		Description: "Закрепленные элементы первыми, затем от новых к старым.",
		Tags:        []string{"clipboard"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID:   "clipboard-create",
		Method:        http.MethodPost,
		Path:          "/api/clipboard",
		Summary:       "Добавить элемент",
		Description:   "Сохраняет элемент и рассылает clipboard:new остальным устройствам пользователя.",
		Tags:          []string{"clipboard"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
		MaxBodyBytes:  maxBodyBytes,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "clipboard-update",
		Method:      http.MethodPatch,
		Path:        "/api/clipboard/{id}",
		Summary:     "Закрепить элемент или изменить теги",
		Tags:        []string{"clipboard"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "clipboard-delete",
		Method:      http.MethodDelete,
		Path:        "/api/clipboard/{id}",
		Summary:     "Удалить элемент",
		Tags:        []string{"clipboard"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) useOp() huma.Operation {
	return huma.Operation{
		OperationID: "clipboard-use",
		Method:      http.MethodPost,
		Path:        "/api/clipboard/{id}/use",
		Summary:     "Отметить использование элемента",
		Tags:        []string{"clipboard"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) mostUsedOp() huma.Operation {
	return huma.Operation{
		OperationID: "clipboard-most-used",
		Method:      http.MethodGet,
		Path:        "/api/clipboard/most-used",
		Summary:     "Часто используемые элементы",
		Tags:        []string{"clipboard"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) statsOp() huma.Operation {
	return huma.Operation{
		OperationID: "clipboard-stats",
		Method:      http.MethodGet,
		Path:        "/api/clipboard/stats",
		Summary:     "Статистика по истории",
		Tags:        []string{"clipboard"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) searchOp() huma.Operation {
	return huma.Operation{
		OperationID: "clipboard-search",
		Method:      http.MethodGet,
		Path:        "/api/clipboard/search",
		Summary:     "Поиск по содержимому",
		Tags:        []string{"clipboard"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}
