package clipboard

import (
	"fmt"

	"github.com/danielgtaylor/huma/v2"
)

type ItemType string

const (
	TypeText  ItemType = "text"
	TypeImage ItemType = "image"
	TypeFile  ItemType = "file"
	TypeHTML  ItemType = "html"
)

// Types перечисляет все поддерживаемые типы в порядке вывода статистики.
var Types = []ItemType{TypeText, TypeImage, TypeFile, TypeHTML}

func (ItemType) Schema(_ huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type: "string",
		Enum: []any{
			string(TypeText),
			string(TypeImage),
			string(TypeFile),
			string(TypeHTML),
		},
		Description: "Тип содержимого буфера обмена",
		Examples:    []any{TypeText},
	}
}

// Validate проверяет, что тип входит в допустимый набор.
func (t ItemType) Validate() error {
	switch t {
	case TypeText, TypeImage, TypeFile, TypeHTML:
		return nil
	}
	return fmt.Errorf("неверный тип элемента: %s", t)
}

func (t ItemType) String() string {
	return string(t)
}
