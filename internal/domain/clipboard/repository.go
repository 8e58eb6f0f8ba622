package clipboard

import "context"

// Repository хранит элементы буфера обмена. Все методы ограничены владельцем;
// отсутствующий или чужой элемент возвращает ErrItemNotFound.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, userID int, itemID string, patch Patch) (*Item, error)
	Delete(ctx context.Context, userID int, itemID string) error
	IncrementUsage(ctx context.Context, userID int, itemID string) (*Item, error)
	List(ctx context.Context, userID int, filter ListFilter) ([]Item, int, error)
	MostUsed(ctx context.Context, userID, limit int) ([]Item, error)
	Search(ctx context.Context, userID int, query string, limit int) ([]Item, error)
	Recent(ctx context.Context, userID, limit int) ([]Item, error)
	CountByType(ctx context.Context, userID int) (map[ItemType]int, error)
	All(ctx context.Context, userID int) ([]Item, error)
}
