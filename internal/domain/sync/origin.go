package sync

import "context"

type originKey struct{}

// WithOrigin помечает запрос идентификатором соединения, с которого пришла мутация,
// чтобы не отправлять событие обратно источнику.
func WithOrigin(ctx context.Context, connID string) context.Context {
	if connID == "" {
		return ctx
	}
	return context.WithValue(ctx, originKey{}, connID)
}

func OriginFromContext(ctx context.Context) string {
	connID, _ := ctx.Value(originKey{}).(string)
	return connID
}
