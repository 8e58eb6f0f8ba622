package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"clipsync/internal/app/server/api/http/envelope"
	"clipsync/internal/domain/apperr"
	"clipsync/internal/domain/session"
	gosync "clipsync/internal/domain/sync"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// ConnectionHeader передает id websocket-соединения клиента, чтобы событие
// об изменении не вернулось на устройство, которое его вызвало.
const ConnectionHeader = "X-Connection-Id"

type Auth struct {
	session session.Servicer
	log     *slog.Logger
}

func New(session session.Servicer, log *slog.Logger) *Auth {
	return &Auth{
		session: session,
		log:     log.With("component", "auth_middleware"),
	}
}

type contextKey string

const (
	UserIDKey contextKey = "userID"
	tokenKey  contextKey = "token"
)

// Middleware возвращает middleware для Huma с сигнатурой func(ctx Context, next func(Context))
func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		token, ok := BearerToken(ctx.Header("Authorization"))
		if !ok {
			a.log.Debug("missing bearer token", "path", ctx.URL().Path)
			a.reject(ctx, http.StatusUnauthorized, "unauthorized")
			return
		}

		userID, err := a.session.Validate(ctx.Context(), token)
		if err != nil {
			if errors.Is(err, apperr.ErrUnauthenticated) {
				a.reject(ctx, http.StatusUnauthorized, "unauthorized")
				return
			}
			a.log.Error("validate token", "error", err)
			a.reject(ctx, http.StatusInternalServerError, "internal error")
			return
		}

		newCtx := WithUserID(ctx.Context(), userID)
		newCtx = WithToken(newCtx, token)
		if connID := ctx.Header(ConnectionHeader); connID != "" {
			newCtx = gosync.WithOrigin(newCtx, connID)
		}

		next(huma.WithContext(ctx, newCtx))
	}
}

func (a *Auth) reject(ctx huma.Context, status int, msg string) {
	ctx.SetStatus(status)
	ctx.SetHeader("Content-Type", "application/json")

	err := json.NewEncoder(ctx.BodyWriter()).Encode(envelope.Error{Message: msg})
	if err != nil {
		a.log.Error("encode error response", "error", err)
	}
}

// BearerToken извлекает токен из заголовка Authorization.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func GetUserID(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDKey).(int)
	return userID, ok
}

func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// GetToken возвращает токен текущего запроса, нужен для выхода из сессии.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok
}
