package user

import (
	"context"
	"time"

	"clipsync/internal/app/server/api/http/envelope"
	"clipsync/internal/app/server/api/http/middleware/auth"
	"clipsync/internal/domain/session"
	"clipsync/internal/domain/user"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

type Handler struct {
	service  user.Servicer
	session  session.Servicer
	tokenTTL time.Duration
	log      *slog.Logger
	// public - мидлвари регистрации и входа, private - операций с токеном.
	public  huma.Middlewares
	private huma.Middlewares
}

func NewHandler(
	service user.Servicer,
	session session.Servicer,
	tokenTTL time.Duration,
	log *slog.Logger,
	public, private huma.Middlewares,
) *Handler {
	return &Handler{
		service:  service,
		session:  session,
		tokenTTL: tokenTTL,
		log:      log.With("component", "user_handler"),
		public:   public,
		private:  private,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.registerOp(), h.register)
	huma.Register(api, h.loginOp(), h.login)
	huma.Register(api, h.profileOp(), h.profile)
	huma.Register(api, h.logoutOp(), h.logout)
}

func (h *Handler) register(ctx context.Context, input *credentialsInput) (*registerOutput, error) {
	userID, err := h.service.Register(ctx, input.Body.Login, input.Body.Password)
	if err != nil {
		return nil, h.fail(err)
	}

	h.log.Info("user registered", "user_id", userID)
	return envelope.Created(Registered{ID: userID}), nil
}

func (h *Handler) login(ctx context.Context, input *credentialsInput) (*loginOutput, error) {
	u, err := h.service.Authenticate(ctx, input.Body.Login, input.Body.Password)
	if err != nil {
		return nil, h.fail(err)
	}

	token, err := h.session.Create(ctx, u.ID)
	if err != nil {
		return nil, h.fail(err)
	}

	return envelope.OK(Token{
		Token:     token,
		ExpiresIn: int64(h.tokenTTL.Seconds()),
		User:      u,
	}), nil
}

func (h *Handler) profile(ctx context.Context, _ *struct{}) (*profileOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, envelope.Unauthorized()
	}

	u, err := h.service.Profile(ctx, userID)
	if err != nil {
		return nil, h.fail(err)
	}
	return envelope.OK(u), nil
}

func (h *Handler) logout(ctx context.Context, _ *struct{}) (*logoutOutput, error) {
	token, ok := auth.GetToken(ctx)
	if !ok {
		return nil, envelope.Unauthorized()
	}

	if err := h.session.Revoke(ctx, token); err != nil {
		return nil, h.fail(err)
	}
	return envelope.OK(LoggedOut{LoggedOutAt: time.Now().UTC()}), nil
}

func (h *Handler) fail(err error) error {
	if envelope.Internal(err) {
		h.log.Error("auth request failed", "error", err)
	}
	return envelope.Fail(err)
}
