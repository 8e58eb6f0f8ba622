// REST API и websocket-точка синхронизации буфера обмена.
//
//	GET    /health                      # состояние (публичный)
//	POST   /api/auth/register           # регистрация (публичный)
//	POST   /api/auth/login              # вход (публичный)
//	GET    /api/auth/profile            # профиль (auth)
//	POST   /api/auth/logout             # выход (auth)
//	GET    /api/clipboard               # история (auth)
//	POST   /api/clipboard               # новый элемент (auth)
//	PATCH  /api/clipboard/{id}          # закрепление и теги (auth)
//	DELETE /api/clipboard/{id}          # удаление (auth)
//	POST   /api/clipboard/{id}/use      # счетчик использования (auth)
//	GET    /api/clipboard/most-used     # (auth)
//	GET    /api/clipboard/stats         # (auth)
//	GET    /api/clipboard/search        # (auth)
//	GET    /api/devices                 # устройства (auth)
//	DELETE /api/devices/{deviceId}      # (auth)
//	GET    /api/backup                  # настройки экспорта (auth)
//	POST   /api/backup                  # (auth)
//	PUT    /api/backup/{id}             # (auth)
//	DELETE /api/backup/{id}             # (auth)
//	POST   /api/backup/{id}/trigger     # экспорт сейчас (auth)
//	GET    /ws                          # websocket, токен в заголовке или ?token=
package api

import (
	"context"
	"fmt"
	"time"

	backupAPI "clipsync/internal/app/server/api/http/backup"
	clipboardAPI "clipsync/internal/app/server/api/http/clipboard"
	deviceAPI "clipsync/internal/app/server/api/http/device"
	"clipsync/internal/app/server/api/http/envelope"
	healthAPI "clipsync/internal/app/server/api/http/health"
	"clipsync/internal/app/server/api/http/middleware"
	"clipsync/internal/app/server/api/http/middleware/auth"
	"clipsync/internal/app/server/api/http/middleware/logger"
	"clipsync/internal/app/server/api/http/middleware/ratelimit"
	userAPI "clipsync/internal/app/server/api/http/user"
	"clipsync/internal/app/server/api/ws"
	"clipsync/internal/app/server/config"
	"clipsync/internal/app/server/crypto"
	"clipsync/internal/domain/backup"
	"clipsync/internal/domain/clipboard"
	"clipsync/internal/domain/device"
	"clipsync/internal/domain/session"
	gosync "clipsync/internal/domain/sync"
	"clipsync/internal/domain/user"
	"clipsync/internal/infrastructure/export"
	"clipsync/internal/infrastructure/storage/postgres"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"
)

// Services - доменные сервисы сервера. Фоновые задачи (очистка устройств,
// расписание экспорта) запускаются из main.
type Services struct {
	Users     *user.Service
	Sessions  *session.Service
	Devices   *device.Registry
	Hub       *gosync.Hub
	Clipboard *clipboard.Service
	Backup    *backup.Service
	TokenTTL  time.Duration
	RateLimit config.RateLimit
}

func NewServices(storage *postgres.Storage, cfg *config.Config, log *slog.Logger) (*Services, error) {
	pool := storage.Pool()

	sealer, err := crypto.NewSealer(cfg.Backup.CredentialsKey)
	if err != nil {
		return nil, fmt.Errorf("credentials sealer: %w", err)
	}

	sessions := session.NewService(postgres.NewSessionRepository(pool, log), cfg.Auth.TokenTTL, log)
	devices := device.NewRegistry(postgres.NewDeviceRepository(pool, log), cfg.Devices.Retention, log)
	hub := gosync.NewHub(sessions, devices, log)
	items := clipboard.NewService(postgres.NewItemRepository(pool, log), hub, log)
	sinks := export.Sinks(export.Options{Dir: cfg.Backup.Dir})

	return &Services{
		Users:     user.NewService(postgres.NewUserRepository(pool, log), user.DefaultPolicy(), log),
		Sessions:  sessions,
		Devices:   devices,
		Hub:       hub,
		Clipboard: items,
		Backup:    backup.NewService(postgres.NewBackupRepository(pool, sealer, log), items, sinks, log),
		TokenTTL:  cfg.Auth.TokenTTL,
		RateLimit: cfg.RateLimit,
	}, nil
}

// New создает *chi.Mux со всеми операциями huma и websocket-точкой /ws.
// Операции /api/ проходят через ограничитель запросов по IP.
// Отмена ctx закрывает открытые websocket-соединения.
func New(ctx context.Context, s *Services, log *slog.Logger) *chi.Mux {
	envelope.Install()

	mux := chi.NewMux()
	mux.Use(chimw.Recoverer)

	cfg := huma.DefaultConfig("Clipsync API", "1.0.0")
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}
	API := humachi.New(mux, cfg)

	authMW := auth.New(s.Sessions, log)
	loggerMW := logger.New(log)
	limiter := ratelimit.New(s.RateLimit.MaxRequests, s.RateLimit.Window, log)
	middlewares := middleware.NewContainer()

	healthAPI.NewHandler(s.Hub, log, middlewares.Add(loggerMW.Middleware()).GetAllAndClear()).SetupRoutes(API)

	public := middlewares.Add(limiter.Middleware(), loggerMW.Middleware()).GetAllAndClear()
	private := middlewares.Add(limiter.Middleware(), authMW.Middleware(), loggerMW.Middleware()).GetAllAndClear()
	userAPI.NewHandler(s.Users, s.Sessions, s.TokenTTL, log, public, private).SetupRoutes(API)

	middlewares.Add(limiter.Middleware(), authMW.Middleware(), loggerMW.Middleware())
	clipboardAPI.NewHandler(s.Clipboard, log, middlewares.GetAllAndClear()).SetupRoutes(API)

	middlewares.Add(limiter.Middleware(), authMW.Middleware(), loggerMW.Middleware())
	deviceAPI.NewHandler(s.Devices, s.Hub, log, middlewares.GetAllAndClear()).SetupRoutes(API)

	middlewares.Add(limiter.Middleware(), authMW.Middleware(), loggerMW.Middleware())
	backupAPI.NewHandler(s.Backup, log, middlewares.GetAllAndClear()).SetupRoutes(API)

	mux.Handle("/ws", ws.NewHandler(ctx, s.Hub, log))

	return mux
}
