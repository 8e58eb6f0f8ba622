package types

import (
	"errors"

	"clipsync/internal/app/client"

	"github.com/spf13/cobra"
)

type ctxKey string

// ClientAppKey - ключ, под которым корневая команда кладет *client.App в контекст.
const ClientAppKey ctxKey = "client_app"

// App достает приложение из контекста команды.
func App(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, errors.New("приложение не инициализировано")
	}
	return app, nil
}
