package auth

import (
	"fmt"

	"clipsync/cmd/client/cmd/types"
	"clipsync/cmd/client/cmd/view"

	"github.com/spf13/cobra"
)

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Выйти из системы",
	Long:  `Отзывает токен на сервере и удаляет его локально.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if err := app.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("ошибка выхода: %w", err)
		}
		view.Success("Выход выполнен")
		return nil
	},
}
