package auth

import (
	"fmt"

	"clipsync/cmd/client/cmd/types"
	"clipsync/cmd/client/cmd/view"

	"github.com/spf13/cobra"
)

var WhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Показать текущего пользователя",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		u, err := app.Profile(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n", view.Bold("Логин:"), u.Login)
		fmt.Printf("%s %d\n", view.Bold("ID:"), u.ID)
		fmt.Printf("%s %s\n", view.Bold("Устройство:"), app.DeviceID())
		fmt.Printf("%s %s\n", view.Bold("Зарегистрирован:"), u.CreatedAt.Local().Format("2006-01-02"))
		return nil
	},
}
