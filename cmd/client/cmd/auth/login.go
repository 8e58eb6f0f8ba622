// cmd/client/cmd/auth/login.go
package auth

import (
	"context"
	"fmt"
	"time"

	"clipsync/cmd/client/cmd/types"
	"clipsync/cmd/client/cmd/view"
	"clipsync/internal/domain/user"

	"github.com/spf13/cobra"
)

var skipPull bool

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Войти в систему clipsync",
	Long: `Аутентификация на сервере clipsync.

После входа токен сохраняется в ~/.clipsync/token, а история загружается
в локальное зеркало.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		fmt.Println("=== Вход в систему ===")
		fmt.Println()

		login, err := readLogin()
		if err != nil {
			return err
		}
		password, err := readPassword("Пароль: ")
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		token, err := app.Login(ctx, user.Credentials{Login: login, Password: password})
		if err != nil {
			return fmt.Errorf("ошибка аутентификации: %w", err)
		}

		fmt.Println()
		view.Success("Вход выполнен: %s, токен действует %s",
			token.User.Login, time.Duration(token.ExpiresIn)*time.Second)

		if skipPull {
			return nil
		}
		fmt.Println("Загрузка истории...")
		n, err := app.Pull(ctx)
		if err != nil {
			view.Warn("Не удалось загрузить историю: %v", err)
			return nil
		}
		view.Success("Загружено элементов: %d", n)
		return nil
	},
}

func init() {
	LoginCmd.Flags().BoolVar(&skipPull, "no-pull", false, "не загружать историю после входа")
}
