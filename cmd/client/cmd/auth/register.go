// cmd/client/cmd/auth/register.go
package auth

import (
	"context"
	"fmt"
	"time"

	"clipsync/cmd/client/cmd/types"
	"clipsync/cmd/client/cmd/view"
	"clipsync/internal/domain/apperr"
	"clipsync/internal/domain/user"

	"github.com/spf13/cobra"
)

var RegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Зарегистрировать нового пользователя",
	Long: `Регистрация нового пользователя на сервере clipsync.

Пароль должен содержать минимум 8 символов: строчную и заглавную буквы,
цифру и спецсимвол.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		fmt.Println("=== Регистрация нового пользователя ===")
		fmt.Println()

		login, err := readLogin()
		if err != nil {
			return err
		}
		password, err := readPassword("Пароль: ")
		if err != nil {
			return err
		}
		confirm, err := readPassword("Повторите пароль: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("пароли не совпадают")
		}

		// та же политика, что на сервере, чтобы не гонять заведомо плохой запрос
		if err := user.DefaultPolicy().Check(login, password); err != nil {
			return fmt.Errorf("ошибка регистрации: %s", apperr.Message(err))
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		id, err := app.Register(ctx, user.Credentials{Login: login, Password: password})
		if err != nil {
			return fmt.Errorf("ошибка регистрации: %w", err)
		}

		fmt.Println()
		view.Success("Регистрация успешно завершена (ID %d)", id)
		fmt.Println("Теперь вы можете войти в систему: clipsync auth login")
		return nil
	},
}
