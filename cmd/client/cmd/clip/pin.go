package clip

import (
	"fmt"

	"clipsync/cmd/client/cmd/types"
	"clipsync/cmd/client/cmd/view"

	"github.com/spf13/cobra"
)

var PinCmd = &cobra.Command{
	Use:   "pin <id>",
	Short: "Закрепить элемент",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPinned(cmd, args[0], true)
	},
}

var UnpinCmd = &cobra.Command{
	Use:   "unpin <id>",
	Short: "Открепить элемент",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPinned(cmd, args[0], false)
	},
}

var TagCmd = &cobra.Command{
	Use:   "tag <id> [тег...]",
	Short: "Заменить теги элемента",
	Long:  `Заменяет теги элемента. Без тегов очищает их.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		item, err := app.SetTags(cmd.Context(), args[0], args[1:])
		if err != nil {
			return fmt.Errorf("ошибка изменения тегов: %w", err)
		}
		view.Success("Теги обновлены: %v", item.Tags)
		return nil
	},
}

func setPinned(cmd *cobra.Command, id string, pinned bool) error {
	app, err := types.App(cmd)
	if err != nil {
		return err
	}
	if _, err := app.SetPinned(cmd.Context(), id, pinned); err != nil {
		return fmt.Errorf("ошибка обновления: %w", err)
	}
	if pinned {
		view.Success("Закреплено: %s", id)
	} else {
		view.Success("Откреплено: %s", id)
	}
	return nil
}
