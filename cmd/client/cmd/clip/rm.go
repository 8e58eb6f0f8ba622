package clip

import (
	"fmt"

	"clipsync/cmd/client/cmd/types"
	"clipsync/cmd/client/cmd/view"

	"github.com/spf13/cobra"
)

var RemoveCmd = &cobra.Command{
	Use:     "rm <id>...",
	Aliases: []string{"delete"},
	Short:   "Удалить элементы",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		for _, id := range args {
			if err := app.Remove(cmd.Context(), id); err != nil {
				return fmt.Errorf("ошибка удаления %s: %w", id, err)
			}
			view.Success("Удалено: %s", id)
		}
		return nil
	},
}
