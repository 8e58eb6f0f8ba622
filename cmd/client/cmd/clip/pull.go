package clip

import (
	"fmt"

	"clipsync/cmd/client/cmd/types"
	"clipsync/cmd/client/cmd/view"

	"github.com/spf13/cobra"
)

var PullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Загрузить всю историю в локальное зеркало",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		n, err := app.Pull(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка загрузки: %w", err)
		}
		view.Success("Загружено элементов: %d", n)
		return nil
	},
}
