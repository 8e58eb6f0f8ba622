package clip

import (
	"fmt"

	"clipsync/cmd/client/cmd/types"

	"github.com/spf13/cobra"
)

var UseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Вывести содержимое элемента и отметить использование",
	Long: `Печатает содержимое элемента в stdout без форматирования, например:
  clipsync clip use <id> | pbcopy`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		item, err := app.Use(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("ошибка получения элемента: %w", err)
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), item.Content)
		return err
	},
}
