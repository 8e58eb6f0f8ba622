package clip

import (
	"fmt"
	"os"

	"clipsync/cmd/client/cmd/types"
	"clipsync/cmd/client/cmd/view"

	"github.com/spf13/cobra"
)

var topLimit int

var TopCmd = &cobra.Command{
	Use:   "top",
	Short: "Часто используемые элементы",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		items, err := app.MostUsed(cmd.Context(), topLimit)
		if err != nil {
			return fmt.Errorf("ошибка получения элементов: %w", err)
		}
		view.Items(os.Stdout, items)
		return nil
	},
}

func init() {
	TopCmd.Flags().IntVar(&topLimit, "limit", 10, "количество элементов")
}
