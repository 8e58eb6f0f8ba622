package clip

import (
	"fmt"
	"os"

	"clipsync/cmd/client/cmd/types"
	"clipsync/cmd/client/cmd/view"
	"clipsync/internal/domain/clipboard"

	"github.com/spf13/cobra"
)

var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Статистика истории",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		st, err := app.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка получения статистики: %w", err)
		}

		fmt.Printf("%s %d\n", view.Bold("Всего элементов:"), st.TotalItems)
		for _, t := range clipboard.Types {
			fmt.Printf("  %-6s %d\n", t, st.ItemsByType[t])
		}

		fmt.Println()
		fmt.Println(view.Bold("Часто используемые:"))
		view.Items(os.Stdout, st.MostUsed)

		fmt.Println()
		fmt.Println(view.Bold("Последние:"))
		view.Items(os.Stdout, st.RecentItems)
		return nil
	},
}
