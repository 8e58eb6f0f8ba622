package clip

import (
	"fmt"
	"os"
	"strings"

	"clipsync/cmd/client/cmd/types"
	"clipsync/cmd/client/cmd/view"

	"github.com/spf13/cobra"
)

var searchLimit int

var SearchCmd = &cobra.Command{
	Use:   "search <строка>",
	Short: "Поиск по содержимому",
	Long:  `Ищет подстроку без учета регистра, самые новые элементы первыми.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		items, err := app.Search(cmd.Context(), strings.Join(args, " "), searchLimit)
		if err != nil {
			return fmt.Errorf("ошибка поиска: %w", err)
		}
		view.Items(os.Stdout, items)
		return nil
	},
}

func init() {
	SearchCmd.Flags().IntVar(&searchLimit, "limit", 20, "количество результатов")
}
