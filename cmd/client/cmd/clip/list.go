// cmd/client/cmd/clip/list.go
package clip

import (
	"fmt"
	"os"
	"strconv"

	"clipsync/cmd/client/cmd/types"
	"clipsync/cmd/client/cmd/view"
	"clipsync/internal/app/client"
	"clipsync/internal/domain/clipboard"

	"github.com/spf13/cobra"
)

var (
	listType   string
	listPinned string
	listFormat string
	limit      int
	offset     int
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список элементов",
	Long: `Просмотр истории: закрепленные элементы первыми, затем от новых к старым.

Поддерживается пагинация через флаги --limit и --offset. Если сервер
недоступен, показывается локальная копия.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		q := client.ListQuery{
			Limit: limit,
			Skip:  offset,
			Type:  clipboard.ItemType(listType),
		}
		if listPinned != "" {
			pinned, err := strconv.ParseBool(listPinned)
			if err != nil {
				return fmt.Errorf("--pinned: ожидается true или false")
			}
			q.Pinned = &pinned
		}

		h, err := app.History(cmd.Context(), q)
		if err != nil {
			return fmt.Errorf("ошибка получения списка: %w", err)
		}

		if listFormat == "json" {
			return view.JSON(h.Items)
		}
		if h.Offline {
			view.Warn("Сервер недоступен, показана локальная копия")
		}
		view.Items(os.Stdout, h.Items)
		fmt.Printf("\nПоказано %d из %d\n", len(h.Items), h.Total)
		return nil
	},
}

func init() {
	ListCmd.Flags().StringVarP(&listType, "type", "t", "", "фильтр по типу")
	ListCmd.Flags().StringVar(&listPinned, "pinned", "", "фильтр по закреплению (true, false)")
	ListCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "формат вывода (table, json)")
	ListCmd.Flags().IntVar(&limit, "limit", 50, "ограничение количества элементов")
	ListCmd.Flags().IntVar(&offset, "offset", 0, "смещение для пагинации")
}
