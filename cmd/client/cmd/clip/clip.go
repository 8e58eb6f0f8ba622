package clip

import (
	"github.com/spf13/cobra"
)

// ClipCmd - родительская команда для операций с историей буфера обмена
var ClipCmd = &cobra.Command{
	Use:   "clip",
	Short: "История буфера обмена",
	Long:  `Добавление, просмотр, поиск, закрепление и удаление элементов истории.`,
}
