// cmd/client/cmd/watch.go
package cmd

import (
	"fmt"
	"time"

	"clipsync/cmd/client/cmd/types"
	"clipsync/cmd/client/cmd/view"
	"clipsync/internal/app/client"
	"clipsync/internal/domain/sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var watchQuiet bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Получать изменения в реальном времени",
	Long: `Подключается к серверу, регистрирует это устройство и применяет
изменения истории к локальному зеркалу. Остановка: Ctrl+C.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		fmt.Printf("Устройство %s, сервер %s\n", view.Bold(cfg.DeviceName), cfg.ServerAddress)
		return app.Watch(cmd.Context(), printEvent)
	},
}

var (
	newColor    = color.New(color.FgGreen).SprintFunc()
	updateColor = color.New(color.FgCyan).SprintFunc()
	deleteColor = color.New(color.FgRed).SprintFunc()
	deviceColor = color.New(color.FgBlue).SprintFunc()
)

func printEvent(ev client.Event) {
	ts := view.Faint(time.Now().Format("15:04:05"))

	switch ev.Name {
	case sync.EventSessionReady:
		fmt.Println(ts, "подключено")
	case sync.EventClipboardNew:
		if ev.Duplicate {
			return
		}
		if ev.Item == nil {
			fmt.Println(ts, newColor("+"), view.Preview(string(ev.Data)))
			return
		}
		fmt.Println(ts, newColor("+"), ev.Item.ID, view.Preview(ev.Item.Content))
	case sync.EventClipboardUpdate:
		if watchQuiet || ev.Item == nil {
			return
		}
		fmt.Println(ts, updateColor("~"), ev.Item.ID, "pinned:", ev.Item.IsPinned, "tags:", ev.Item.Tags)
	case sync.EventClipboardDelete:
		fmt.Println(ts, deleteColor("-"), ev.ItemID)
	case sync.EventDeviceConnected:
		if watchQuiet {
			return
		}
		fmt.Println(ts, deviceColor("●"), ev.Device.DeviceName, "подключено")
	case sync.EventDeviceDisconnected:
		if watchQuiet {
			return
		}
		fmt.Println(ts, deviceColor("○"), ev.Device.DeviceName, "отключено")
	case sync.EventError:
		view.Warn("%s", ev.Message)
	}
}

func init() {
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "показывать только новые и удаленные элементы")
}
