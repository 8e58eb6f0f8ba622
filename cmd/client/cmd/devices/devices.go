package devices

import (
	"fmt"
	"os"
	"text/tabwriter"

	"clipsync/cmd/client/cmd/types"
	"clipsync/cmd/client/cmd/view"

	"github.com/spf13/cobra"
)

// DevicesCmd - родительская команда для управления устройствами
var DevicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Устройства пользователя",
}

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список устройств",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		devices, err := app.Devices(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка получения устройств: %w", err)
		}
		if len(devices) == 0 {
			fmt.Println("Устройства не найдены")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tИмя\tПлатформа\tСтатус\tАктивность")
		for _, d := range devices {
			status := view.Faint("offline")
			if d.Online {
				status = "online"
			}
			name := d.DeviceName
			if d.DeviceID == app.DeviceID() {
				name += " (это устройство)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				d.DeviceID, name, d.Platform, status, d.LastActive.Local().Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var RemoveCmd = &cobra.Command{
	Use:   "rm <device-id>",
	Short: "Удалить устройство",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if err := app.RemoveDevice(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("ошибка удаления устройства: %w", err)
		}
		view.Success("Устройство удалено: %s", args[0])
		return nil
	},
}
