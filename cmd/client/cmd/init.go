// cmd/client/cmd/init.go
package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"clipsync/cmd/client/cmd/auth"
	"clipsync/cmd/client/cmd/backup"
	"clipsync/cmd/client/cmd/clip"
	"clipsync/cmd/client/cmd/devices"
	"clipsync/cmd/client/cmd/view"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	initTLS    bool
	initDevice string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Сохранить настройки клиента",
	Long: `Команда init записывает адрес сервера и имя устройства в
~/.clipsync/config.yaml и проверяет соединение с сервером.

Переменные окружения SERVER_ADDRESS, ENABLE_TLS, DEVICE_NAME и
HEARTBEAT_INTERVAL имеют приоритет над файлом.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if initDevice != "" {
			cfg.DeviceName = initDevice
		}

		v := viper.New()
		v.Set("server_address", cfg.ServerAddress)
		v.Set("enable_tls", initTLS)
		v.Set("device_name", cfg.DeviceName)
		v.Set("heartbeat_interval", cfg.HeartbeatInterval.String())

		path := cfgFile
		if path == "" {
			path = filepath.Join(cfg.ConfigDir, "config.yaml")
		}
		if err := v.WriteConfigAs(path); err != nil {
			return fmt.Errorf("ошибка записи конфигурации: %w", err)
		}
		view.Success("Конфигурация сохранена: %s", path)

		fmt.Println("Проверка соединения с сервером...")
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		if _, err := app.CheckConnection(ctx); err != nil {
			view.Warn("Не удалось подключиться к серверу: %v", err)
		} else {
			view.Success("Соединение с сервером установлено")
		}

		fmt.Println()
		fmt.Println("Что дальше:")
		fmt.Println("1. Зарегистрируйтесь на сервере: clipsync auth register")
		fmt.Println("2. Войдите в систему: clipsync auth login")
		fmt.Println("3. Запустите синхронизацию: clipsync watch")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initTLS, "tls", false, "подключаться по TLS")
	initCmd.Flags().StringVar(&initDevice, "device-name", "", "имя этого устройства")
	rootCmd.AddCommand(initCmd)

	rootCmd.AddCommand(auth.AuthCmd)
	auth.AuthCmd.AddCommand(auth.RegisterCmd)
	auth.AuthCmd.AddCommand(auth.LoginCmd)
	auth.AuthCmd.AddCommand(auth.LogoutCmd)
	auth.AuthCmd.AddCommand(auth.WhoamiCmd)

	rootCmd.AddCommand(clip.ClipCmd)
	clip.ClipCmd.AddCommand(clip.AddCmd)
	clip.ClipCmd.AddCommand(clip.ListCmd)
	clip.ClipCmd.AddCommand(clip.PinCmd)
	clip.ClipCmd.AddCommand(clip.UnpinCmd)
	clip.ClipCmd.AddCommand(clip.TagCmd)
	clip.ClipCmd.AddCommand(clip.RemoveCmd)
	clip.ClipCmd.AddCommand(clip.UseCmd)
	clip.ClipCmd.AddCommand(clip.SearchCmd)
	clip.ClipCmd.AddCommand(clip.TopCmd)
	clip.ClipCmd.AddCommand(clip.StatsCmd)
	clip.ClipCmd.AddCommand(clip.PullCmd)

	rootCmd.AddCommand(devices.DevicesCmd)
	devices.DevicesCmd.AddCommand(devices.ListCmd)
	devices.DevicesCmd.AddCommand(devices.RemoveCmd)

	rootCmd.AddCommand(backup.BackupCmd)
	backup.BackupCmd.AddCommand(backup.ListCmd)
	backup.BackupCmd.AddCommand(backup.AddCmd)
	backup.BackupCmd.AddCommand(backup.EnableCmd)
	backup.BackupCmd.AddCommand(backup.DisableCmd)
	backup.BackupCmd.AddCommand(backup.TriggerCmd)
	backup.BackupCmd.AddCommand(backup.RemoveCmd)

	rootCmd.AddCommand(watchCmd)
}
