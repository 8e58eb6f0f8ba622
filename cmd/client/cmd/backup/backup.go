package backup

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"clipsync/cmd/client/cmd/types"
	"clipsync/cmd/client/cmd/view"
	"clipsync/internal/domain/backup"

	"github.com/spf13/cobra"
)

// BackupCmd - родительская команда для настроек экспорта истории
var BackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Резервные копии истории",
	Long:  `Настройка экспорта истории в Google Drive, OneDrive, Dropbox или каталог на сервере.`,
}

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список настроек экспорта",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		configs, err := app.Backups(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка получения настроек: %w", err)
		}
		if len(configs) == 0 {
			fmt.Println("Настройки экспорта не найдены")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tПровайдер\tВключен\tАвто\tИнтервал\tПоследний")
		for _, c := range configs {
			last := view.Faint("никогда")
			if c.LastBackup != nil {
				last = c.LastBackup.Local().Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%s\t%t\t%t\t%s\t%s\n",
				c.ID, c.Provider, c.Enabled, c.Settings.AutoBackup, c.Interval(), last)
		}
		return w.Flush()
	},
}

var (
	addFolder   string
	addAuto     bool
	addInterval time.Duration
	addToken    string
)

var AddCmd = &cobra.Command{
	Use:   "add <provider>",
	Short: "Добавить настройку экспорта",
	Long: `Добавляет настройку для провайдера google-drive, onedrive, dropbox или file.
Новая настройка выключена: включите ее командой clipsync backup enable <id>.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		provider := backup.Provider(args[0])
		if err := provider.Validate(); err != nil {
			return err
		}
		req := backup.CreateConfigRequest{
			Provider: provider,
			Settings: &backup.Settings{
				FolderID:   addFolder,
				AutoBackup: addAuto,
				IntervalMs: addInterval.Milliseconds(),
			},
		}
		if addToken != "" {
			req.Credentials = &backup.ProviderCredentials{AccessToken: addToken}
		}

		cfg, err := app.AddBackup(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("ошибка добавления: %w", err)
		}
		view.Success("Настройка добавлена: %s", cfg.ID)
		return nil
	},
}

var EnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Включить экспорт",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd, args[0], true)
	},
}

var DisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Выключить экспорт",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd, args[0], false)
	},
}

var TriggerCmd = &cobra.Command{
	Use:   "trigger <id>",
	Short: "Выполнить экспорт сейчас",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		cfg, err := app.TriggerBackup(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("ошибка экспорта: %w", err)
		}
		view.Success("Экспорт в %s выполнен", cfg.Provider)
		return nil
	},
}

var RemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Удалить настройку экспорта",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if err := app.RemoveBackup(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("ошибка удаления: %w", err)
		}
		view.Success("Настройка удалена: %s", args[0])
		return nil
	},
}

func setEnabled(cmd *cobra.Command, id string, enabled bool) error {
	app, err := types.App(cmd)
	if err != nil {
		return err
	}
	if _, err := app.UpdateBackup(cmd.Context(), id, backup.UpdateConfigRequest{Enabled: &enabled}); err != nil {
		return fmt.Errorf("ошибка обновления: %w", err)
	}
	if enabled {
		view.Success("Экспорт включен: %s", id)
	} else {
		view.Success("Экспорт выключен: %s", id)
	}
	return nil
}

func init() {
	AddCmd.Flags().StringVar(&addFolder, "folder", "", "папка или путь в хранилище")
	AddCmd.Flags().BoolVar(&addAuto, "auto", false, "выполнять экспорт автоматически")
	AddCmd.Flags().DurationVar(&addInterval, "interval", 0, "интервал автоматического экспорта (по умолчанию 24h)")
	AddCmd.Flags().StringVar(&addToken, "token", "", "access token провайдера")
}
