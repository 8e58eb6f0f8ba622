// cmd/client/cmd/clip/add.go
package clip

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"clipsync/cmd/client/cmd/types"
	"clipsync/cmd/client/cmd/view"
	"clipsync/internal/app/client"
	"clipsync/internal/domain/clipboard"

	"github.com/spf13/cobra"
)

var (
	addType   string
	addTags   []string
	addFile   string
	addSource string
)

var AddCmd = &cobra.Command{
	Use:   "add [текст...]",
	Short: "Добавить элемент в историю",
	Long: `Отправляет содержимое на сервер; остальные устройства получат его сразу.

Без аргументов содержимое читается из stdin, например:
  pbpaste | clipsync clip add
С флагом --file содержимое берется из файла.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		req := clipboard.CreateRequest{
			Type: clipboard.ItemType(addType),
			Tags: addTags,
		}
		if req.Type != "" {
			if err := req.Type.Validate(); err != nil {
				return err
			}
		}

		switch {
		case addFile != "":
			data, err := os.ReadFile(addFile)
			if err != nil {
				return fmt.Errorf("ошибка чтения файла: %w", err)
			}
			req.Content = string(data)
			req.Metadata = &clipboard.Metadata{
				FileName: filepath.Base(addFile),
				FileSize: int64(len(data)),
				MimeType: mime.TypeByExtension(filepath.Ext(addFile)),
			}
			if req.Type == "" {
				req.Type = clipboard.TypeFile
			}
		case len(args) > 0:
			req.Content = strings.Join(args, " ")
		default:
			data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), clipboard.MaxContentSize+1))
			if err != nil {
				return fmt.Errorf("ошибка чтения stdin: %w", err)
			}
			req.Content = strings.TrimSuffix(string(data), "\n")
		}

		if req.Content == "" {
			return fmt.Errorf("пустое содержимое")
		}
		if len(req.Content) > clipboard.MaxContentSize {
			return fmt.Errorf("содержимое больше %d байт", clipboard.MaxContentSize)
		}
		if addSource != "" {
			if req.Metadata == nil {
				req.Metadata = &clipboard.Metadata{}
			}
			req.Metadata.Source = addSource
		}

		item, err := app.Capture(cmd.Context(), req)
		if errors.Is(err, client.ErrDuplicateCapture) {
			view.Warn("Пропущено: %v", err)
			return nil
		}
		if err != nil {
			return fmt.Errorf("ошибка добавления: %w", err)
		}

		view.Success("Добавлено: %s", item.ID)
		return nil
	},
}

func init() {
	AddCmd.Flags().StringVarP(&addType, "type", "t", "", "тип содержимого (text, image, file, html)")
	AddCmd.Flags().StringSliceVar(&addTags, "tag", nil, "теги элемента")
	AddCmd.Flags().StringVarP(&addFile, "file", "f", "", "взять содержимое из файла")
	AddCmd.Flags().StringVar(&addSource, "source", "", "источник содержимого")
}
