// Package view форматирует вывод CLI.
package view

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"clipsync/internal/domain/clipboard"

	"github.com/fatih/color"
)

const previewLen = 60

var (
	success = color.New(color.FgGreen).SprintFunc()
	warn    = color.New(color.FgYellow).SprintFunc()
	faint   = color.New(color.Faint).SprintFunc()
	bold    = color.New(color.Bold).SprintFunc()
	pin     = color.New(color.FgMagenta).SprintFunc()
)

func Success(format string, a ...any) {
	fmt.Println(success("✓"), fmt.Sprintf(format, a...))
}

func Warn(format string, a ...any) {
	fmt.Println(warn("⚠"), fmt.Sprintf(format, a...))
}

func Faint(s string) string {
	return faint(s)
}

func Bold(s string) string {
	return bold(s)
}

// JSON печатает v с отступами.
func JSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Items печатает элементы таблицей.
func Items(w io.Writer, items []clipboard.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Элементы не найдены")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tТип\t\tИсп.\tТеги\tСоздан\tСодержимое")
	for _, it := range items {
		mark := ""
		if it.IsPinned {
			mark = pin("📌")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			it.ID,
			it.Type,
			mark,
			it.UsageCount,
			strings.Join(it.Tags, ","),
			it.CreatedAt.Local().Format("2006-01-02 15:04"),
			Preview(it.Content),
		)
	}
	tw.Flush()
}

// Item печатает элемент подробно.
func Item(w io.Writer, it clipboard.Item) {
	fmt.Fprintf(w, "%s %s\n", bold("ID:"), it.ID)
	fmt.Fprintf(w, "%s %s\n", bold("Тип:"), it.Type)
	fmt.Fprintf(w, "%s %t\n", bold("Закреплен:"), it.IsPinned)
	fmt.Fprintf(w, "%s %d\n", bold("Использований:"), it.UsageCount)
	if len(it.Tags) > 0 {
		fmt.Fprintf(w, "%s %s\n", bold("Теги:"), strings.Join(it.Tags, ", "))
	}
	if it.Metadata != nil && it.Metadata.FileName != "" {
		fmt.Fprintf(w, "%s %s (%d байт)\n", bold("Файл:"), it.Metadata.FileName, it.Metadata.FileSize)
	}
	fmt.Fprintf(w, "%s %s\n", bold("Создан:"), it.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "%s %s\n", bold("Содержимое:"), Preview(it.Content))
}

// Preview сокращает содержимое до одной строки.
func Preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= previewLen {
		return s
	}
	r := []rune(s)
	return string(r[:previewLen-1]) + "…"
}
