package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"clipsync/internal/domain/backup"

	"github.com/klauspost/compress/zstd"
)

// File пишет снимки в локальный каталог: <dir>/<userID>/<name>.json.zst.
type File struct {
	dir string
}

func NewFile(dir string) *File {
	return &File{dir: dir}
}

func (f *File) Export(ctx context.Context, cfg backup.Config, snap backup.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(snap)
	if err != nil {
		return err
	}

	dir := filepath.Join(f.dir, strconv.Itoa(cfg.UserID))
	if cfg.Settings.FolderID != "" {
		dir = filepath.Join(dir, filepath.Clean("/"+cfg.Settings.FolderID))
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("create encoder: %w", err)
	}
	defer enc.Close()
	compressed := enc.EncodeAll(data, nil)

	// Запись через временный файл, чтобы не оставить половину снимка.
	path := filepath.Join(dir, fileName(snap.Timestamp)+".zst")
	tmp, err := os.CreateTemp(dir, ".backup-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close backup: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename backup: %w", err)
	}
	return nil
}

// ReadFile распаковывает снимок, записанный File.
func ReadFile(path string) ([]byte, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	defer dec.Close()
	return dec.DecodeAll(compressed, nil)
}
