package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"clipsync/internal/domain/backup"
)

type GoogleDrive struct {
	client *http.Client
	url    string
}

// Export загружает снимок одним multipart-запросом: метаданные и содержимое.
func (g *GoogleDrive) Export(ctx context.Context, cfg backup.Config, snap backup.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}

	meta := map[string]any{
		"name":     fileName(snap.Timestamp),
		"mimeType": "application/json",
	}
	if cfg.Settings.FolderID != "" {
		meta["parents"] = []string{cfg.Settings.FolderID}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, part := range [][]byte{metaJSON, data} {
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", "application/json; charset=UTF-8")
		pw, err := w.CreatePart(h)
		if err != nil {
			return fmt.Errorf("create part: %w", err)
		}
		if _, err := pw.Write(part); err != nil {
			return fmt.Errorf("write part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, g.url, &body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+w.Boundary())
	return do(ctx, g.client, req, cfg.Credentials.AccessToken)
}

type OneDrive struct {
	client  *http.Client
	baseURL string
}

// Export кладет файл по пути <folder>:/<name>:/content, по умолчанию в root.
func (o *OneDrive) Export(ctx context.Context, cfg backup.Config, snap backup.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}

	folder := cfg.Settings.FolderID
	if folder == "" {
		folder = "root"
	}
	target := fmt.Sprintf("%s/%s:/%s:/content",
		strings.TrimRight(o.baseURL, "/"), folder, url.PathEscape(fileName(snap.Timestamp)))

	req, err := http.NewRequest(http.MethodPut, target, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return do(ctx, o.client, req, cfg.Credentials.AccessToken)
}

type Dropbox struct {
	client *http.Client
	url    string
}

type dropboxArg struct {
	Path       string `json:"path"`
	Mode       string `json:"mode"`
	Autorename bool   `json:"autorename"`
	Mute       bool   `json:"mute"`
}

func (d *Dropbox) Export(ctx context.Context, cfg backup.Config, snap backup.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}

	path := "/" + fileName(snap.Timestamp)
	if cfg.Settings.FolderID != "" {
		path = strings.TrimRight(cfg.Settings.FolderID, "/") + path
	}
	arg, err := json.Marshal(dropboxArg{Path: path, Mode: "add", Autorename: true})
	if err != nil {
		return fmt.Errorf("marshal api arg: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, d.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Dropbox-API-Arg", string(arg))
	return do(ctx, d.client, req, cfg.Credentials.AccessToken)
}
