package client

import (
	"encoding/hex"

	"clipsync/internal/domain/clipboard"

	"github.com/zeebo/blake3"
)

// Fingerprint - отпечаток содержимого с учетом типа.
func Fingerprint(t clipboard.ItemType, content string) string {
	buf := make([]byte, 0, len(t)+1+len(content))
	buf = append(buf, string(t)...)
	buf = append(buf, 0)
	buf = append(buf, content...)
	sum := blake3.Sum256(buf)
	return hex.EncodeToString(sum[:])
}
