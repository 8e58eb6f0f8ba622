package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("DEVICE_NAME", "laptop")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", cfg.ServerAddress)
	assert.False(t, cfg.EnableTLS)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, filepath.Join(dir, "token"), cfg.TokenPath)
	assert.Equal(t, filepath.Join(dir, "clipboard.db"), cfg.DataPath)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL())
	assert.Equal(t, "ws://localhost:8080/ws", cfg.SocketURL())
	assert.True(t, cfg.IsLocal())
}

func TestLoad_ConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("HEARTBEAT_INTERVAL", "10s")

	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(
		"server_address: clip.example.com\nenable_tls: true\ndevice_name: desktop\n"), 0600))

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "clip.example.com", cfg.ServerAddress)
	assert.Equal(t, "desktop", cfg.DeviceName)
	assert.Equal(t, 10*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, "https://clip.example.com", cfg.BaseURL())
	assert.Equal(t, "wss://clip.example.com/ws", cfg.SocketURL())
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())
	t.Setenv("HEARTBEAT_INTERVAL", "-1s")

	_, err := Load("")

	assert.ErrorContains(t, err, "heartbeat_interval")
}

func TestMustLoad_PanicsOnBrokenFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	file := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server_address: [\n"), 0600))

	assert.Panics(t, func() { MustLoad(file) })
}
