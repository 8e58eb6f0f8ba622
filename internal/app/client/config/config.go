package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress     = "localhost:8080"
	defaultEnv               = "local"
	defaultConfigDir         = ".clipsync"
	defaultHeartbeatInterval = 30 * time.Second
	defaultRequestTimeout    = 30 * time.Second

	tokenFile    = "token"
	deviceIDFile = "device_id"
	mirrorFile   = "clipboard.db"
)

type Config struct {
	Env               string        `mapstructure:"app_env"`
	ServerAddress     string        `mapstructure:"server_address"`
	EnableTLS         bool          `mapstructure:"enable_tls"`
	DeviceName        string        `mapstructure:"device_name"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	ConfigDir         string        `mapstructure:"config_dir"`
	TokenPath         string        `mapstructure:"-"`
	DeviceIDPath      string        `mapstructure:"-"`
	DataPath          string        `mapstructure:"-"`
}

// MustLoad загружает конфигурацию клиента и паникует при ошибке.
func MustLoad(configFile string) *Config {
	cfg, err := Load(configFile)
	if err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}
	return cfg
}

// Load читает .env, файл конфигурации (~/.clipsync/config.yaml или
// configFile) и переменные окружения. Переменные окружения важнее файла.
func Load(configFile string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", defaultEnv)
	v.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	v.SetDefault("ENABLE_TLS", false)
	v.SetDefault("DEVICE_NAME", defaultDeviceName())
	v.SetDefault("HEARTBEAT_INTERVAL", defaultHeartbeatInterval)
	v.SetDefault("REQUEST_TIMEOUT", defaultRequestTimeout)
	v.SetDefault("CONFIG_DIR", filepath.Join(homeDir, defaultConfigDir))

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(v.GetString("CONFIG_DIR"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("чтение файла конфигурации: %w", err)
		}
	}

	configDir := v.GetString("CONFIG_DIR")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("создание директории конфигурации: %w", err)
	}

	cfg := &Config{
		Env:               v.GetString("APP_ENV"),
		ServerAddress:     v.GetString("SERVER_ADDRESS"),
		EnableTLS:         v.GetBool("ENABLE_TLS"),
		DeviceName:        v.GetString("DEVICE_NAME"),
		HeartbeatInterval: v.GetDuration("HEARTBEAT_INTERVAL"),
		RequestTimeout:    v.GetDuration("REQUEST_TIMEOUT"),
		ConfigDir:         configDir,
		TokenPath:         filepath.Join(configDir, tokenFile),
		DeviceIDPath:      filepath.Join(configDir, deviceIDFile),
		DataPath:          filepath.Join(configDir, mirrorFile),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address не может быть пустым")
	}
	if c.DeviceName == "" {
		return fmt.Errorf("device_name не может быть пустым")
	}
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat_interval должен быть положительным")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout должен быть положительным")
	}
	return nil
}

// BaseURL возвращает адрес REST API с учетом TLS.
func (c *Config) BaseURL() string {
	if c.EnableTLS {
		return "https://" + c.ServerAddress
	}
	return "http://" + c.ServerAddress
}

// SocketURL возвращает адрес канала реального времени.
func (c *Config) SocketURL() string {
	if c.EnableTLS {
		return "wss://" + c.ServerAddress + "/ws"
	}
	return "ws://" + c.ServerAddress + "/ws"
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == ""
}

func defaultDeviceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "clipsync-cli"
	}
	return host
}
