package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// devCredentialsKey шифрует токены провайдеров вне prod, если CREDENTIALS_KEY не задан.
const devCredentialsKey = "clipsync-local-credentials-key"

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env       string
	DB        DB
	Server    Server
	Auth      Auth
	Devices   Devices
	Backup    Backup
	RateLimit RateLimit
}

type DB struct {
	DatabaseURI string
	Migrations  string
}

type Server struct {
	RunAddress      string
	ShutdownTimeout time.Duration
}

type Auth struct {
	TokenTTL time.Duration
}

type Devices struct {
	Retention     time.Duration
	SweepInterval time.Duration
}

type Backup struct {
	Tick time.Duration
	Dir  string
	// CredentialsKey - секрет для шифрования токенов провайдеров в базе.
	CredentialsKey string
}

// RateLimit - ограничение запросов к /api/ с одного IP. MaxRequests <= 0 отключает его.
type RateLimit struct {
	Window      time.Duration
	MaxRequests int
}

// MustLoad читает конфигурацию из окружения (и .env, если он есть).
// Без DATABASE_URI сервер не стартует.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func Load() (*Config, error) {
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("load %s: %w", envPath, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", EnvLocal)
	v.SetDefault("RUN_ADDRESS", ":8080")
	v.SetDefault("MIGRATIONS_PATH", "migrations")
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("TOKEN_TTL", 24*time.Hour)
	v.SetDefault("DEVICE_RETENTION", 30*24*time.Hour)
	v.SetDefault("DEVICE_SWEEP_INTERVAL", time.Hour)
	v.SetDefault("BACKUP_TICK", time.Minute)
	v.SetDefault("BACKUP_DIR", "backups")
	v.SetDefault("RATE_LIMIT_WINDOW", 15*time.Minute)
	v.SetDefault("RATE_LIMIT_MAX_REQUESTS", 100)

	cfg := &Config{
		Env: v.GetString("APP_ENV"),
		DB: DB{
			DatabaseURI: v.GetString("DATABASE_URI"),
			Migrations:  v.GetString("MIGRATIONS_PATH"),
		},
		Server: Server{
			RunAddress:      v.GetString("RUN_ADDRESS"),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Auth: Auth{TokenTTL: v.GetDuration("TOKEN_TTL")},
		Devices: Devices{
			Retention:     v.GetDuration("DEVICE_RETENTION"),
			SweepInterval: v.GetDuration("DEVICE_SWEEP_INTERVAL"),
		},
		Backup: Backup{
			Tick:           v.GetDuration("BACKUP_TICK"),
			Dir:            v.GetString("BACKUP_DIR"),
			CredentialsKey: v.GetString("CREDENTIALS_KEY"),
		},
		RateLimit: RateLimit{
			Window:      v.GetDuration("RATE_LIMIT_WINDOW"),
			MaxRequests: v.GetInt("RATE_LIMIT_MAX_REQUESTS"),
		},
	}

	if cfg.Backup.CredentialsKey == "" && cfg.Env != EnvProd {
		cfg.Backup.CredentialsKey = devCredentialsKey
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.DB.DatabaseURI == "":
		return fmt.Errorf("DATABASE_URI is required")
	case c.Devices.SweepInterval <= 0:
		return fmt.Errorf("DEVICE_SWEEP_INTERVAL must be positive")
	case c.Backup.Tick <= 0:
		return fmt.Errorf("BACKUP_TICK must be positive")
	case c.RateLimit.MaxRequests > 0 && c.RateLimit.Window <= 0:
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	case c.Backup.CredentialsKey == "":
		return fmt.Errorf("CREDENTIALS_KEY is required in %s", EnvProd)
	}
	return nil
}
