package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	BackendPostgres = "postgres"
	BackendBadger   = "badger"
)

type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	GinMode string `envconfig:"GIN_MODE" default:"release"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	DBHost string `envconfig:"DB_HOST" default:"localhost"`
	DBUser string `envconfig:"DB_USER" default:"postgres"`
	DBPass string `envconfig:"DB_PASS" default:"postgres"`
	DBName string `envconfig:"DB_NAME" default:"chatapp"`
	DBPort string `envconfig:"DB_PORT" default:"5432"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"your-secret-key"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"168h"`

	StoreBackend string `envconfig:"STORE_BACKEND" default:"postgres"`
	BadgerPath   string `envconfig:"BADGER_PATH" default:"data/messages"`

	DisplayTimezone  string `envconfig:"DISPLAY_TIMEZONE" default:"UTC"`
	RoomHistoryLimit int    `envconfig:"ROOM_HISTORY_LIMIT" default:"200"`
	DMHistoryLimit   int    `envconfig:"DM_HISTORY_LIMIT" default:"300"`
	SendBufferSize   int    `envconfig:"SEND_BUFFER_SIZE" default:"256"`

	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin123"`
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendPostgres, BackendBadger:
	default:
		return fmt.Errorf("config: STORE_BACKEND must be %q or %q, got %q", BackendPostgres, BackendBadger, c.StoreBackend)
	}
	if c.RoomHistoryLimit <= 0 || c.DMHistoryLimit <= 0 {
		return fmt.Errorf("config: history limits must be positive")
	}
	if c.SendBufferSize <= 0 {
		return fmt.Errorf("config: SEND_BUFFER_SIZE must be positive, got %d", c.SendBufferSize)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location is the zone used to render message timestamps.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("config: DISPLAY_TIMEZONE %q: %w", c.DisplayTimezone, err)
	}
	return loc, nil
}

// DSN is the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPass, c.DBName, c.DBPort)
}
