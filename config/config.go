package config

import (
	"fmt"
	"time"

	"github.com/dilshat/contacts-admin/dao"
	"github.com/dilshat/contacts-admin/util"
)

const StoreStorm = "storm"

type Config struct {
	HTTPPort  string
	BodyLimit string

	StoreDriver    string
	DbDsn          string
	DbPath         string
	DbMaxOpenConns int
	DbMaxIdleConns int

	RedisURL string
	CacheTTL time.Duration

	BroadcastTPS   int
	BroadcastQueue int

	CorsOrigins     []string
	LogLevel        string
	LogDev          bool
	ShutdownTimeout time.Duration
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		HTTPPort:        util.GetEnv("HTTP_PORT", "8080"),
		BodyLimit:       util.GetEnv("BODY_LIMIT", "2M"),
		StoreDriver:     util.GetEnv("STORE_DRIVER", dao.DriverSqlite),
		DbDsn:           util.GetEnv("DB_DSN", "contacts.db"),
		DbPath:          util.GetEnv("DB_PATH", "contacts.storm"),
		DbMaxOpenConns:  util.GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DbMaxIdleConns:  util.GetEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		RedisURL:        util.GetEnv("REDIS_URL", ""),
		CacheTTL:        util.GetEnvAsDuration("CACHE_TTL", 5*time.Minute),
		BroadcastTPS:    util.GetEnvAsInt("BROADCAST_TPS", 10),
		BroadcastQueue:  util.GetEnvAsInt("BROADCAST_QUEUE", 100),
		CorsOrigins:     util.SplitAndTrim(util.GetEnv("CORS_ORIGINS", "*")),
		LogLevel:        util.GetEnv("LOG_LEVEL", "info"),
		LogDev:          util.GetEnvAsBool("LOG_DEV", false),
		ShutdownTimeout: util.GetEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreStorm, dao.DriverSqlite, dao.DriverMysql, dao.DriverPostgres:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.BroadcastTPS <= 0 {
		return fmt.Errorf("BROADCAST_TPS must be positive, got %d", c.BroadcastTPS)
	}
	if c.BroadcastQueue <= 0 {
		return fmt.Errorf("BROADCAST_QUEUE must be positive, got %d", c.BroadcastQueue)
	}
	if len(c.CorsOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must list at least one origin")
	}
	return nil
}
