package config

import "time"

// DatabaseConfig selects where saves and persisted logs live. SQLite is the default;
// postgres is used when several daemons share one save store.
type DatabaseConfig struct {
	Type string `mapstructure:"type" validate:"required,oneof=postgres sqlite"`

	// sqlite file, or ":memory:"
	Path string `mapstructure:"path"`

	// postgres: URL wins over the individual fields (DATABASE_URL sets it too)
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode" validate:"omitempty,oneof=disable require verify-ca verify-full"`

	// GORM statement logging
	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=silent error warn info"`

	Pool PoolConfig `mapstructure:"pool"`
}

// PoolConfig sizes the postgres pool. SQLite always runs on one connection.
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open" validate:"min=1"`
	MaxIdle     int           `mapstructure:"max_idle" validate:"min=1"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}
