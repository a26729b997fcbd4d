package board_sdk

import "gorm.io/gorm"
import "github.com/go-redis/redis/v8"
import "time"

type ServiceConfig struct {
	Debug bool
}

type Config struct {
	DB          *gorm.DB
	RDB         *redis.Client
	TablePrefix string
	Service     ServiceConfig

	// SessionRefreshInterval 可选的会话周期核对间隔；0 表示关闭。
	// 开启后只会把会话状态拉齐到后端真实情况，不会凭空造会话。
	SessionRefreshInterval time.Duration
}

type Option func(*Config)

func WithDB(db *gorm.DB) Option {
	return func(c *Config) {
		c.DB = db
	}
}

func WithTablePrefix(prefix string) Option {
	return func(c *Config) {
		c.TablePrefix = prefix
	}
}

func WithRDB(RDB *redis.Client) Option {
	return func(c *Config) {
		c.RDB = RDB
	}
}

func WithServiceDebug(debug bool) Option {
	return func(c *Config) {
		c.Service.Debug = debug
	}
}

// WithSessionRefresh 开启会话周期核对。
func WithSessionRefresh(interval time.Duration) Option {
	return func(c *Config) {
		c.SessionRefreshInterval = interval
	}
}
