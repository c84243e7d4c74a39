package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// 默认值
const (
	defaultHost                  = "0.0.0.0"
	defaultPort                  = 1780
	defaultMaxConnections        = 1000
	defaultCodec                 = "json"
	defaultRedisAddr             = "localhost:6379"
	defaultShutdownTimeout       = 10 // 分钟
	defaultShutdownCheckInterval = 5  // 秒
	defaultRoomCleanupDelay      = 30 // 秒
	defaultRateMaxPerSecond      = 10
	defaultRateMaxPerMinute      = 60
	defaultBanDuration           = 300 // 秒
	defaultMessageMaxPerSecond   = 20
	defaultLogFile               = "logs/server.log"

	// EnvPrefix 环境变量前缀，如 FOURTEEN_SERVER_PORT
	EnvPrefix = "FOURTEEN_"
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Redis    RedisConfig    `yaml:"redis" envPrefix:"REDIS_"`
	Game     GameConfig     `yaml:"game" envPrefix:"GAME_"`
	Security SecurityConfig `yaml:"security" envPrefix:"SECURITY_"`
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host" env:"HOST"`
	Port           int    `yaml:"port" env:"PORT"`
	MaxConnections int    `yaml:"max_connections" env:"MAX_CONNECTIONS"`
	Codec          string `yaml:"codec" env:"CODEC"` // json/protobuf，服务端下发消息的默认编码
}

// Addr 监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig Redis 配置，未启用时房间镜像和排行榜均关闭
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

// GameConfig 游戏配置
type GameConfig struct {
	ShutdownTimeout       int `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`               // 优雅关闭等待对局结束的最长时间（分钟）
	ShutdownCheckInterval int `yaml:"shutdown_check_interval" env:"SHUTDOWN_CHECK_INTERVAL"` // 检查间隔（秒）
	RoomCleanupDelay      int `yaml:"room_cleanup_delay" env:"ROOM_CLEANUP_DELAY"`           // 关闭前等待客户端收到通知（秒）
}

// ShutdownTimeoutDuration 返回优雅关闭超时时长
func (c *GameConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Minute
}

// ShutdownCheckIntervalDuration 返回关闭检查间隔
func (c *GameConfig) ShutdownCheckIntervalDuration() time.Duration {
	return time.Duration(c.ShutdownCheckInterval) * time.Second
}

// RoomCleanupDelayDuration 返回房间清理延迟
func (c *GameConfig) RoomCleanupDelayDuration() time.Duration {
	return time.Duration(c.RoomCleanupDelay) * time.Second
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string           `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	BlockedIPs     []string           `yaml:"blocked_ips" env:"BLOCKED_IPS"`
	RateLimit      RateLimitConfig    `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
	MessageLimit   MessageLimitConfig `yaml:"message_limit" envPrefix:"MESSAGE_LIMIT_"`
}

// RateLimitConfig 连接速率限制（按 IP）
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second" env:"MAX_PER_SECOND"`
	MaxPerMinute int `yaml:"max_per_minute" env:"MAX_PER_MINUTE"`
	BanDuration  int `yaml:"ban_duration" env:"BAN_DURATION"` // 秒
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// MessageLimitConfig 单连接消息速率限制
type MessageLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second" env:"MAX_PER_SECOND"`
}

// LogConfig 日志配置，File 为空时只输出到标准输出
type LogConfig struct {
	File string `yaml:"file" env:"FILE"`
}

// Load 加载配置文件，再用环境变量覆盖
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// ApplyEnv 用 FOURTEEN_* 环境变量覆盖配置，未设置的字段保持原值
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// applyDefaults 为零值字段设置默认值
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.MaxConnections == 0 {
		c.Server.MaxConnections = defaultMaxConnections
	}
	if c.Server.Codec == "" {
		c.Server.Codec = defaultCodec
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = defaultRedisAddr
	}
	if c.Game.ShutdownTimeout == 0 {
		c.Game.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.Game.ShutdownCheckInterval == 0 {
		c.Game.ShutdownCheckInterval = defaultShutdownCheckInterval
	}
	if c.Game.RoomCleanupDelay == 0 {
		c.Game.RoomCleanupDelay = defaultRoomCleanupDelay
	}
	if len(c.Security.AllowedOrigins) == 0 {
		c.Security.AllowedOrigins = []string{"*"}
	}
	if c.Security.RateLimit.MaxPerSecond == 0 {
		c.Security.RateLimit.MaxPerSecond = defaultRateMaxPerSecond
	}
	if c.Security.RateLimit.MaxPerMinute == 0 {
		c.Security.RateLimit.MaxPerMinute = defaultRateMaxPerMinute
	}
	if c.Security.RateLimit.BanDuration == 0 {
		c.Security.RateLimit.BanDuration = defaultBanDuration
	}
	if c.Security.MessageLimit.MaxPerSecond == 0 {
		c.Security.MessageLimit.MaxPerSecond = defaultMessageMaxPerSecond
	}
	if c.Log.File == "" {
		c.Log.File = defaultLogFile
	}
}

// Default 返回默认配置（同样应用环境变量）
func Default() *Config {
	var cfg Config
	_ = ApplyEnv(&cfg)
	cfg.applyDefaults()
	return &cfg
}
