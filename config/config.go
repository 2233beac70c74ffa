package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"timesheet-auditor/internal/reconcile"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port        int        `mapstructure:"port"`
	MaxUploadMB int64      `mapstructure:"max_upload_mb"`
	CORS        CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置（仅用于审计运行历史，可关闭）
type DatabaseConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnectAttempts uint   `mapstructure:"connect_attempts"`
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置（仅用于上传限流，可关闭）
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AuditConfig 对账规则配置
type AuditConfig struct {
	OffsetHours          int  `mapstructure:"offset_hours"`
	Year                 int  `mapstructure:"year"` // 起始日期输入不含年份时使用；0 表示当前年份
	Workers              int  `mapstructure:"workers"`
	DetectMissingSiteOut bool `mapstructure:"detect_missing_site_out"`
	RosterFirstRow       int  `mapstructure:"roster_first_row"` // 1-indexed，含
	RosterLastRow        int  `mapstructure:"roster_last_row"`  // 1-indexed，含
	RosterNameColumn     int  `mapstructure:"roster_name_column"`
}

// Engine 转换为对账引擎配置
func (c AuditConfig) Engine() reconcile.Config {
	return reconcile.Config{
		OffsetHours:          c.OffsetHours,
		Days:                 reconcile.PeriodDays,
		Workers:              c.Workers,
		DetectMissingSiteOut: c.DetectMissingSiteOut,
	}
}

// CacheConfig 报表缓存配置
type CacheConfig struct {
	Size int           `mapstructure:"size"`
	TTL  time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig 上传接口限流配置
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.enabled", false)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "timesheet_auditor")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.connect_attempts", 5)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("audit.offset_hours", reconcile.DefaultOffsetHours)
	v.SetDefault("audit.year", 2026)
	v.SetDefault("audit.workers", 1)
	v.SetDefault("audit.detect_missing_site_out", true)
	v.SetDefault("audit.roster_first_row", 3)
	v.SetDefault("audit.roster_last_row", 100)
	v.SetDefault("audit.roster_name_column", 2)

	v.SetDefault("cache.size", 256)
	v.SetDefault("cache.ttl", "30m")

	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window", "1m")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("AUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Audit.OffsetHours < 0 || c.Audit.OffsetHours > 23 {
		return fmt.Errorf("配置校验失败: audit.offset_hours 必须在 0-23 之间")
	}
	if c.Audit.Workers < 1 {
		return fmt.Errorf("配置校验失败: audit.workers 不能小于 1")
	}
	if c.Audit.RosterFirstRow < 1 || c.Audit.RosterLastRow < c.Audit.RosterFirstRow {
		return fmt.Errorf("配置校验失败: audit.roster_first_row/roster_last_row 范围非法")
	}
	if c.Audit.RosterNameColumn < 1 {
		return fmt.Errorf("配置校验失败: audit.roster_name_column 必须大于 0")
	}
	return nil
}
