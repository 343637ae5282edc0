package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Challenge ChallengeConfig `mapstructure:"challenge"`
	JWT       JWTConfig
	Redis     RedisConfig
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ChallengeConfig 靶场运行参数（数据目录、查询沙箱资源上限、提示解锁节奏等）
type ChallengeConfig struct {
	DataDir          string `mapstructure:"data_dir"`
	QueryTimeoutMs   int    `mapstructure:"query_timeout_ms"`
	MaxRows          int    `mapstructure:"max_rows"`
	MaxQueryLength   int    `mapstructure:"max_query_length"`
	DefaultFlag      string `mapstructure:"default_flag"`
	DefaultPoints    int    `mapstructure:"default_points"`
	SecondHintDelayS int    `mapstructure:"second_hint_delay_s"`
	ThirdHintDelayS  int    `mapstructure:"third_hint_delay_s"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type RedisConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	GlobalPerMinute    int `mapstructure:"global_per_minute"`
	QueriesPerMinute   int `mapstructure:"queries_per_minute"`
	HintsPerMinute     int `mapstructure:"hints_per_minute"`
	AuthPerQuarterHour int `mapstructure:"auth_per_quarter_hour"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

func (c *ChallengeConfig) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutMs) * time.Millisecond
}

func (c *ChallengeConfig) SecondHintDelay() time.Duration {
	return time.Duration(c.SecondHintDelayS) * time.Second
}

func (c *ChallengeConfig) ThirdHintDelay() time.Duration {
	return time.Duration(c.ThirdHintDelayS) * time.Second
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("SQL_RANGE")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.path", "DATABASE_PATH")

	// Challenge
	viper.BindEnv("challenge.data_dir", "CHALLENGE_DATA_DIR")
	viper.BindEnv("challenge.default_flag", "CHALLENGE_DEFAULT_FLAG")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.enabled", "REDIS_ENABLED")
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	cfg.Challenge.ApplyDefaults()

	if _, err := os.Stat(cfg.Challenge.DataDir); os.IsNotExist(err) {
		os.MkdirAll(cfg.Challenge.DataDir, 0755)
	}

	return &cfg, nil
}

// ApplyDefaults 沙箱参数缺省兜底，保证配置残缺时靶场仍可运行
func (c *ChallengeConfig) ApplyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.QueryTimeoutMs <= 0 {
		c.QueryTimeoutMs = 5000
	}
	if c.MaxRows <= 0 {
		c.MaxRows = 100
	}
	if c.MaxQueryLength <= 0 {
		c.MaxQueryLength = 500
	}
	if c.DefaultFlag == "" {
		c.DefaultFlag = "FLAG{SQL_INJECTION_MASTER_CHALLENGE_COMPLETE}"
	}
	if c.DefaultPoints <= 0 {
		c.DefaultPoints = 500
	}
	if c.SecondHintDelayS <= 0 {
		c.SecondHintDelayS = 300
	}
	if c.ThirdHintDelayS <= 0 {
		c.ThirdHintDelayS = 600
	}
}
