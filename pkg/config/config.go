package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"headless-cms-backend/pkg/database"
)

// Config 应用配置结构
type Config struct {
	// 环境配置
	Environment string
	Port        string

	// 数据库配置
	DatabaseDriver string // sqlite | postgres | pgx
	DatabaseURL    string
	SQLitePath     string
	MaxOpenConns   int

	// HTTP配置
	AllowedOrigins []string
	MaxBodyBytes   int64
	RequestTimeout time.Duration

	// 调试配置
	Debug bool
}

// LoadConfig 加载配置（支持本地和Vercel环境）
func LoadConfig() *Config {
	// 根据环境加载对应的 .env 文件
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development" // 默认开发环境
	}

	// 按优先级加载环境文件
	switch env {
	case "production":
		loadEnvFile(".env.production")
	default:
		loadEnvFile(".env.local")
	}
	loadEnvFile(".env")

	config := &Config{
		// 默认值
		Environment:    getEnvWithDefault("ENVIRONMENT", "development"),
		Port:           getEnvWithDefault("PORT", "3000"),
		DatabaseDriver: strings.ToLower(getEnvWithDefault("DATABASE_DRIVER", "sqlite")),
		SQLitePath:     getEnvWithDefault("SQLITE_PATH", "./data/cms.db"),
		MaxOpenConns:   getEnvInt("DATABASE_MAX_OPEN_CONNS", 0),
		MaxBodyBytes:   int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		Debug:          getEnvBool("DEBUG", false),
	}

	// 数据库配置
	// Trim whitespace to avoid trailing spaces/newlines from env sources
	config.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if config.DatabaseURL == "" {
		config.DatabaseURL = strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	}

	// CORS配置
	allowedOrigins := getEnvWithDefault("ALLOWED_ORIGINS", "*")
	if allowedOrigins == "*" {
		config.AllowedOrigins = []string{"*"}
	} else {
		for _, o := range strings.Split(allowedOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				config.AllowedOrigins = append(config.AllowedOrigins, o)
			}
		}
	}

	// 生产环境关闭调试
	if config.IsProduction() {
		config.Debug = false
	}

	return config
}

// Cached config (initialized once per cold start)
var (
	cachedConfig *Config
	configOnce   sync.Once
)

// GetCached returns the process-wide cached Config.
// On serverless (Vercel), it initializes once per cold start and
// reuses it across warm invocations, avoiding per-request parsing.
func GetCached() *Config {
	configOnce.Do(func() {
		cachedConfig = LoadConfig()
	})
	return cachedConfig
}

// Validate 验证配置
func (c *Config) Validate() error {
	// 验证端口
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	// 验证数据库配置
	dialect, err := database.ParseDialect(c.DatabaseDriver)
	if err != nil {
		return fmt.Errorf("unsupported DATABASE_DRIVER: %w", err)
	}
	if dialect == database.SQLite {
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	} else if c.DatabaseURL == "" {
		return fmt.Errorf("数据库配置不完整：请配置 DATABASE_URL 或 POSTGRES_DSN")
	}

	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	return nil
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// 辅助函数

// getEnvWithDefault 获取环境变量，如果不存在则使用默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool 获取布尔类型的环境变量
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("15s") or plain seconds ("15").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// loadEnvFile 加载 .env 文件到环境变量，已存在的变量不会被覆盖
func loadEnvFile(filename string) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return // 文件不存在，静默返回
	}
	_ = godotenv.Load(filename)
}
