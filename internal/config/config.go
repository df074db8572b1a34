package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/zhouzirui/raadhya/backend/internal/store"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
	Reply     ReplyConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	rateLimit, err := loadRateLimitConfig()
	if err != nil {
		return nil, err
	}

	metricsEnabled, err := parseBoolEnv("METRICS_ENABLED", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: server,
		Store: StoreConfig{
			Driver:     store.Driver(strings.ToLower(getEnvOrDefault("STORE_DRIVER", string(store.DriverMemory)))),
			SQLitePath: getEnvOrDefault("SQLITE_PATH", "./data/raadhya.db"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json")),
			Path:   strings.TrimSpace(os.Getenv("LOG_PATH")),
		},
		RateLimit: rateLimit,
		Metrics:   MetricsConfig{Enabled: metricsEnabled},
		Reply:     ReplyConfig{TemplateDir: strings.TrimSpace(os.Getenv("REPLY_TEMPLATE_DIR"))},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate 检查配置组合是否合法。
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case store.DriverMemory:
	case store.DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH cannot be empty when STORE_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q", c.Log.Format)
	}

	if c.RateLimit.PerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be >= 0")
	}
	return nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// StoreConfig 选择持久化后端。
type StoreConfig struct {
	Driver     store.Driver
	SQLitePath string
}

// LogConfig 控制日志级别、格式与落盘路径。
type LogConfig struct {
	Level  string
	Format string
	// Path 为空时输出到 stdout，否则按大小滚动写入文件。
	Path string
}

// RateLimitConfig 限制单个客户端每分钟的写请求数，0 表示不限制。
type RateLimitConfig struct {
	PerMinute int
}

// Enabled 表示是否开启限流。
func (c RateLimitConfig) Enabled() bool {
	return c.PerMinute > 0
}

// MetricsConfig 控制 /metrics 暴露。
type MetricsConfig struct {
	Enabled bool
}

// ReplyConfig 允许从目录覆盖内置回复模板。
type ReplyConfig struct {
	TemplateDir string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	origins := parseListEnv("CORS_ALLOWED_ORIGINS", []string{"*"})

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port, AllowedOrigins: origins}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigins: origins}, nil
}

func loadRateLimitConfig() (RateLimitConfig, error) {
	perMinute, err := parseOptionalIntEnv("RATE_LIMIT_PER_MINUTE")
	if err != nil {
		return RateLimitConfig{}, err
	}
	if perMinute == nil {
		return RateLimitConfig{PerMinute: 60}, nil
	}
	return RateLimitConfig{PerMinute: *perMinute}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseListEnv(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}

	var items []string
	for _, part := range strings.Split(raw, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
