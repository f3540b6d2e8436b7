package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	Log      LogConfig      `toml:"log"`
	Auth     AuthConfig     `toml:"auth"`
	LLM      LLMConfig      `toml:"llm"`
	Chat     ChatConfig     `toml:"chat"`
	MySQL    MySQLConfig    `toml:"mysql"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
}

type AppConfig struct {
	Name       string `toml:"name"`
	Env        string `toml:"env"`
	Dev        bool   `toml:"dev"`
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	GinMode    string `toml:"gin_mode"`
	BasePath   string `toml:"base_path"`
	MainSite   string `toml:"main_site"`
	StaticDir  string `toml:"static_dir"`
	Favicon    string `toml:"favicon"`
	RedocJS    string `toml:"redoc_js"`
	SwaggerJS  string `toml:"swagger_js"`
	SwaggerCSS string `toml:"swagger_css"`
}

type LogConfig struct {
	Save           bool   `toml:"save"`
	Dir            string `toml:"dir"`
	Filename       string `toml:"filename"`
	MaxSizeMB      int    `toml:"max_size_mb"`
	MaxBackupCount int    `toml:"max_backup_count"`
	Level          string `toml:"level"`
}

type AuthConfig struct {
	JWTSecret       string `toml:"jwt_secret"`
	JWTExpireMinute int    `toml:"jwt_expire_minute"`
}

type LLMConfig struct {
	BaseURL           string `toml:"base_url"`
	APIKey            string `toml:"api_key"`
	Model             string `toml:"model"`
	MaxContextMessage int    `toml:"max_context_message"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
}

type ChatConfig struct {
	HistoryLimit int `toml:"history_limit"`
}

type MySQLConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DB       string `toml:"db"`
	Params   string `toml:"params"`
}

type RedisConfig struct {
	Addr                   string `toml:"addr"`
	Password               string `toml:"password"`
	DB                     int    `toml:"db"`
	HistoryTTLSeconds      int    `toml:"history_ttl_seconds"`
	HistoryDirtyTTLSeconds int    `toml:"history_dirty_ttl_seconds"`
}

// RabbitMQConfig enables queued usage accounting when URL is set.
type RabbitMQConfig struct {
	URL        string `toml:"url"`
	UsageQueue string `toml:"usage_queue"`
}

// Load reads the dotenv file, then the optional TOML file, then the process
// environment, each layer overriding the previous one.
func Load() (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	cfg.App.BasePath = normalizeBasePath(cfg.App.BasePath)
	return cfg, nil
}

func loadDotenv() error {
	path := ".env"
	if getEnvAsBool("START_DEV", false) {
		path = ".env.dev"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s failed: %w", path, err)
	}
	return nil
}

// defaultJWTSecret only signs tokens in dev mode; Validate rejects it otherwise.
const defaultJWTSecret = "change-me-in-production"

func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		problems = append(problems, "DEEPSEEK_API_KEY is not set")
	}
	if strings.TrimSpace(c.MySQL.DB) == "" {
		problems = append(problems, "MYSQL_DB is not set")
	}
	if secret := strings.TrimSpace(c.Auth.JWTSecret); !c.App.Dev && (secret == "" || secret == defaultJWTSecret) {
		problems = append(problems, "JWT_SECRET must be set outside dev mode")
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		problems = append(problems, fmt.Sprintf("PORT %d is out of range", c.App.Port))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) MySQLDSN() string {
	dsn := mysql.NewConfig()
	dsn.User = c.MySQL.User
	dsn.Passwd = c.MySQL.Password
	dsn.Net = "tcp"
	dsn.Addr = fmt.Sprintf("%s:%d", c.MySQL.Host, c.MySQL.Port)
	dsn.DBName = c.MySQL.DB
	dsn.ParseTime = true
	dsn.Params = map[string]string{"charset": "utf8mb4"}
	for _, pair := range strings.Split(c.MySQL.Params, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			continue
		}
		switch key {
		case "parseTime":
			dsn.ParseTime = value == "true"
		case "loc":
			if loc, err := time.LoadLocation(value); err == nil {
				dsn.Loc = loc
			}
		default:
			dsn.Params[key] = value
		}
	}
	return dsn.FormatDSN()
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

func (c *Config) JWTExpiration() time.Duration {
	return time.Duration(c.Auth.JWTExpireMinute) * time.Minute
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:       "NeuroMentor",
			Env:        "prod",
			Host:       "0.0.0.0",
			Port:       8000,
			GinMode:    "release",
			BasePath:   "/api",
			StaticDir:  "static",
			Favicon:    "favicon.ico",
			RedocJS:    "redoc.standalone.js",
			SwaggerJS:  "swagger-ui-bundle.js",
			SwaggerCSS: "swagger-ui.css",
		},
		Log: LogConfig{
			Save:           true,
			Dir:            "logs",
			MaxSizeMB:      5,
			MaxBackupCount: 5,
			Level:          "info",
		},
		Auth: AuthConfig{
			JWTSecret:       defaultJWTSecret,
			JWTExpireMinute: 120,
		},
		LLM: LLMConfig{
			BaseURL:           "https://api.deepseek.com",
			Model:             "deepseek-chat",
			MaxContextMessage: 10,
			TimeoutSeconds:    90,
		},
		Chat: ChatConfig{
			HistoryLimit: 10,
		},
		MySQL: MySQLConfig{
			Host:   "127.0.0.1",
			Port:   3306,
			User:   "root",
			DB:     "neuromentor",
			Params: "parseTime=true&loc=UTC&charset=utf8mb4",
		},
		Redis: RedisConfig{
			HistoryTTLSeconds:      60,
			HistoryDirtyTTLSeconds: 5,
		},
		RabbitMQ: RabbitMQConfig{
			UsageQueue: "neuromentor.usage",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("API_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Dev = getEnvAsBool("START_DEV", cfg.App.Dev)
	cfg.App.Host = getEnv("HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.App.BasePath = getEnv("MAIN_API_ADDRESS", cfg.App.BasePath)
	cfg.App.MainSite = getEnv("MAIN_SITE", cfg.App.MainSite)
	cfg.App.StaticDir = getEnv("STATIC_DIR", cfg.App.StaticDir)
	cfg.App.Favicon = getEnv("FAVICON", cfg.App.Favicon)
	cfg.App.RedocJS = getEnv("REDOC_JS", cfg.App.RedocJS)
	cfg.App.SwaggerJS = getEnv("SWAGGER_JS", cfg.App.SwaggerJS)
	cfg.App.SwaggerCSS = getEnv("SWAGGER_CSS", cfg.App.SwaggerCSS)
	if cfg.App.Dev {
		cfg.App.Env = "dev"
		cfg.App.GinMode = getEnv("GIN_MODE", "debug")
	}

	cfg.Log.Save = getEnvAsBool("SAVE_LOGS", cfg.Log.Save)
	cfg.Log.Dir = getEnv("LOGS_DIR", cfg.Log.Dir)
	cfg.Log.Filename = getEnv("LOG_FILENAME", cfg.Log.Filename)
	cfg.Log.MaxSizeMB = getEnvAsInt("LOG_MAX_SIZE_MB", cfg.Log.MaxSizeMB)
	cfg.Log.MaxBackupCount = getEnvAsInt("LOG_MAX_BACKUP_COUNT", cfg.Log.MaxBackupCount)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.JWTExpireMinute = getEnvAsInt("JWT_EXPIRE_MINUTE", cfg.Auth.JWTExpireMinute)

	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = getEnv("LLM_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.APIKey = getEnv("DEEPSEEK_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.MaxContextMessage = getEnvAsInt("LLM_MAX_CONTEXT_MESSAGE", cfg.LLM.MaxContextMessage)
	cfg.LLM.TimeoutSeconds = getEnvAsInt("LLM_TIMEOUT_SECONDS", cfg.LLM.TimeoutSeconds)

	cfg.Chat.HistoryLimit = getEnvAsInt("CHAT_HISTORY_LIMIT", cfg.Chat.HistoryLimit)

	cfg.MySQL.Host = getEnv("MYSQL_HOST", cfg.MySQL.Host)
	cfg.MySQL.Port = getEnvAsInt("MYSQL_PORT", cfg.MySQL.Port)
	cfg.MySQL.User = getEnv("MYSQL_USER", cfg.MySQL.User)
	cfg.MySQL.Password = getEnv("MYSQL_PASSWORD", cfg.MySQL.Password)
	cfg.MySQL.DB = getEnv("MYSQL_DB", cfg.MySQL.DB)
	cfg.MySQL.Params = getEnv("MYSQL_PARAMS", cfg.MySQL.Params)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.HistoryTTLSeconds = getEnvAsInt("REDIS_HISTORY_TTL_SECONDS", cfg.Redis.HistoryTTLSeconds)
	cfg.Redis.HistoryDirtyTTLSeconds = getEnvAsInt("REDIS_HISTORY_DIRTY_TTL_SECONDS", cfg.Redis.HistoryDirtyTTLSeconds)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.UsageQueue = getEnv("RABBITMQ_USAGE_QUEUE", cfg.RabbitMQ.UsageQueue)
}

func normalizeBasePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.TrimRight(path, "/")
	if path == "" {
		return "/api"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvAsBool accepts the 0/1 flags of the dotenv files as well as true/false.
func getEnvAsBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
