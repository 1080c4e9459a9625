package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig         `toml:"app"`
	Log         LogConfig         `toml:"log"`
	Auth        AuthConfig        `toml:"auth"`
	Database    DatabaseConfig    `toml:"database"`
	MySQL       MySQLConfig       `toml:"mysql"`
	SQLite      SQLiteConfig      `toml:"sqlite"`
	Redis       RedisConfig       `toml:"redis"`
	RabbitMQ    RabbitMQConfig    `toml:"rabbitmq"`
	Ollama      OllamaConfig      `toml:"ollama"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	VectorStore VectorStoreConfig `toml:"vectorstore"`
	RAG         RAGConfig         `toml:"rag"`
	Upload      UploadConfig      `toml:"upload"`
	Validator   ValidatorConfig   `toml:"validator"`
	Scraper     ScraperConfig     `toml:"scraper"`
	Network     NetworkConfig     `toml:"network"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
	Version string `toml:"version"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	JSON       bool   `toml:"json"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

type AuthConfig struct {
	Enabled         bool   `toml:"enabled"`
	JWTSecret       string `toml:"jwt_secret"`
	JWTExpireMinute int    `toml:"jwt_expire_minute"`
}

// DatabaseConfig selects the gorm dialect: "mysql" or "sqlite".
type DatabaseConfig struct {
	Driver string `toml:"driver"`
}

type MySQLConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DB       string `toml:"db"`
	Params   string `toml:"params"`
}

type SQLiteConfig struct {
	Path string `toml:"path"`
}

// RedisConfig leaves the history cache disabled when Addr is empty.
type RedisConfig struct {
	Addr                   string `toml:"addr"`
	Password               string `toml:"password"`
	DB                     int    `toml:"db"`
	HistoryTTLSeconds      int    `toml:"history_ttl_seconds"`
	HistoryDirtyTTLSeconds int    `toml:"history_dirty_ttl_seconds"`
}

// RabbitMQConfig falls back to synchronous persistence when URL is empty.
type RabbitMQConfig struct {
	URL                 string `toml:"url"`
	MessagePersistQueue string `toml:"message_persist_queue"`
}

type OllamaConfig struct {
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	Temperature    float64 `toml:"temperature"`
	MaxTokens      int     `toml:"max_tokens"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// EmbeddingConfig picks the embedder: "ollama" or "openai".
type EmbeddingConfig struct {
	Provider       string `toml:"provider"`
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	Dimensions     int    `toml:"dimensions"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// VectorStoreConfig picks the backend: "chroma" or "memory".
type VectorStoreConfig struct {
	Backend          string `toml:"backend"`
	ChromaURL        string `toml:"chroma_url"`
	CollectionName   string `toml:"collection_name"`
	PersistDirectory string `toml:"persist_directory"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
}

type RAGConfig struct {
	ChunkSize         int     `toml:"chunk_size"`
	ChunkOverlap      int     `toml:"chunk_overlap"`
	DefaultK          int     `toml:"default_k"`
	MaxResults        int     `toml:"max_results"`
	ContextCharBudget int     `toml:"context_char_budget"`
	Temperature       float64 `toml:"temperature"`
	MaxTokens         int     `toml:"max_tokens"`
}

type UploadConfig struct {
	MaxFileSize       int64    `toml:"max_file_size"`
	AllowedExtensions []string `toml:"allowed_extensions"`
	Dir               string   `toml:"dir"`
}

type ValidatorConfig struct {
	DeepParse bool `toml:"deep_parse"`
}

type ScraperConfig struct {
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	MinTextLength     int     `toml:"min_text_length"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	UserAgent         string  `toml:"user_agent"`
}

type NetworkConfig struct {
	SSHUsername    string         `toml:"ssh_username"`
	SSHPassword    string         `toml:"ssh_password"`
	EnablePassword string         `toml:"enable_password"`
	SeedDevices    bool           `toml:"seed_devices"`
	Devices        []DeviceConfig `toml:"devices"`
}

type DeviceConfig struct {
	Name       string `toml:"name"`
	Host       string `toml:"host"`
	DeviceType string `toml:"device_type"`
	Role       string `toml:"role"`
	ASNumber   int    `toml:"as_number"`
}

func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.MySQL.User,
		c.MySQL.Password,
		c.MySQL.Host,
		c.MySQL.Port,
		c.MySQL.DB,
		c.MySQL.Params,
	)
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "netauto",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    5003,
			GinMode: "debug",
			Version: "1.0.0",
		},
		Log: LogConfig{
			Level:      "info",
			File:       "data/logs/app.log",
			JSON:       false,
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Auth: AuthConfig{
			Enabled:         true,
			JWTSecret:       "change-me-in-production",
			JWTExpireMinute: 120,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
		},
		MySQL: MySQLConfig{
			Host:     "127.0.0.1",
			Port:     3306,
			User:     "root",
			Password: "",
			DB:       "netauto",
			Params:   "parseTime=true&loc=Local&charset=utf8mb4",
		},
		SQLite: SQLiteConfig{
			Path: "data/db/network_automation.db",
		},
		Redis: RedisConfig{
			Addr:                   "",
			Password:               "",
			DB:                     0,
			HistoryTTLSeconds:      60,
			HistoryDirtyTTLSeconds: 5,
		},
		RabbitMQ: RabbitMQConfig{
			URL:                 "",
			MessagePersistQueue: "chat.message.persist",
		},
		Ollama: OllamaConfig{
			BaseURL:        "http://localhost:11434",
			Model:          "llama3.2:1b",
			Temperature:    0.7,
			MaxTokens:      1000,
			TimeoutSeconds: 60,
		},
		Embedding: EmbeddingConfig{
			Provider:       "ollama",
			BaseURL:        "http://localhost:11434",
			Model:          "all-minilm",
			Dimensions:     384,
			TimeoutSeconds: 30,
		},
		VectorStore: VectorStoreConfig{
			Backend:          "memory",
			ChromaURL:        "http://localhost:8000",
			CollectionName:   "network_docs",
			PersistDirectory: "data/db/chroma",
			TimeoutSeconds:   30,
		},
		RAG: RAGConfig{
			ChunkSize:         1000,
			ChunkOverlap:      200,
			DefaultK:          3,
			MaxResults:        5,
			ContextCharBudget: 500,
			Temperature:       0.7,
			MaxTokens:         500,
		},
		Upload: UploadConfig{
			MaxFileSize:       16 << 20,
			AllowedExtensions: []string{".txt", ".pdf", ".csv", ".xlsx", ".md"},
			Dir:               "data/documents",
		},
		Validator: ValidatorConfig{
			DeepParse: true,
		},
		Scraper: ScraperConfig{
			TimeoutSeconds:    10,
			MinTextLength:     200,
			RequestsPerSecond: 1,
			UserAgent:         "netauto-scraper/1.0",
		},
		Network: NetworkConfig{
			SSHUsername:    "cisco",
			SSHPassword:    "cisco",
			EnablePassword: "cisco",
			SeedDevices:    true,
			Devices: []DeviceConfig{
				{Name: "R15", Host: "172.16.39.115", DeviceType: "cisco_ios", Role: "PE Router", ASNumber: 2222},
				{Name: "R16", Host: "172.16.39.116", DeviceType: "cisco_ios", Role: "PE Router", ASNumber: 2222},
				{Name: "R17", Host: "172.16.39.117", DeviceType: "cisco_ios", Role: "P Router", ASNumber: 2222},
				{Name: "R18", Host: "172.16.39.118", DeviceType: "cisco_ios", Role: "RR Router", ASNumber: 2222},
				{Name: "R19", Host: "172.16.39.119", DeviceType: "cisco_ios", Role: "CE Router", ASNumber: 100},
				{Name: "R20", Host: "172.16.39.120", DeviceType: "cisco_ios", Role: "CE Router", ASNumber: 13},
			},
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
	cfg.Log.JSON = getEnvAsBool("LOG_JSON", cfg.Log.JSON)

	cfg.Auth.Enabled = getEnvAsBool("AUTH_ENABLED", cfg.Auth.Enabled)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.JWTExpireMinute = getEnvAsInt("JWT_EXPIRE_MINUTE", cfg.Auth.JWTExpireMinute)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.MySQL.Host = getEnv("MYSQL_HOST", cfg.MySQL.Host)
	cfg.MySQL.Port = getEnvAsInt("MYSQL_PORT", cfg.MySQL.Port)
	cfg.MySQL.User = getEnv("MYSQL_USER", cfg.MySQL.User)
	cfg.MySQL.Password = getEnv("MYSQL_PASSWORD", cfg.MySQL.Password)
	cfg.MySQL.DB = getEnv("MYSQL_DB", cfg.MySQL.DB)
	cfg.MySQL.Params = getEnv("MYSQL_PARAMS", cfg.MySQL.Params)
	cfg.SQLite.Path = getEnv("SQLITE_PATH", cfg.SQLite.Path)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.HistoryTTLSeconds = getEnvAsInt("REDIS_HISTORY_TTL_SECONDS", cfg.Redis.HistoryTTLSeconds)
	cfg.Redis.HistoryDirtyTTLSeconds = getEnvAsInt("REDIS_HISTORY_DIRTY_TTL_SECONDS", cfg.Redis.HistoryDirtyTTLSeconds)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.MessagePersistQueue = getEnv("RABBITMQ_MESSAGE_PERSIST_QUEUE", cfg.RabbitMQ.MessagePersistQueue)

	cfg.Ollama.BaseURL = getEnv("OLLAMA_BASE_URL", cfg.Ollama.BaseURL)
	cfg.Ollama.Model = getEnv("OLLAMA_MODEL", cfg.Ollama.Model)
	cfg.Ollama.Temperature = getEnvAsFloat("OLLAMA_TEMPERATURE", cfg.Ollama.Temperature)
	cfg.Ollama.MaxTokens = getEnvAsInt("OLLAMA_MAX_TOKENS", cfg.Ollama.MaxTokens)
	cfg.Ollama.TimeoutSeconds = getEnvAsInt("OLLAMA_TIMEOUT", cfg.Ollama.TimeoutSeconds)

	cfg.Embedding.Provider = getEnv("EMBEDDING_PROVIDER", cfg.Embedding.Provider)
	cfg.Embedding.BaseURL = getEnv("EMBEDDING_BASE_URL", cfg.Embedding.BaseURL)
	cfg.Embedding.APIKey = getEnv("EMBEDDING_API_KEY", cfg.Embedding.APIKey)
	cfg.Embedding.Model = getEnv("EMBEDDING_MODEL", cfg.Embedding.Model)
	cfg.Embedding.Dimensions = getEnvAsInt("EMBEDDING_DIMENSIONS", cfg.Embedding.Dimensions)

	cfg.VectorStore.Backend = getEnv("VECTORSTORE_BACKEND", cfg.VectorStore.Backend)
	cfg.VectorStore.ChromaURL = getEnv("CHROMA_URL", cfg.VectorStore.ChromaURL)
	cfg.VectorStore.CollectionName = getEnv("CHROMA_COLLECTION", cfg.VectorStore.CollectionName)
	cfg.VectorStore.PersistDirectory = getEnv("CHROMA_PERSIST_DIRECTORY", cfg.VectorStore.PersistDirectory)

	cfg.RAG.ChunkSize = getEnvAsInt("RAG_CHUNK_SIZE", cfg.RAG.ChunkSize)
	cfg.RAG.ChunkOverlap = getEnvAsInt("RAG_CHUNK_OVERLAP", cfg.RAG.ChunkOverlap)
	cfg.RAG.DefaultK = getEnvAsInt("RAG_DEFAULT_K", cfg.RAG.DefaultK)

	cfg.Upload.MaxFileSize = int64(getEnvAsInt("UPLOAD_MAX_FILE_SIZE", int(cfg.Upload.MaxFileSize)))
	if raw := getEnv("UPLOAD_ALLOWED_EXTENSIONS", ""); raw != "" {
		cfg.Upload.AllowedExtensions = splitList(raw)
	}
	cfg.Upload.Dir = getEnv("UPLOAD_DIR", cfg.Upload.Dir)

	cfg.Validator.DeepParse = getEnvAsBool("VALIDATOR_DEEP_PARSE", cfg.Validator.DeepParse)

	cfg.Network.SSHUsername = getEnv("SSH_USERNAME", cfg.Network.SSHUsername)
	cfg.Network.SSHPassword = getEnv("SSH_PASSWORD", cfg.Network.SSHPassword)
	cfg.Network.EnablePassword = getEnv("ENABLE_PASSWORD", cfg.Network.EnablePassword)
	cfg.Network.SeedDevices = getEnvAsBool("SEED_DEVICES", cfg.Network.SeedDevices)
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

func getEnvAsFloat(key string, fallback float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

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

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, ".") {
			p = "." + p
		}
		out = append(out, p)
	}
	return out
}
