package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"netauto/internal/ai"
	"netauto/internal/app"
	"netauto/internal/cache"
	"netauto/internal/config"
	"netauto/internal/logger"
	"netauto/internal/model"
	mysqlClient "netauto/internal/platform/mysql"
	rabbitmqClient "netauto/internal/platform/rabbitmq"
	redisClient "netauto/internal/platform/redis"
	sqliteClient "netauto/internal/platform/sqlite"
	"netauto/internal/plugin"
	"netauto/internal/repository"
	"netauto/internal/scraper"
	"netauto/internal/validator"
	"netauto/internal/vectorstore"
	"netauto/internal/worker"
)

const logModule = "bootstrap"

type Services struct {
	Auth      *app.AuthService
	Chat      *app.ChatService
	RAG       *app.RAGService
	Documents *app.DocumentService
	Devices   *app.DeviceService
	Network   *app.NetworkService
	Assistant *app.AssistantService
	Stats     *app.StatsService
}

type App struct {
	Config *config.Config
	Logger logger.Logger
	DB     *gorm.DB
	// Redis and MQConn are nil when not configured or unreachable.
	Redis         *redis.Client
	MQConn        *amqp.Connection
	Publisher     *rabbitmqClient.MessagePublisher
	MessageWorker *worker.MessagePersistWorker

	VectorStore *vectorstore.Store
	Ollama      *ai.OllamaClient
	Plugins     *plugin.Registry
	Services    Services

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	log := logger.New(logger.Options{
		FilePath:   cfg.Log.File,
		Level:      cfg.Log.Level,
		JSON:       cfg.Log.JSON,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	return NewWithConfig(ctx, cfg, log)
}

// NewWithConfig builds every component from cfg. Optional infrastructure that
// fails to connect is logged and skipped.
func NewWithConfig(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if log == nil {
		log = logger.NewNop()
	}
	a := &App{Config: cfg, Logger: log, StartedAt: time.Now()}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.DB = db
	if err := db.AutoMigrate(
		&model.User{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.Device{},
		&model.DocumentRecord{},
		&model.AuditResult{},
	); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	var historyCache app.HistoryCache
	if cfg.Redis.Addr != "" {
		client, err := redisClient.New(ctx, redisClient.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			log.Warn(logModule, "redis unavailable, history cache disabled", map[string]interface{}{"error": err})
		} else {
			a.Redis = client
			historyCache = cache.NewHistoryCache(client,
				time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
				time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
			)
		}
	}

	var sink app.MessageSink = app.NewSyncMessageWriter(messageRepo)
	if cfg.RabbitMQ.URL != "" {
		if err := a.startQueue(ctx, messageRepo); err != nil {
			log.Warn(logModule, "rabbitmq unavailable, persisting chat synchronously", map[string]interface{}{"error": err})
		} else {
			sink = a.Publisher
		}
	}

	embedder := newEmbedder(cfg.Embedding)
	backend, err := newVectorBackend(ctx, cfg.VectorStore)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.VectorStore = vectorstore.New(backend, embedder, vectorstore.Options{
		Collection:       cfg.VectorStore.CollectionName,
		PersistDirectory: cfg.VectorStore.PersistDirectory,
		Timeout:          time.Duration(cfg.VectorStore.TimeoutSeconds) * time.Second,
	}, log)

	a.Ollama = ai.NewOllamaClient(ai.OllamaConfig{
		BaseURL:     cfg.Ollama.BaseURL,
		Model:       cfg.Ollama.Model,
		Temperature: &cfg.Ollama.Temperature,
		MaxTokens:   cfg.Ollama.MaxTokens,
		Timeout:     time.Duration(cfg.Ollama.TimeoutSeconds) * time.Second,
	}, log)

	web := scraper.New(scraper.Options{
		Timeout:           time.Duration(cfg.Scraper.TimeoutSeconds) * time.Second,
		MinTextLength:     cfg.Scraper.MinTextLength,
		RequestsPerSecond: cfg.Scraper.RequestsPerSecond,
		UserAgent:         cfg.Scraper.UserAgent,
	})

	a.Services = Services{
		Auth: app.NewAuthService(userRepo, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute),
		Chat: app.NewChatService(sessionRepo, messageRepo, sink, historyCache, a.Ollama, a.VectorStore, app.ChatOptions{
			Temperature: &cfg.RAG.Temperature,
			MaxTokens:   cfg.RAG.MaxTokens,
			ContextK:    cfg.RAG.DefaultK,
		}, log),
		RAG: app.NewRAGService(a.VectorStore, a.Ollama, app.RAGOptions{
			DefaultK:          cfg.RAG.DefaultK,
			ContextCharBudget: cfg.RAG.ContextCharBudget,
			Temperature:       &cfg.RAG.Temperature,
			MaxTokens:         cfg.RAG.MaxTokens,
		}, log),
		Documents: app.NewDocumentService(a.VectorStore, documentRepo, web, app.DocumentOptions{
			UploadDir:         cfg.Upload.Dir,
			MaxFileSize:       cfg.Upload.MaxFileSize,
			AllowedExtensions: cfg.Upload.AllowedExtensions,
			ChunkSize:         cfg.RAG.ChunkSize,
			ChunkOverlap:      cfg.RAG.ChunkOverlap,
		}, log),
		Devices:   app.NewDeviceService(deviceRepo, log),
		Network:   app.NewNetworkService(deviceRepo, auditRepo, validator.New(cfg.Validator.DeepParse), log),
		Assistant: app.NewAssistantService(a.Ollama),
		Stats:     app.NewStatsService(deviceRepo, documentRepo, messageRepo, auditRepo, backend),
	}

	a.Plugins = plugin.NewRegistry()
	if err := a.Plugins.Register(plugin.NewCommandLibrary()); err != nil {
		_ = a.Close()
		return nil, err
	}

	if cfg.Network.SeedDevices {
		if _, err := a.Services.Devices.Seed(cfg.Network); err != nil {
			log.Warn(logModule, "seed devices failed", map[string]interface{}{"error": err})
		}
	}

	log.Info(logModule, "application initialised", map[string]interface{}{
		"database":     cfg.Database.Driver,
		"vector_store": backend.Name(),
		"embedder":     embedder.ModelName(),
		"redis":        a.Redis != nil,
		"rabbitmq":     a.MQConn != nil,
	})
	return a, nil
}

func (a *App) startQueue(ctx context.Context, store worker.MessageStore) error {
	conn, err := rabbitmqClient.New(ctx, a.Config.RabbitMQ.URL)
	if err != nil {
		return err
	}
	w := worker.NewMessagePersistWorker(conn, store, a.Config.RabbitMQ.MessagePersistQueue, a.Logger)
	if err := w.Start(ctx); err != nil {
		_ = conn.Close()
		return fmt.Errorf("start message worker failed: %w", err)
	}
	a.MQConn = conn
	a.MessageWorker = w
	a.Publisher = rabbitmqClient.NewMessagePublisher(conn, a.Config.RabbitMQ.MessagePersistQueue)
	return nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	switch cfg.Database.Driver {
	case "mysql":
		return mysqlClient.New(ctx, cfg.MySQLDSN(), mysqlClient.PoolOptions{})
	case "sqlite", "":
		return sqliteClient.New(ctx, cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func newEmbedder(cfg config.EmbeddingConfig) vectorstore.Embedder {
	ec := ai.EmbeddingConfig{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	if cfg.Provider == "openai" {
		return ai.NewOpenAIEmbedder(ec)
	}
	return ai.NewOllamaEmbedder(ec)
}

func newVectorBackend(ctx context.Context, cfg config.VectorStoreConfig) (vectorstore.Backend, error) {
	switch cfg.Backend {
	case "chroma":
		backend, err := vectorstore.NewChromaBackend(ctx, cfg.ChromaURL, cfg.CollectionName)
		if err != nil {
			return nil, fmt.Errorf("open chroma backend failed: %w", err)
		}
		return backend, nil
	case "memory", "":
		backend, err := vectorstore.NewMemoryBackend(cfg.PersistDirectory)
		if err != nil {
			return nil, fmt.Errorf("open memory backend failed: %w", err)
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("unsupported vector store backend %q", cfg.Backend)
	}
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MessageWorker != nil {
		a.MessageWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.VectorStore != nil {
		if c, ok := a.VectorStore.Backend().(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return closeErr
}
