package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"multimodal-knowledge-assistant/internal/ai"
	"multimodal-knowledge-assistant/internal/app"
	"multimodal-knowledge-assistant/internal/cache"
	"multimodal-knowledge-assistant/internal/config"
	"multimodal-knowledge-assistant/internal/extract"
	"multimodal-knowledge-assistant/internal/model"
	mysqlClient "multimodal-knowledge-assistant/internal/platform/mysql"
	rabbitmqClient "multimodal-knowledge-assistant/internal/platform/rabbitmq"
	redisClient "multimodal-knowledge-assistant/internal/platform/redis"
	"multimodal-knowledge-assistant/internal/repository"
	"multimodal-knowledge-assistant/internal/retrieval"
	"multimodal-knowledge-assistant/internal/vision"
	"multimodal-knowledge-assistant/internal/worker"
)

// App wires every dependency once at startup; nothing in the pipeline
// reaches for ambient process-wide state.
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	MySQL       *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	EmbedWorker *worker.EmbedWorker

	Ingest *app.IngestService
	Query  *app.QueryService

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger, err := newLogger(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("build logger failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.Document{}, &model.Chunk{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	llmClient := ai.NewOpenAICompatibleClient()
	embedder := ai.NewEmbeddingProvider(llmClient, ai.EmbeddingConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.EmbeddingModel,
	})
	generator := ai.NewGenerationProvider(llmClient, ai.ChatConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	})
	transcriber := ai.NewTranscriptionProvider(llmClient, ai.TranscribeConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.TranscribeModel,
	})

	var describer extract.ImageDescriber
	if cfg.Vision.Enabled {
		describer = vision.NewLabeler(
			cfg.Vision.ModelPath,
			cfg.Vision.LabelsPath,
			cfg.Vision.ONNXSharedLibPath,
			cfg.Vision.TopK,
		)
	}
	extractor := extract.NewService(transcriber, describer)

	docRepo := repository.NewDocumentRepository(mysqlDB)
	chunkRepo := repository.NewChunkRepository(mysqlDB)
	answerCache := cache.NewAnswerCache(redisCli, time.Duration(cfg.Redis.AnswerTTLSeconds)*time.Second)

	ingestOpts := app.IngestServiceOptions{
		Versions:  answerCache,
		ChunkSize: cfg.Retrieval.ChunkSize,
	}
	if cfg.Retrieval.AsyncIngest {
		ingestOpts.Publisher = rabbitmqClient.NewEmbedJobPublisher(mqConn, cfg.RabbitMQ.EmbedJobQueue)
	}
	ingestService := app.NewIngestService(docRepo, chunkRepo, embedder, extractor, logger, ingestOpts)

	retriever := retrieval.NewRetriever(chunkRepo)
	queryService := app.NewQueryService(retriever, embedder, generator, answerCache, cfg.Retrieval.TopK, logger)

	embedWorker := worker.NewEmbedWorker(mqConn, ingestService, cfg.RabbitMQ.EmbedJobQueue, logger)
	if err := embedWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start embed worker failed: %w", err)
	}

	return &App{
		Config:      cfg,
		Logger:      logger,
		MySQL:       mysqlDB,
		Redis:       redisCli,
		MQConn:      mqConn,
		EmbedWorker: embedWorker,
		Ingest:      ingestService,
		Query:       queryService,
		StartedAt:   time.Now(),
	}, nil
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func (a *App) Close() error {
	var closeErr error
	if a.EmbedWorker != nil {
		a.EmbedWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
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
