// Package common builds the dependencies shared by faqhub commands.
package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"github.com/jonesrussell/faqhub/infrastructure/circuitbreaker"
	infrahttp "github.com/jonesrussell/faqhub/infrastructure/http"
	"github.com/jonesrussell/faqhub/infrastructure/logger"
	infraredis "github.com/jonesrussell/faqhub/infrastructure/redis"
	"github.com/jonesrussell/faqhub/internal/config"
	"github.com/jonesrussell/faqhub/internal/crawler"
	"github.com/jonesrussell/faqhub/internal/database"
	"github.com/jonesrussell/faqhub/internal/dedup"
	"github.com/jonesrussell/faqhub/internal/embedding"
	"github.com/jonesrussell/faqhub/internal/ingest"
	"github.com/jonesrussell/faqhub/internal/language"
	"github.com/jonesrussell/faqhub/internal/metrics"
	"github.com/jonesrussell/faqhub/internal/platform"
	"github.com/jonesrussell/faqhub/internal/quality"
	"github.com/jonesrussell/faqhub/internal/slug"
)

// DefaultConfigPath is read when --config is not given.
const DefaultConfigPath = "config.yml"

// CommandDeps holds what every command needs before touching storage.
type CommandDeps struct {
	Config *config.Config
	Logger logger.Logger
}

// NewCommandDeps loads the configuration and creates the logger.
func NewCommandDeps() (CommandDeps, error) {
	path := viper.GetString("config")
	if path == "" {
		path = DefaultConfigPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return CommandDeps{}, err
	}

	if viper.GetBool("debug") {
		cfg.Service.Debug = true
		cfg.Logging.Level = "debug"
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return CommandDeps{}, fmt.Errorf("create logger: %w", err)
	}

	return CommandDeps{
		Config: cfg,
		Logger: log.With(logger.String("service", cfg.Service.Name)),
	}, nil
}

// App is the fully wired application.
type App struct {
	CommandDeps

	DB         *sqlx.DB
	Redis      *redis.Client
	Articles   *database.ArticleRepository
	Paragraphs *database.ParagraphRepository
	Metrics    *metrics.Metrics
	Embedder   embedding.Embedder
	Pipeline   *ingest.Pipeline
}

// NewApp connects to storage and wires the ingestion pipeline. A database
// that stays unreachable after retries is the only fatal startup error;
// Redis failures fall back to database-only duplicate checks.
func NewApp(ctx context.Context, deps CommandDeps) (*App, error) {
	cfg := deps.Config
	log := deps.Logger
	policy := cfg.Crawler.Retry.Policy()

	db, err := database.Connect(ctx, cfg.Database, policy, log)
	if err != nil {
		return nil, err
	}

	app := &App{
		CommandDeps: deps,
		DB:          db,
		Articles:    database.NewArticleRepository(db),
		Paragraphs:  database.NewParagraphRepository(db),
		Metrics:     metrics.New(),
	}

	var cache dedup.Cache
	if cfg.Redis.Enabled {
		client, redisErr := infraredis.NewClient(ctx, cfg.Redis.Client)
		if redisErr != nil {
			log.Warn("Redis unavailable, using database for duplicate checks", logger.Error(redisErr))
		} else {
			app.Redis = client
			cache = dedup.NewRedisCache(client, cfg.Redis.Client, cfg.Redis.FingerprintTTL)
		}
	}

	var generator *embedding.Generator
	if cfg.Embedding.APIKey != "" {
		openAI := embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
			APIKey:  cfg.Embedding.APIKey,
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
			Timeout: cfg.Embedding.Timeout,
		}, policy)
		app.Embedder = embedding.WithBreaker(openAI, circuitbreaker.New(circuitbreaker.Config{
			OnStateChange: func(from, to circuitbreaker.State) {
				log.Warn("Embedding circuit breaker changed state",
					logger.String("from", from.String()),
					logger.String("to", to.String()),
				)
			},
		}))
		generator = embedding.NewGenerator(app.Embedder, cfg.Embedding.MaxParagraphs, cfg.Embedding.MinParagraphLength, log)
	} else {
		log.Warn("No embedding API key configured, articles are stored without paragraph embeddings")
	}

	app.Pipeline = ingest.NewPipeline(ingest.Deps{
		Articles:  app.Articles,
		Writer:    ingest.NewWriter(app.Articles, app.Paragraphs, policy, log, app.Metrics),
		Hasher:    dedup.NewHasher(cfg.Features.EnableContentDeduplication, cfg.Pipeline.Dedup.MinContentLength),
		Index:     dedup.NewIndex(app.Articles, cache, log),
		Detector:  language.NewDetector(cfg.Pipeline.Language.Target, cfg.Pipeline.Language.MinLength, cfg.Pipeline.Language.ReliabilityThreshold),
		Scorer:    quality.NewScorer(cfg.Pipeline.Quality.MinLength),
		Generator: generator,
		Slugs:     slug.NewAllocator(app.Articles),
		Policy:    policy,
		Logger:    log,
		Metrics:   app.Metrics,
	})

	return app, nil
}

// NewRunner builds the crawl runner over every active platform.
func (a *App) NewRunner() (*crawler.Runner, error) {
	client := infrahttp.NewClient(infrahttp.ClientConfig{
		Timeout:   a.Config.Crawler.RequestTimeout,
		UserAgent: a.Config.Crawler.UserAgent,
	})

	registry, err := platform.NewRegistry(a.Config, client, a.Config.Crawler.Retry.Policy(), a.Logger)
	if err != nil {
		return nil, fmt.Errorf("build platform registry: %w", err)
	}

	return crawler.NewRunner(registry, a.Pipeline, a.Articles, a.Metrics, a.Logger), nil
}

// Close releases the database pool and Redis client.
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	_ = a.Logger.Sync()
	return errors.Join(errs...)
}
