// Package serve implements the serve command.
package serve

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/faqhub/cmd/common"
	infragin "github.com/jonesrussell/faqhub/infrastructure/gin"
	"github.com/jonesrussell/faqhub/infrastructure/logger"
	"github.com/jonesrussell/faqhub/internal/search"
)

// ErrSearchNeedsEmbeddings is returned when serve starts without an embedding API key.
var ErrSearchNeedsEmbeddings = errors.New("search requires embedding.api_key to embed queries")

// Command returns the serve command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the search API",
		Long: `Serve starts the HTTP server exposing semantic search, article lookup,
health endpoints and Prometheus metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to get dependencies: %w", err)
			}
			return run(cmd.Context(), deps)
		},
	}
}

func run(ctx context.Context, deps common.CommandDeps) error {
	app, err := common.NewApp(ctx, deps)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			deps.Logger.Warn("Failed to close resources", logger.Error(closeErr))
		}
	}()

	if app.Embedder == nil {
		return ErrSearchNeedsEmbeddings
	}

	cfg := deps.Config
	svc := search.NewService(app.Embedder, app.Paragraphs, app.Articles, search.Config{
		MinScore:       cfg.Search.MinScore,
		CandidateLimit: cfg.Search.CandidateLimit,
		ResultLimit:    cfg.Search.ResultLimit,
		MaxSnippets:    cfg.Search.MaxSnippets,
	})
	handler := search.NewHandler(svc, deps.Logger)

	builder := infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(deps.Logger).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithCORSOrigins(cfg.Service.CORSOrigins).
		WithDatabaseHealthCheck(func() error { return app.DB.PingContext(ctx) }).
		WithMetrics(app.Metrics.Handler()).
		WithRoutes(func(router *gin.Engine) {
			router.Use(app.Metrics.GinMiddleware())
			handler.RegisterRoutes(router)
		})

	if app.Redis != nil {
		builder = builder.WithRedisHealthCheck(func() error { return app.Redis.Ping(ctx).Err() })
	}

	deps.Logger.Info("Starting search API", logger.Int("port", cfg.Service.Port))
	return builder.Build().Run(ctx)
}
