package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/aufaim/docquery/internal/api/handlers"
	"github.com/aufaim/docquery/internal/auth"
	"github.com/aufaim/docquery/internal/config"
	"github.com/aufaim/docquery/internal/core"
	"github.com/aufaim/docquery/internal/core/converter"
	"github.com/aufaim/docquery/internal/core/database"
	"github.com/aufaim/docquery/internal/core/ingestion"
	"github.com/aufaim/docquery/internal/core/llm"
	"github.com/aufaim/docquery/internal/core/retrieval"
	"github.com/aufaim/docquery/internal/core/source"
	"github.com/aufaim/docquery/internal/core/tokenizer"
	"github.com/aufaim/docquery/internal/models"
)

// App wires the service together and owns the resources that need shutdown.
type App struct {
	cfg    *config.Config
	store  *database.Store
	jobs   *ingestion.Manager
	server *Server
}

// New builds the full dependency graph. Sources that are not configured are
// skipped with a warning instead of failing startup; the service still serves
// the sources it has.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := database.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	tok, err := tokenizer.New()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init tokenizer: %w", err)
	}

	conv := converter.New()
	embedder := llm.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbedModel, cfg.EmbedDim)
	generator := llm.NewOpenAILLM(cfg.OpenAIAPIKey, cfg.GenModel)

	sources := map[models.SourceType]core.DocumentSource{
		models.SourceLocal: source.NewLocalSource(conv),
	}
	if cfg.DriveCredentialsFile != "" {
		drive, err := source.NewDriveSource(ctx, cfg.DriveCredentialsFile, conv)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("init drive source: %w", err)
		}
		sources[models.SourceGoogleDrive] = drive
	} else {
		log.Warn().Msg("google drive source disabled, no credentials file configured")
	}
	if cfg.S3Bucket != "" {
		s3src, err := source.NewS3Source(ctx, source.S3Config{
			AccessKey: cfg.AwsAccessKey,
			SecretKey: cfg.AwsSecretKey,
			Region:    cfg.AwsRegion,
			Bucket:    cfg.S3Bucket,
		}, conv)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("init s3 source: %w", err)
		}
		sources[models.SourceS3] = s3src
	} else {
		log.Warn().Msg("s3 source disabled, no bucket configured")
	}

	chunker := ingestion.NewChunker(tok, cfg.MaxChunkTokens, cfg.ChunkSafetyMargin)
	orch := ingestion.NewOrchestrator(sources, conv, embedder, store, chunker, cfg.FileBatchSize)
	jobs := ingestion.NewManager(orch)

	answerer := retrieval.NewAnswerer(embedder, store, generator)

	var verifier *auth.Verifier
	if cfg.AuthDomain != "" && cfg.AuthAudience != "" {
		verifier = auth.NewVerifier(cfg.AuthDomain, cfg.AuthAudience)
	} else {
		log.Warn().Msg("auth disabled, AUTH_DOMAIN or AUTH_AUDIENCE not configured")
	}

	server := NewServer(cfg,
		handlers.NewDocumentHandler(jobs),
		handlers.NewChatHandler(answerer),
		verifier,
	)

	return &App{cfg: cfg, store: store, jobs: jobs, server: server}, nil
}

// Run starts the background worker and the HTTP server, and blocks until ctx
// is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	a.jobs.Start(ctx)
	return a.server.Run(ctx)
}

// Close releases held resources.
func (a *App) Close() {
	a.store.Close()
}
