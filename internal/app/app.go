package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/AnjiB/graphkg-rag-demo/internal/common"
	"github.com/AnjiB/graphkg-rag-demo/internal/handlers"
	"github.com/AnjiB/graphkg-rag-demo/internal/interfaces"
	"github.com/AnjiB/graphkg-rag-demo/internal/services/chunker"
	"github.com/AnjiB/graphkg-rag-demo/internal/services/concepts"
	"github.com/AnjiB/graphkg-rag-demo/internal/services/graph"
	"github.com/AnjiB/graphkg-rag-demo/internal/services/index"
	"github.com/AnjiB/graphkg-rag-demo/internal/services/llm"
	"github.com/AnjiB/graphkg-rag-demo/internal/services/maintenance"
	"github.com/AnjiB/graphkg-rag-demo/internal/services/pdf"
	"github.com/AnjiB/graphkg-rag-demo/internal/services/pipeline"
	"github.com/AnjiB/graphkg-rag-demo/internal/services/relevance"
)

// App owns all services and handlers for the lifetime of the process
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Handlers
	DocumentHandler *handlers.DocumentHandler
	QuestionHandler *handlers.QuestionHandler
	StatusHandler   *handlers.StatusHandler
	GraphHandler    *handlers.GraphHandler
	APIHandler      *handlers.APIHandler

	// Services that need teardown
	llmServices  *llm.Services
	indexManager *index.Manager
	graphStore   interfaces.GraphStore
	maintenance  *maintenance.Service
}

// New wires the full service graph from config. Any previously persisted
// vector index is restored so questions can be answered before the first
// upload of this run.
func New(ctx context.Context, cfg *common.Config) (*App, error) {
	logger := common.GetLogger()

	llmServices, err := llm.NewServices(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM services: %w", err)
	}

	indexManager := index.NewManager(cfg.Storage.Badger, llmServices.Embedder, logger)

	graphStore, err := graph.NewNeo4jStore(cfg.Neo4j, cfg, logger)
	if err != nil {
		llmServices.Close()
		return nil, fmt.Errorf("failed to connect to concept graph: %w", err)
	}

	docChunker := chunker.New(cfg.Chunking, pdf.NewExtractor(logger), logger)
	conceptExt := concepts.NewExtractor(cfg.Chunking.MaxConceptChunks)
	filter := relevance.NewFilter(cfg.Relevance)
	state := pipeline.NewState()

	// interfaces.GraphStore holding a nil *Neo4jStore must stay nil
	var graphIface interfaces.GraphStore
	if graphStore != nil {
		graphIface = graphStore
	}

	coordinator := pipeline.NewCoordinator(
		docChunker,
		conceptExt,
		graphIface,
		indexManager,
		llmServices.Completer,
		filter,
		cfg.Retrieval,
		state,
		logger,
	)

	retriever, chunks, err := indexManager.LoadExisting(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to restore persisted index, starting empty")
	} else if retriever != nil {
		coordinator.RestoreGeneration(retriever, chunks)
	}

	maintSvc := maintenance.NewService(cfg.Maintenance, indexManager, logger)
	if err := maintSvc.Start(); err != nil {
		logger.Warn().Err(err).Msg("Maintenance scheduler failed to start")
	}

	a := &App{
		Config:       cfg,
		Logger:       logger,
		llmServices:  llmServices,
		indexManager: indexManager,
		graphStore:   graphIface,
		maintenance:  maintSvc,
	}

	var graphReader handlers.GraphReader
	if graphIface != nil {
		graphReader = graphIface
	}

	a.DocumentHandler = handlers.NewDocumentHandler(coordinator, logger)
	a.QuestionHandler = handlers.NewQuestionHandler(state, logger)
	a.StatusHandler = handlers.NewStatusHandler(state, logger)
	a.GraphHandler = handlers.NewGraphHandler(graphReader, logger)
	a.APIHandler = handlers.NewAPIHandler()

	logger.Info().Msg("Application initialized")
	return a, nil
}

// Close tears services down in reverse dependency order
func (a *App) Close(ctx context.Context) error {
	a.maintenance.Stop()

	var firstErr error
	if a.graphStore != nil {
		if err := a.graphStore.Close(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close graph store")
			firstErr = err
		}
	}
	if err := a.indexManager.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close vector index")
		if firstErr == nil {
			firstErr = err
		}
	}
	if err := a.llmServices.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}
