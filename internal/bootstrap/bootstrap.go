package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/byroteam/byro/internal/config"
	"github.com/byroteam/byro/internal/core/ports"
	"github.com/byroteam/byro/internal/core/usecase"
	"github.com/byroteam/byro/internal/infrastructure/extractor/filetext"
	"github.com/byroteam/byro/internal/infrastructure/llm/ollama"
	"github.com/byroteam/byro/internal/infrastructure/llm/stub"
	natsqueue "github.com/byroteam/byro/internal/infrastructure/queue/nats"
	"github.com/byroteam/byro/internal/infrastructure/repository/postgres"
	"github.com/byroteam/byro/internal/infrastructure/resilience"
	"github.com/byroteam/byro/internal/infrastructure/storage/localfs"
)

// App wires the intake pipeline's collaborators once at process start.
// Every dependency is constructed here and passed down explicitly.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue      ports.MessageQueue
	IntakeRepo ports.IntakeItemRepository
	MatterRepo ports.MatterRepository

	UploadUC  ports.IntakeUploader
	ProcessUC ports.IntakeProcessor
	PromoteUC ports.IntakePromoter

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	intakeRepo := postgres.NewIntakeRepository(db)
	if err := intakeRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure intake schema: %w", err)
	}
	matterRepo := postgres.NewMatterRepository(db)
	if err := matterRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure matter schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init blob storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	analyzer := newAnalyzer(cfg, executor, logger)
	extractor := filetext.NewExtractor(storage)

	uploadUC := usecase.NewUploadIntakeUseCase(intakeRepo, storage, queue)
	processUC := usecase.NewProcessIntakeUseCase(intakeRepo, extractor, analyzer, logger)
	promoteUC := usecase.NewPromoteIntakeUseCase(intakeRepo, matterRepo)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:      queue,
		IntakeRepo: intakeRepo,
		MatterRepo: matterRepo,

		UploadUC:  uploadUC,
		ProcessUC: processUC,
		PromoteUC: promoteUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

// newAnalyzer picks the analyzer variant once; call sites never branch on
// configuration state.
func newAnalyzer(cfg config.Config, executor *resilience.Executor, logger *slog.Logger) ports.FieldAnalyzer {
	if cfg.OllamaURL == "" {
		logger.Warn("no analyzer endpoint configured, using stub field analyzer")
		return stub.New()
	}
	return ollama.New(cfg.OllamaURL, cfg.OllamaModel, ollama.Options{
		SnippetLimit:       cfg.AnalyzerSnippetChars,
		ResilienceExecutor: executor,
	})
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
