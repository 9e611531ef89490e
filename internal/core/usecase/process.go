package usecase

import (
	"context"
	"log/slog"

	"github.com/byroteam/byro/internal/core/domain"
	"github.com/byroteam/byro/internal/core/ports"
)

// ProcessIntakeUseCase drives one intake item through extraction and
// analysis. Nothing awaits a pipeline run, so no error ever escapes Run:
// every failure terminates by writing observable state, and faults on the
// error-path write itself are only logged.
type ProcessIntakeUseCase struct {
	repo      ports.IntakeItemRepository
	extractor ports.TextExtractor
	analyzer  ports.FieldAnalyzer
	logger    *slog.Logger
}

func NewProcessIntakeUseCase(
	repo ports.IntakeItemRepository,
	extractor ports.TextExtractor,
	analyzer ports.FieldAnalyzer,
	logger *slog.Logger,
) *ProcessIntakeUseCase {
	return &ProcessIntakeUseCase{
		repo:      repo,
		extractor: extractor,
		analyzer:  analyzer,
		logger:    logger,
	}
}

// Run executes the pipeline for one scheduled item and reports the status
// the item ended in.
func (uc *ProcessIntakeUseCase) Run(ctx context.Context, event domain.IntakeReceived) domain.IntakeStatus {
	text, err := uc.extractor.Extract(ctx, event.BlobRef)
	if err != nil {
		uc.markError(ctx, event.ItemID, "extract text: "+err.Error())
		return domain.StatusError
	}

	fields, err := uc.analyzer.Analyze(ctx, text)
	if err != nil {
		uc.markError(ctx, event.ItemID, "analyze document: "+err.Error())
		return domain.StatusError
	}

	if err := uc.repo.SetResult(ctx, event.ItemID, domain.StatusReview, domain.FieldsResult(fields)); err != nil {
		uc.logWriteFailure(event.ItemID, "review", err)
		return domain.StatusError
	}

	uc.logger.Info("intake item ready for review", "item_id", event.ItemID)
	return domain.StatusReview
}

func (uc *ProcessIntakeUseCase) markError(ctx context.Context, itemID, message string) {
	uc.logger.Warn("intake pipeline failed", "item_id", itemID, "error", message)
	if err := uc.repo.SetResult(ctx, itemID, domain.StatusError, domain.ErrorResult(message)); err != nil {
		uc.logWriteFailure(itemID, "error", err)
	}
}

func (uc *ProcessIntakeUseCase) logWriteFailure(itemID, target string, err error) {
	switch {
	case domain.IsKind(err, domain.ErrIntakeItemNotFound):
		// Item vanished under the pipeline; the terminal write is
		// best-effort, so stop quietly.
		uc.logger.Warn("intake item gone before terminal write", "item_id", itemID, "target_status", target)
	case domain.IsKind(err, domain.ErrStateConflict):
		uc.logger.Warn("intake item already terminal", "item_id", itemID, "target_status", target)
	default:
		uc.logger.Error("intake terminal write failed", "item_id", itemID, "target_status", target, "error", err)
	}
}
