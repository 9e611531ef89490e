package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/byroteam/byro/internal/core/domain"
	"github.com/byroteam/byro/internal/core/ports"
)

// PromoteIntakeUseCase converts reviewed intake items into durable matter
// and document records. Both entry points require the source item to be in
// review state; the repository re-checks that inside the same transaction
// that inserts the document and flips the item to committed, so a promoted
// item always has exactly one document and a failed promotion leaves no
// rows behind.
type PromoteIntakeUseCase struct {
	intake  ports.IntakeItemRepository
	matters ports.MatterRepository
}

func NewPromoteIntakeUseCase(
	intake ports.IntakeItemRepository,
	matters ports.MatterRepository,
) *PromoteIntakeUseCase {
	return &PromoteIntakeUseCase{
		intake:  intake,
		matters: matters,
	}
}

// CreateMatter creates a new matter from the given fields and archives the
// intake item into it as a document.
func (uc *PromoteIntakeUseCase) CreateMatter(
	ctx context.Context,
	fields domain.MatterFields,
	intakeItemID string,
) (*domain.Matter, error) {
	if strings.TrimSpace(fields.Title) == "" || strings.TrimSpace(fields.Category) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create matter", fmt.Errorf("title and category are required"))
	}

	item, err := uc.reviewedItem(ctx, intakeItemID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	matter := &domain.Matter{
		ID:         uuid.NewString(),
		Title:      fields.Title,
		Category:   fields.Category,
		Attributes: fields.Attributes,
		Status:     domain.MatterActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	doc := documentFromItem(matter.ID, item, now)

	if err := uc.matters.CreateWithDocument(ctx, matter, doc, item.ID); err != nil {
		return nil, fmt.Errorf("promote intake item %s: %w", item.ID, err)
	}
	return matter, nil
}

// AttachDocument archives the intake item as a document on an existing
// matter.
func (uc *PromoteIntakeUseCase) AttachDocument(ctx context.Context, matterID, intakeItemID string) error {
	matter, err := uc.matters.GetByID(ctx, matterID)
	if err != nil {
		return fmt.Errorf("load matter %s: %w", matterID, err)
	}

	item, err := uc.reviewedItem(ctx, intakeItemID)
	if err != nil {
		return err
	}

	doc := documentFromItem(matter.ID, item, time.Now().UTC())
	if err := uc.matters.AttachDocument(ctx, matter.ID, doc, item.ID); err != nil {
		return fmt.Errorf("attach intake item %s: %w", item.ID, err)
	}
	return nil
}

// reviewedItem loads the item and rejects any status other than review.
// The transactional guard in the repository closes the race with a
// concurrent promotion; this check exists to fail fast with a clear error.
func (uc *PromoteIntakeUseCase) reviewedItem(ctx context.Context, intakeItemID string) (*domain.IntakeItem, error) {
	item, err := uc.intake.GetByID(ctx, intakeItemID)
	if err != nil {
		return nil, fmt.Errorf("load intake item %s: %w", intakeItemID, err)
	}
	if item.Status != domain.StatusReview {
		return nil, domain.WrapError(
			domain.ErrStateConflict,
			"promote intake item",
			fmt.Errorf("status is %s, want %s", item.Status, domain.StatusReview),
		)
	}
	return item, nil
}

func documentFromItem(matterID string, item *domain.IntakeItem, now time.Time) *domain.Document {
	var content string
	if item.Result != nil {
		content = item.Result.String()
	}
	return &domain.Document{
		ID:          uuid.NewString(),
		MatterID:    matterID,
		Title:       item.OriginalFilename,
		ContentText: content,
		CreatedAt:   now,
	}
}
