package ports

import (
	"context"
	"io"

	"github.com/byroteam/byro/internal/core/domain"
)

// IntakeUploader is the inbound contract for accepting a new upload.
type IntakeUploader interface {
	Upload(ctx context.Context, filename string, body io.Reader) (*domain.IntakeItem, error)
}

// IntakeProcessor runs the extraction/analysis pipeline for one item. It is
// invoked detached from any request and never surfaces errors to its caller;
// outcomes are observable only through the item's persisted state. The
// returned status is the item's terminal pipeline state, for observability.
type IntakeProcessor interface {
	Run(ctx context.Context, event domain.IntakeReceived) domain.IntakeStatus
}

// IntakePromoter converts reviewed intake items into durable records.
type IntakePromoter interface {
	CreateMatter(ctx context.Context, fields domain.MatterFields, intakeItemID string) (*domain.Matter, error)
	AttachDocument(ctx context.Context, matterID, intakeItemID string) error
}

// IntakeReader is the inbound read model for intake items.
type IntakeReader interface {
	GetByID(ctx context.Context, id string) (*domain.IntakeItem, error)
	List(ctx context.Context) ([]domain.IntakeItem, error)
}

// MatterReader is the inbound read model for matters and their documents.
type MatterReader interface {
	List(ctx context.Context) ([]domain.Matter, error)
	ListDocuments(ctx context.Context, matterID string) ([]domain.Document, error)
}
