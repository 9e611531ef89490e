package ports

import (
	"context"
	"io"

	"github.com/byroteam/byro/internal/core/domain"
)

// IntakeItemRepository persists and reads intake item state.
type IntakeItemRepository interface {
	Create(ctx context.Context, item *domain.IntakeItem) error
	GetByID(ctx context.Context, id string) (*domain.IntakeItem, error)
	List(ctx context.Context) ([]domain.IntakeItem, error)
	// SetResult writes the pipeline outcome. It only succeeds while the item
	// is still processing; a terminal item yields ErrStateConflict and a
	// missing one ErrIntakeItemNotFound.
	SetResult(ctx context.Context, id string, status domain.IntakeStatus, result *domain.AnalysisResult) error
}

// MatterRepository persists matters and their documents. The promotion
// writes are transactional: matter, document and intake status move
// together or not at all.
type MatterRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Matter, error)
	List(ctx context.Context) ([]domain.Matter, error)
	ListDocuments(ctx context.Context, matterID string) ([]domain.Document, error)
	CreateWithDocument(ctx context.Context, matter *domain.Matter, doc *domain.Document, intakeItemID string) error
	AttachDocument(ctx context.Context, matterID string, doc *domain.Document, intakeItemID string) error
}

// ObjectStorage stores raw uploaded blobs.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue schedules pipeline runs for uploaded items.
type MessageQueue interface {
	PublishIntakeReceived(ctx context.Context, event domain.IntakeReceived) error
	SubscribeIntakeReceived(ctx context.Context, handler func(context.Context, domain.IntakeReceived) error) error
}

// TextExtractor extracts plain text from a stored blob.
type TextExtractor interface {
	Extract(ctx context.Context, blobRef string) (string, error)
}

// FieldAnalyzer structures extracted text into the triage field mapping.
type FieldAnalyzer interface {
	Analyze(ctx context.Context, text string) (domain.FieldMapping, error)
}
