package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/byroteam/byro/internal/core/domain"
	"github.com/byroteam/byro/internal/core/ports"
)

type UploadIntakeUseCase struct {
	repo    ports.IntakeItemRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewUploadIntakeUseCase(
	repo ports.IntakeItemRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *UploadIntakeUseCase {
	return &UploadIntakeUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

// Upload stores the raw blob, durably creates the intake item in processing
// state and schedules the pipeline run. The pipeline itself runs detached;
// this call returns as soon as the event is published.
func (uc *UploadIntakeUseCase) Upload(
	ctx context.Context,
	filename string,
	body io.Reader,
) (*domain.IntakeItem, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", fmt.Errorf("filename is required"))
	}

	id := uuid.NewString()
	blobRef := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, blobRef, body); err != nil {
		return nil, fmt.Errorf("save to blob storage: %w", err)
	}

	item := &domain.IntakeItem{
		ID:               id,
		Status:           domain.StatusProcessing,
		OriginalFilename: filename,
		BlobRef:          blobRef,
		Result:           nil,
		CreatedAt:        now,
	}

	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create intake item: %w", err)
	}

	event := domain.IntakeReceived{
		ItemID:     item.ID,
		BlobRef:    item.BlobRef,
		UploadedAt: now,
	}
	if err := uc.queue.PublishIntakeReceived(ctx, event); err != nil {
		return nil, fmt.Errorf("schedule intake pipeline: %w", err)
	}

	return item, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}
