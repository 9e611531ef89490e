package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/byroteam/byro/internal/core/domain"
)

type uploadRepoFake struct {
	created *domain.IntakeItem
	err     error
}

func (f *uploadRepoFake) Create(_ context.Context, item *domain.IntakeItem) error {
	if f.err != nil {
		return f.err
	}
	copyItem := *item
	f.created = &copyItem
	return nil
}

func (f *uploadRepoFake) GetByID(context.Context, string) (*domain.IntakeItem, error) {
	return nil, errors.New("not implemented")
}

func (f *uploadRepoFake) List(context.Context) ([]domain.IntakeItem, error) {
	return nil, errors.New("not implemented")
}

func (f *uploadRepoFake) SetResult(context.Context, string, domain.IntakeStatus, *domain.AnalysisResult) error {
	return errors.New("not implemented")
}

type uploadStorageFake struct {
	savedKey  string
	savedBody string
	err       error
}

func (f *uploadStorageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *uploadStorageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

type uploadQueueFake struct {
	event *domain.IntakeReceived
	err   error
}

func (f *uploadQueueFake) PublishIntakeReceived(_ context.Context, event domain.IntakeReceived) error {
	if f.err != nil {
		return f.err
	}
	f.event = &event
	return nil
}

func (f *uploadQueueFake) SubscribeIntakeReceived(context.Context, func(context.Context, domain.IntakeReceived) error) error {
	return errors.New("not implemented")
}

func TestUploadSuccess(t *testing.T) {
	repo := &uploadRepoFake{}
	storage := &uploadStorageFake{}
	queue := &uploadQueueFake{}
	uc := NewUploadIntakeUseCase(repo, storage, queue)

	item, err := uc.Upload(context.Background(), "contract draft.pdf", bytes.NewBufferString("%PDF"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if item.ID == "" {
		t.Fatalf("expected item id")
	}
	if item.Status != domain.StatusProcessing {
		t.Fatalf("expected status processing, got %s", item.Status)
	}
	if item.Result != nil {
		t.Fatalf("expected nil result while processing")
	}
	if repo.created == nil {
		t.Fatalf("expected repo.Create call")
	}
	if !strings.Contains(storage.savedKey, "_contract_draft.pdf") {
		t.Fatalf("unexpected storage key %q", storage.savedKey)
	}
	if storage.savedBody != "%PDF" {
		t.Fatalf("unexpected stored body %q", storage.savedBody)
	}
	if queue.event == nil || queue.event.ItemID != item.ID || queue.event.BlobRef != item.BlobRef {
		t.Fatalf("unexpected queued event %+v", queue.event)
	}
}

func TestUploadRejectsEmptyFilename(t *testing.T) {
	uc := NewUploadIntakeUseCase(&uploadRepoFake{}, &uploadStorageFake{}, &uploadQueueFake{})

	_, err := uc.Upload(context.Background(), "   ", bytes.NewBufferString("x"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUploadFailsWhenStorageFails(t *testing.T) {
	repo := &uploadRepoFake{}
	uc := NewUploadIntakeUseCase(repo, &uploadStorageFake{err: errors.New("disk full")}, &uploadQueueFake{})

	_, err := uc.Upload(context.Background(), "a.txt", bytes.NewBufferString("x"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if repo.created != nil {
		t.Fatalf("expected no intake item after storage failure")
	}
}

func TestUploadFailsWhenPublishFails(t *testing.T) {
	uc := NewUploadIntakeUseCase(&uploadRepoFake{}, &uploadStorageFake{}, &uploadQueueFake{err: errors.New("nats down")})

	_, err := uc.Upload(context.Background(), "a.txt", bytes.NewBufferString("x"))
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"My Report (final).pdf": "My_Report__final_.pdf",
		"../../etc/passwd":      "passwd",
		"":                      "document.bin",
	}
	for input, want := range cases {
		if got := sanitizeFilename(input); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", input, got, want)
		}
	}
}
