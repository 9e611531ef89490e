package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/byroteam/byro/internal/core/domain"
)

type uploaderFake struct {
	item *domain.IntakeItem
	err  error

	gotFilename string
	gotBody     []byte
}

func (f *uploaderFake) Upload(_ context.Context, filename string, body io.Reader) (*domain.IntakeItem, error) {
	f.gotFilename = filename
	raw, _ := io.ReadAll(body)
	f.gotBody = raw
	if f.err != nil {
		return nil, f.err
	}
	return f.item, nil
}

type promoterFake struct {
	matter    *domain.Matter
	createErr error
	attachErr error

	gotFields domain.MatterFields
	gotItemID string
	gotMatter string
}

func (f *promoterFake) CreateMatter(_ context.Context, fields domain.MatterFields, intakeItemID string) (*domain.Matter, error) {
	f.gotFields = fields
	f.gotItemID = intakeItemID
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.matter, nil
}

func (f *promoterFake) AttachDocument(_ context.Context, matterID, intakeItemID string) error {
	f.gotMatter = matterID
	f.gotItemID = intakeItemID
	return f.attachErr
}

type intakeReaderFake struct {
	item  *domain.IntakeItem
	items []domain.IntakeItem
	err   error
}

func (f *intakeReaderFake) GetByID(_ context.Context, _ string) (*domain.IntakeItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.item, nil
}

func (f *intakeReaderFake) List(_ context.Context) ([]domain.IntakeItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

type matterReaderFake struct {
	matters []domain.Matter
	docs    []domain.Document
	err     error
}

func (f *matterReaderFake) List(_ context.Context) ([]domain.Matter, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.matters, nil
}

func (f *matterReaderFake) ListDocuments(_ context.Context, _ string) ([]domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func newTestRouter(up *uploaderFake, pr *promoterFake, in *intakeReaderFake, ma *matterReaderFake) http.Handler {
	if up == nil {
		up = &uploaderFake{}
	}
	if pr == nil {
		pr = &promoterFake{}
	}
	if in == nil {
		in = &intakeReaderFake{}
	}
	if ma == nil {
		ma = &matterReaderFake{}
	}
	return NewRouter(up, pr, in, ma, 1<<20, nil).Handler()
}

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUploadReturnsAcceptedWithProcessingItem(t *testing.T) {
	uploader := &uploaderFake{item: &domain.IntakeItem{
		ID:               "item-1",
		Status:           domain.StatusProcessing,
		OriginalFilename: "contract.pdf",
		BlobRef:          "item-1_contract.pdf",
		CreatedAt:        time.Now().UTC(),
	}}
	handler := newTestRouter(uploader, nil, nil, nil)

	body, contentType := multipartUpload(t, "file", "contract.pdf", "%PDF-1.4 fake")
	req := httptest.NewRequest(http.MethodPost, "/v1/inbox", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusAccepted, rec.Body.String())
	}
	if uploader.gotFilename != "contract.pdf" {
		t.Fatalf("uploader received filename %q", uploader.gotFilename)
	}
	if string(uploader.gotBody) != "%PDF-1.4 fake" {
		t.Fatalf("uploader received body %q", uploader.gotBody)
	}

	var item domain.IntakeItem
	if err := json.NewDecoder(rec.Body).Decode(&item); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if item.Status != domain.StatusProcessing {
		t.Fatalf("response status = %q, want processing", item.Status)
	}
	if item.Result != nil {
		t.Fatalf("fresh item must carry no result, got %+v", item.Result)
	}
}

func TestUploadRejectsMissingMultipartField(t *testing.T) {
	handler := newTestRouter(nil, nil, nil, nil)

	body, contentType := multipartUpload(t, "attachment", "contract.pdf", "data")
	req := httptest.NewRequest(http.MethodPost, "/v1/inbox", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetInboxItemMapsNotFound(t *testing.T) {
	reader := &intakeReaderFake{err: domain.WrapError(domain.ErrIntakeItemNotFound, "get intake item", fmt.Errorf("id=missing"))}
	handler := newTestRouter(nil, nil, reader, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/inbox/missing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCreateMatterReturnsCreated(t *testing.T) {
	promoter := &promoterFake{matter: &domain.Matter{
		ID:       "matter-1",
		Title:    "M1",
		Category: "contract",
		Status:   domain.MatterActive,
	}}
	handler := newTestRouter(nil, promoter, nil, nil)

	payload := `{"title":"M1","category":"contract","attributes":{"client":"Acme"},"intake_item_id":"item-1"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/matters", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if promoter.gotItemID != "item-1" {
		t.Fatalf("promoter received item id %q", promoter.gotItemID)
	}
	if promoter.gotFields.Attributes["client"] != "Acme" {
		t.Fatalf("promoter received attributes %+v", promoter.gotFields.Attributes)
	}

	var matter domain.Matter
	if err := json.NewDecoder(rec.Body).Decode(&matter); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if matter.ID != "matter-1" {
		t.Fatalf("response matter id = %q", matter.ID)
	}
}

func TestCreateMatterRequiresIntakeItemID(t *testing.T) {
	handler := newTestRouter(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/matters", strings.NewReader(`{"title":"M1","category":"contract"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateMatterMapsStateConflict(t *testing.T) {
	promoter := &promoterFake{
		createErr: domain.WrapError(domain.ErrStateConflict, "create matter", fmt.Errorf("status=committed")),
	}
	handler := newTestRouter(nil, promoter, nil, nil)

	payload := `{"title":"M1","category":"contract","intake_item_id":"item-1"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/matters", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestAttachDocumentReturnsCreated(t *testing.T) {
	promoter := &promoterFake{}
	handler := newTestRouter(nil, promoter, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/matters/matter-1/documents", strings.NewReader(`{"intake_item_id":"item-2"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if promoter.gotMatter != "matter-1" || promoter.gotItemID != "item-2" {
		t.Fatalf("promoter received matter=%q item=%q", promoter.gotMatter, promoter.gotItemID)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "attached" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestAttachDocumentMapsMissingMatter(t *testing.T) {
	promoter := &promoterFake{
		attachErr: domain.WrapError(domain.ErrMatterNotFound, "attach document", fmt.Errorf("id=missing")),
	}
	handler := newTestRouter(nil, promoter, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/matters/missing/documents", strings.NewReader(`{"intake_item_id":"item-2"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestListEndpointsReturnEmptyArrays(t *testing.T) {
	handler := newTestRouter(nil, nil, &intakeReaderFake{items: []domain.IntakeItem{}}, &matterReaderFake{
		matters: []domain.Matter{},
		docs:    []domain.Document{},
	})

	for _, path := range []string{"/v1/inbox", "/v1/matters", "/v1/matters/matter-1/documents"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
			t.Fatalf("GET %s body = %q, want empty array", path, got)
		}
	}
}

func TestHealthzReportsOK(t *testing.T) {
	handler := newTestRouter(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	handler := newTestRouter(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID response header")
	}
}
