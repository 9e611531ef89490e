package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/byroteam/byro/internal/core/domain"
	"github.com/byroteam/byro/internal/core/ports"
	"github.com/byroteam/byro/internal/observability/metrics"
)

type Router struct {
	uploader ports.IntakeUploader
	promoter ports.IntakePromoter
	intake   ports.IntakeReader
	matters  ports.MatterReader

	maxUploadBytes int64
	metrics        *metrics.HTTPServerMetrics
}

func NewRouter(
	uploader ports.IntakeUploader,
	promoter ports.IntakePromoter,
	intake ports.IntakeReader,
	matters ports.MatterReader,
	maxUploadBytes int64,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		uploader:       uploader,
		promoter:       promoter,
		intake:         intake,
		matters:        matters,
		maxUploadBytes: maxUploadBytes,
		metrics:        httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/inbox", rt.uploadFile)
	mux.HandleFunc("GET /v1/inbox", rt.listInbox)
	mux.HandleFunc("GET /v1/inbox/{id}", rt.getInboxItem)
	mux.HandleFunc("POST /v1/matters", rt.createMatter)
	mux.HandleFunc("GET /v1/matters", rt.listMatters)
	mux.HandleFunc("POST /v1/matters/{id}/documents", rt.attachDocument)
	mux.HandleFunc("GET /v1/matters/{id}/documents", rt.listMatterDocuments)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("api", handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// uploadFile accepts the file, creates the intake item and returns before
// the pipeline runs; callers poll the item until it leaves processing.
func (rt *Router) uploadFile(w http.ResponseWriter, r *http.Request) {
	if rt.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes)
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	item, err := rt.uploader.Upload(r.Context(), fileHeader.Filename, file)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordUpload("api")
	}
	writeJSON(w, http.StatusAccepted, item)
}

func (rt *Router) listInbox(w http.ResponseWriter, r *http.Request) {
	items, err := rt.intake.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (rt *Router) getInboxItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "intake item id is required")
		return
	}

	item, err := rt.intake.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (rt *Router) createMatter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title        string         `json:"title"`
		Category     string         `json:"category"`
		Attributes   map[string]any `json:"attributes"`
		IntakeItemID string         `json:"intake_item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.IntakeItemID) == "" {
		writeError(w, http.StatusBadRequest, "intake_item_id is required")
		return
	}

	matter, err := rt.promoter.CreateMatter(r.Context(), domain.MatterFields{
		Title:      req.Title,
		Category:   req.Category,
		Attributes: req.Attributes,
	}, req.IntakeItemID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordPromotion("api", "create_matter")
	}
	writeJSON(w, http.StatusCreated, matter)
}

func (rt *Router) listMatters(w http.ResponseWriter, r *http.Request) {
	matters, err := rt.matters.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matters)
}

func (rt *Router) attachDocument(w http.ResponseWriter, r *http.Request) {
	matterID := r.PathValue("id")
	if matterID == "" {
		writeError(w, http.StatusBadRequest, "matter id is required")
		return
	}

	var req struct {
		IntakeItemID string `json:"intake_item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.IntakeItemID) == "" {
		writeError(w, http.StatusBadRequest, "intake_item_id is required")
		return
	}

	if err := rt.promoter.AttachDocument(r.Context(), matterID, req.IntakeItemID); err != nil {
		writeDomainError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordPromotion("api", "attach_document")
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "attached"})
}

func (rt *Router) listMatterDocuments(w http.ResponseWriter, r *http.Request) {
	matterID := r.PathValue("id")
	if matterID == "" {
		writeError(w, http.StatusBadRequest, "matter id is required")
		return
	}

	docs, err := rt.matters.ListDocuments(r.Context(), matterID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, mapErrorToHTTPStatus(err), err.Error())
}
