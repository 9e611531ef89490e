package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type IntakeStatus string

const (
	StatusProcessing IntakeStatus = "processing"
	StatusReview     IntakeStatus = "review"
	StatusError      IntakeStatus = "error"
	StatusCommitted  IntakeStatus = "committed"
)

// Terminal reports whether no further transition may leave the status.
func (s IntakeStatus) Terminal() bool {
	switch s {
	case StatusError, StatusCommitted:
		return true
	default:
		return false
	}
}

// IntakeItem is one uploaded file awaiting triage. Result is nil exactly
// while the item is still processing.
type IntakeItem struct {
	ID               string          `json:"id"`
	Status           IntakeStatus    `json:"status"`
	OriginalFilename string          `json:"original_filename"`
	BlobRef          string          `json:"blob_ref"`
	Result           *AnalysisResult `json:"result_payload"`
	CreatedAt        time.Time       `json:"created_at"`
}

// FieldMapping is the analyzer's structured output. TotalValue stays untyped
// because the configured analyzer may return a number where the stub returns
// a string.
type FieldMapping struct {
	Title        string `json:"title"`
	DocumentDate string `json:"document_date"`
	Counterparty string `json:"counterparty"`
	TotalValue   any    `json:"total_value"`
	Summary      string `json:"summary"`
	Category     string `json:"category"`
}

// AnalysisResult is the persisted result payload: either the analyzer's
// field mapping or an error description, never both.
type AnalysisResult struct {
	Fields *FieldMapping
	Error  string
}

func FieldsResult(fields FieldMapping) *AnalysisResult {
	return &AnalysisResult{Fields: &fields}
}

func ErrorResult(message string) *AnalysisResult {
	return &AnalysisResult{Error: message}
}

func (r *AnalysisResult) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(map[string]string{"error": r.Error})
	}
	if r.Fields == nil {
		return nil, fmt.Errorf("analysis result has neither fields nor error")
	}
	return json.Marshal(r.Fields)
}

func (r *AnalysisResult) UnmarshalJSON(raw []byte) error {
	var probe struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return fmt.Errorf("decode result payload: %w", err)
	}
	if probe.Error != nil {
		r.Fields = nil
		r.Error = *probe.Error
		return nil
	}

	var fields FieldMapping
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("decode field mapping: %w", err)
	}
	r.Fields = &fields
	r.Error = ""
	return nil
}

// String renders the payload the way it is copied into a document's
// content_text at promotion time.
func (r *AnalysisResult) String() string {
	raw, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return string(raw)
}

// IntakeReceived is the queue event that schedules one pipeline run.
// UploadedAt lets the worker observe queue lag.
type IntakeReceived struct {
	ItemID     string    `json:"item_id"`
	BlobRef    string    `json:"blob_ref"`
	UploadedAt time.Time `json:"uploaded_at"`
}
