package domain

import (
	"encoding/json"
	"testing"
)

func TestAnalysisResultMarshalsErrorShape(t *testing.T) {
	raw, err := json.Marshal(ErrorResult("extract text: boom"))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(raw) != `{"error":"extract text: boom"}` {
		t.Fatalf("unexpected payload: %s", raw)
	}
}

func TestAnalysisResultRoundTripsFieldMapping(t *testing.T) {
	original := FieldsResult(FieldMapping{
		Title:      "Sample Contract",
		TotalValue: "1200 EUR",
		Category:   "contract",
	})

	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded AnalysisResult
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Error != "" {
		t.Fatalf("expected fields variant, got error %q", decoded.Error)
	}
	if decoded.Fields == nil || decoded.Fields.Title != "Sample Contract" {
		t.Fatalf("unexpected fields: %+v", decoded.Fields)
	}
}

func TestAnalysisResultDecodesErrorShape(t *testing.T) {
	var decoded AnalysisResult
	if err := json.Unmarshal([]byte(`{"error":"analyze document: llm down"}`), &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Error == "" || decoded.Fields != nil {
		t.Fatalf("expected error variant, got %+v", decoded)
	}
}

func TestIntakeStatusTerminal(t *testing.T) {
	cases := map[IntakeStatus]bool{
		StatusProcessing: false,
		StatusReview:     false,
		StatusError:      true,
		StatusCommitted:  true,
	}
	for status, want := range cases {
		if got := status.Terminal(); got != want {
			t.Fatalf("Terminal(%s) = %v, want %v", status, got, want)
		}
	}
}
