// Package stub provides the degraded field analyzer used when no model
// endpoint is configured. It returns a fixed placeholder mapping so the
// intake pipeline stays exercisable in development and tests.
package stub

import (
	"context"

	"github.com/byroteam/byro/internal/core/domain"
)

type Analyzer struct{}

func New() *Analyzer {
	return &Analyzer{}
}

func (a *Analyzer) Analyze(_ context.Context, _ string) (domain.FieldMapping, error) {
	return domain.FieldMapping{
		Title:        "Test Document",
		DocumentDate: "2025-12-10",
		Counterparty: "Test Party",
		TotalValue:   "Test Amount",
		Summary:      "This is a test document for development purposes.",
		Category:     "general",
	}, nil
}
