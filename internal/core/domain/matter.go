package domain

import "time"

type MatterStatus string

const (
	MatterActive     MatterStatus = "active"
	MatterExpired    MatterStatus = "expired"
	MatterTerminated MatterStatus = "terminated"
)

// Matter is a committed, durable unit of work. Its status is unrelated to
// the intake lifecycle.
type Matter struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Category   string         `json:"category"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Status     MatterStatus   `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// MatterFields carries caller-supplied fields for a new matter.
type MatterFields struct {
	Title      string         `json:"title"`
	Category   string         `json:"category"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Document is one file permanently attached to a matter. A document cannot
// outlive its matter. The documents table also reserves a content_embedding
// column for similarity search; nothing populates it yet.
type Document struct {
	ID          string    `json:"id"`
	MatterID    string    `json:"matter_id"`
	Title       string    `json:"title"`
	ContentText string    `json:"content_text,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
