package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/byroteam/byro/internal/core/domain"
)

type MatterRepository struct {
	db *sql.DB
}

func NewMatterRepository(db *sql.DB) *MatterRepository {
	return &MatterRepository{db: db}
}

func (r *MatterRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083102)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	// content_embedding is reserved for similarity search and stays NULL.
	const query = `
CREATE TABLE IF NOT EXISTS matters (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	category TEXT NOT NULL,
	attributes JSONB,
	status TEXT NOT NULL DEFAULT 'active',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	matter_id TEXT NOT NULL REFERENCES matters(id),
	title TEXT NOT NULL,
	content_text TEXT,
	content_embedding REAL[],
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_matters_created_at ON matters(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_documents_matter_id ON documents(matter_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *MatterRepository) GetByID(ctx context.Context, id string) (*domain.Matter, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, category, attributes, status, created_at, updated_at
FROM matters
WHERE id = $1
`, id)

	matter, err := scanMatter(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrMatterNotFound, "get matter", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan matter: %w", err)
	}
	return matter, nil
}

func (r *MatterRepository) List(ctx context.Context) ([]domain.Matter, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, category, attributes, status, created_at, updated_at
FROM matters
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("query matters: %w", err)
	}
	defer rows.Close()

	matters := []domain.Matter{}
	for rows.Next() {
		matter, err := scanMatter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan matter: %w", err)
		}
		matters = append(matters, *matter)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matters: %w", err)
	}
	return matters, nil
}

func (r *MatterRepository) ListDocuments(ctx context.Context, matterID string) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, matter_id, title, content_text, created_at
FROM documents
WHERE matter_id = $1
ORDER BY created_at DESC
`, matterID)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		var doc domain.Document
		var content sql.NullString
		if err := rows.Scan(&doc.ID, &doc.MatterID, &doc.Title, &content, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.ContentText = content.String
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// CreateWithDocument promotes a reviewed intake item into a brand-new
// matter. Matter insert, document insert and the intake status flip commit
// as one transaction; the guarded update aborts the whole unit when the
// item is missing or no longer in review.
func (r *MatterRepository) CreateWithDocument(
	ctx context.Context,
	matter *domain.Matter,
	doc *domain.Document,
	intakeItemID string,
) error {
	return r.inTx(ctx, "create matter with document", func(tx *sql.Tx) error {
		attrs, err := marshalAttributes(matter.Attributes)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO matters (id, title, category, attributes, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, matter.ID, matter.Title, matter.Category, attrs, string(matter.Status), matter.CreatedAt, matter.UpdatedAt); err != nil {
			return fmt.Errorf("insert matter: %w", err)
		}

		if err := insertDocument(ctx, tx, doc); err != nil {
			return err
		}
		return commitIntakeItem(ctx, tx, intakeItemID)
	})
}

// AttachDocument promotes a reviewed intake item into a document on an
// existing matter, under the same transactional discipline as
// CreateWithDocument. Attaching is a matter mutation, so updated_at is
// refreshed.
func (r *MatterRepository) AttachDocument(
	ctx context.Context,
	matterID string,
	doc *domain.Document,
	intakeItemID string,
) error {
	return r.inTx(ctx, "attach document", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE matters SET updated_at = $2 WHERE id = $1
`, matterID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("touch matter: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("touch matter rows affected: %w", err)
		}
		if affected == 0 {
			return domain.WrapError(domain.ErrMatterNotFound, "attach document", fmt.Errorf("id=%s", matterID))
		}

		if err := insertDocument(ctx, tx, doc); err != nil {
			return err
		}
		return commitIntakeItem(ctx, tx, intakeItemID)
	})
}

func (r *MatterRepository) inTx(ctx context.Context, operation string, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s tx: %w", operation, err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w; rollback: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s tx: %w", operation, err)
	}
	return nil
}

func insertDocument(ctx context.Context, tx *sql.Tx, doc *domain.Document) error {
	var content sql.NullString
	if doc.ContentText != "" {
		content = sql.NullString{String: doc.ContentText, Valid: true}
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO documents (id, matter_id, title, content_text, created_at)
VALUES ($1,$2,$3,$4,$5)
`, doc.ID, doc.MatterID, doc.Title, content, doc.CreatedAt); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// commitIntakeItem flips the source item review -> committed. Zero affected
// rows means a promotion raced us or the item is gone; either way the
// surrounding transaction must abort so no orphan document survives.
func commitIntakeItem(ctx context.Context, tx *sql.Tx, intakeItemID string) error {
	res, err := tx.ExecContext(ctx, `
UPDATE intake_items
SET status = $2
WHERE id = $1 AND status = $3
`, intakeItemID, string(domain.StatusCommitted), string(domain.StatusReview))
	if err != nil {
		return fmt.Errorf("commit intake item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("commit intake rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var status string
	probeErr := tx.QueryRowContext(ctx, `SELECT status FROM intake_items WHERE id = $1`, intakeItemID).Scan(&status)
	if errors.Is(probeErr, sql.ErrNoRows) {
		return domain.WrapError(domain.ErrIntakeItemNotFound, "commit intake item", fmt.Errorf("id=%s", intakeItemID))
	}
	if probeErr != nil {
		return fmt.Errorf("probe intake status: %w", probeErr)
	}
	return domain.WrapError(domain.ErrStateConflict, "commit intake item", fmt.Errorf("id=%s status=%s", intakeItemID, status))
}

func scanMatter(row rowScanner) (*domain.Matter, error) {
	var matter domain.Matter
	var status string
	var attrs []byte

	if err := row.Scan(&matter.ID, &matter.Title, &matter.Category, &attrs, &status, &matter.CreatedAt, &matter.UpdatedAt); err != nil {
		return nil, err
	}

	matter.Status = domain.MatterStatus(status)
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &matter.Attributes); err != nil {
			return nil, fmt.Errorf("unmarshal matter attributes: %w", err)
		}
	}
	return &matter, nil
}

func marshalAttributes(attrs map[string]any) ([]byte, error) {
	if attrs == nil {
		return nil, nil
	}
	raw, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("marshal matter attributes: %w", err)
	}
	return raw, nil
}
