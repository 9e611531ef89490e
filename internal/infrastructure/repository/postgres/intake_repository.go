package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/byroteam/byro/internal/core/domain"
)

type IntakeRepository struct {
	db *sql.DB
}

func NewIntakeRepository(db *sql.DB) *IntakeRepository {
	return &IntakeRepository{db: db}
}

func (r *IntakeRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS intake_items (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	original_filename TEXT NOT NULL,
	blob_ref TEXT NOT NULL,
	result_payload JSONB,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_intake_items_status ON intake_items(status);
CREATE INDEX IF NOT EXISTS idx_intake_items_created_at ON intake_items(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *IntakeRepository) Create(ctx context.Context, item *domain.IntakeItem) error {
	payload, err := marshalResult(item.Result)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO intake_items (id, status, original_filename, blob_ref, result_payload, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`,
		item.ID, string(item.Status), item.OriginalFilename, item.BlobRef, payload, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert intake item: %w", err)
	}
	return nil
}

func (r *IntakeRepository) GetByID(ctx context.Context, id string) (*domain.IntakeItem, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, status, original_filename, blob_ref, result_payload, created_at
FROM intake_items
WHERE id = $1
`, id)

	item, err := scanIntakeItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrIntakeItemNotFound, "get intake item", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan intake item: %w", err)
	}
	return item, nil
}

func (r *IntakeRepository) List(ctx context.Context) ([]domain.IntakeItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, status, original_filename, blob_ref, result_payload, created_at
FROM intake_items
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("query intake items: %w", err)
	}
	defer rows.Close()

	items := []domain.IntakeItem{}
	for rows.Next() {
		item, err := scanIntakeItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan intake item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intake items: %w", err)
	}
	return items, nil
}

// SetResult records the pipeline outcome. The status guard keeps terminal
// items immutable: only a processing item accepts a result write.
func (r *IntakeRepository) SetResult(
	ctx context.Context,
	id string,
	status domain.IntakeStatus,
	result *domain.AnalysisResult,
) error {
	payload, err := marshalResult(result)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE intake_items
SET status = $2, result_payload = $3
WHERE id = $1 AND status = $4
`, id, string(status), payload, string(domain.StatusProcessing))
	if err != nil {
		return fmt.Errorf("update intake result: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("intake result rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}
	return r.resolveGuardMiss(ctx, id, "set intake result")
}

// resolveGuardMiss distinguishes a missing row from a status-guard miss
// after a conditional update touched nothing.
func (r *IntakeRepository) resolveGuardMiss(ctx context.Context, id, operation string) error {
	var status string
	err := r.db.QueryRowContext(ctx, `SELECT status FROM intake_items WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WrapError(domain.ErrIntakeItemNotFound, operation, fmt.Errorf("id=%s", id))
	}
	if err != nil {
		return fmt.Errorf("%s: probe intake status: %w", operation, err)
	}
	return domain.WrapError(domain.ErrStateConflict, operation, fmt.Errorf("id=%s status=%s", id, status))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIntakeItem(row rowScanner) (*domain.IntakeItem, error) {
	var item domain.IntakeItem
	var status string
	var payload []byte

	if err := row.Scan(&item.ID, &status, &item.OriginalFilename, &item.BlobRef, &payload, &item.CreatedAt); err != nil {
		return nil, err
	}

	item.Status = domain.IntakeStatus(status)
	if len(payload) > 0 {
		var result domain.AnalysisResult
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, fmt.Errorf("unmarshal result payload: %w", err)
		}
		item.Result = &result
	}
	return &item, nil
}

func marshalResult(result *domain.AnalysisResult) ([]byte, error) {
	if result == nil {
		return nil, nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result payload: %w", err)
	}
	return raw, nil
}
