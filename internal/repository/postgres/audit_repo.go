// internal/repository/postgres/audit_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"adscreen-service/internal/domain/audit"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepository writes to the append-only audit_logs table. Entries are only
// ever inserted inside the transaction that performed the change.
type AuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) CreateTx(ctx context.Context, tx pgx.Tx, e *audit.Entry) error {
	var metadataJSON []byte
	if e.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
	}

	query := `
		INSERT INTO audit_logs (actor_id, action, entity_type, entity_id, previous_value, new_value, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := tx.QueryRow(ctx, query, e.ActorID, e.Action, e.EntityType, e.EntityID, e.PreviousValue, e.NewValue, metadataJSON).
		Scan(&e.ID, &e.CreatedAt)
	return mapError(err, "failed to write audit entry")
}

func (r *AuditRepository) List(ctx context.Context, filters *audit.EntryFilters) ([]audit.Entry, int64, error) {
	var w where
	if filters.EntityType != "" {
		w.add("entity_type = $%d", filters.EntityType)
	}
	if filters.EntityID != nil {
		w.add("entity_id = $%d", *filters.EntityID)
	}
	if filters.ActorID != nil {
		w.add("actor_id = $%d", *filters.ActorID)
	}

	var total int64
	if err := r.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM audit_logs WHERE %s", w.clause()), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	page, size, offset := normalizePage(filters.Page, filters.PageSize)
	filters.Page, filters.PageSize = page, size

	query := fmt.Sprintf(`
		SELECT id, actor_id, action, entity_type, entity_id, previous_value, new_value, metadata, created_at
		FROM audit_logs WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		w.clause(), w.next(), w.next()+1)

	rows, err := r.db.Query(ctx, query, append(w.args, size, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	entries := []audit.Entry{}
	for rows.Next() {
		var e audit.Entry
		var metadataJSON []byte
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID,
			&e.PreviousValue, &e.NewValue, &metadataJSON, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &e.Metadata); err != nil {
				return nil, 0, fmt.Errorf("failed to unmarshal audit metadata: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
