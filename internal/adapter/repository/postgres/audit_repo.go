package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/postgres/generated"
)

const maxAuditPage = 500

// AuditRepository persists audit logs. It implements usecase.AuditRecorder.
type AuditRepository struct {
	db generated.DBTX
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db generated.DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record inserts an audit row. Records are written after the financial
// transaction commits, so they go straight to the pool.
func (r *AuditRepository) Record(ctx context.Context, log *domain.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	before, err := stateJSON(log.BeforeState)
	if err != nil {
		return fmt.Errorf("encode audit before state: %w", err)
	}
	after, err := stateJSON(log.AfterState)
	if err != nil {
		return fmt.Errorf("encode audit after state: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO audit_logs (
			id, actor, action, entity_type, entity_id,
			before_state, after_state, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		log.ID, log.Actor, log.Action, log.EntityType, log.EntityID,
		before, after, log.Status, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log %s: %w", log.Action, err)
	}
	return nil
}

// auditQuery appends filter conditions while numbering placeholders.
type auditQuery struct {
	sb   strings.Builder
	args []any
}

func (q *auditQuery) where(cond string, v any) {
	q.args = append(q.args, v)
	q.sb.WriteString(" AND " + cond + " $" + strconv.Itoa(len(q.args)))
}

func (q *auditQuery) clause(kw string, v any) {
	q.args = append(q.args, v)
	q.sb.WriteString(" " + kw + " $" + strconv.Itoa(len(q.args)))
}

// List returns audit logs matching filter, newest first. The page size is
// capped at maxAuditPage.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	var q auditQuery
	q.sb.WriteString(`SELECT id, actor, action, entity_type, entity_id,
		       before_state, after_state, status, created_at
		FROM audit_logs
		WHERE 1=1`)

	if filter.Actor != "" {
		q.where("actor =", filter.Actor)
	}
	if filter.Action != "" {
		q.where("action =", filter.Action)
	}
	if filter.EntityType != "" {
		q.where("entity_type =", filter.EntityType)
	}
	if filter.EntityID != "" {
		q.where("entity_id =", filter.EntityID)
	}
	if filter.StartDate != nil {
		q.where("created_at >=", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q.where("created_at <", *filter.EndDate)
	}

	q.sb.WriteString(" ORDER BY created_at DESC, id DESC")

	limit := filter.Limit
	if limit <= 0 || limit > maxAuditPage {
		limit = maxAuditPage
	}
	q.clause("LIMIT", limit)
	if filter.Offset > 0 {
		q.clause("OFFSET", filter.Offset)
	}

	rows, err := r.db.Query(ctx, q.sb.String(), q.args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.AuditLog
	for rows.Next() {
		var (
			log           domain.AuditLog
			before, after []byte
		)
		if err := rows.Scan(
			&log.ID, &log.Actor, &log.Action, &log.EntityType, &log.EntityID,
			&before, &after, &log.Status, &log.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}

		if log.BeforeState, err = decodeState(before); err != nil {
			return nil, fmt.Errorf("audit log %s before state: %w", log.ID, err)
		}
		if log.AfterState, err = decodeState(after); err != nil {
			return nil, fmt.Errorf("audit log %s after state: %w", log.ID, err)
		}
		logs = append(logs, &log)
	}

	return logs, rows.Err()
}

// stateJSON leaves a nil state as SQL NULL.
func stateJSON(state map[string]any) ([]byte, error) {
	if state == nil {
		return nil, nil
	}
	return json.Marshal(state)
}

func decodeState(raw []byte) (map[string]any, error) {
	if raw == nil {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var state map[string]any
	if err := dec.Decode(&state); err != nil {
		return nil, err
	}
	return state, nil
}
