package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/metrics"
)

// auditor applies the single audit failure policy used by every mutation:
// the record is written after commit, and a failure is logged, counted and
// handed back as a warning. It never undoes the financial change.
type auditor struct {
	recorder AuditRecorder
	idGen    IDGenerator
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

type auditEntry struct {
	actor      domain.Actor
	action     domain.AuditAction
	entityType string
	entityID   string
	before     any
	after      any
}

// record returns a non-empty warning when the audit write failed.
func (a auditor) record(ctx context.Context, e auditEntry) string {
	if a.recorder == nil {
		return ""
	}

	log := &domain.AuditLog{
		ID:          a.idGen.Generate(),
		Actor:       e.actor.ID,
		Action:      string(e.action),
		EntityType:  e.entityType,
		EntityID:    e.entityID,
		BeforeState: domain.MarshalState(e.before),
		AfterState:  domain.MarshalState(e.after),
		Status:      string(domain.AuditStatusSuccess),
		CreatedAt:   time.Now().UTC(),
	}

	if err := a.recorder.Record(ctx, log); err != nil {
		a.logger.Error().
			Err(err).
			Str("action", log.Action).
			Str("entity_type", log.EntityType).
			Str("entity_id", log.EntityID).
			Msg("audit record failed")

		if a.metrics != nil {
			a.metrics.AuditFailures.WithLabelValues(log.Action).Inc()
		}

		return fmt.Sprintf("audit record for %s %s failed: %v", log.Action, log.EntityID, err)
	}

	if a.metrics != nil {
		a.metrics.AuditLogsCreated.WithLabelValues(log.Action).Inc()
	}

	return ""
}

func appendWarning(warnings []string, w string) []string {
	if w == "" {
		return warnings
	}
	return append(warnings, w)
}
