package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/coopledger/internal/adapter/http/dto"
	"github.com/iho/coopledger/internal/domain"
)

// AuditReader lists audit trail entries.
type AuditReader interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// EventReader lists outbox events of one aggregate.
type EventReader interface {
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
}

// AuditHandler exposes the audit trail and the event history.
type AuditHandler struct {
	audit  AuditReader
	events EventReader
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(audit AuditReader, events EventReader) *AuditHandler {
	return &AuditHandler{audit: audit, events: events}
}

// ListAuditLogs returns audit entries filtered by actor, action, entity and
// a start/end date range.
func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := pagination(r, 50)

	filter := domain.AuditFilter{
		Actor:      q.Get("actor"),
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
		Limit:      limit,
		Offset:     offset,
	}

	if s := q.Get("start"); s != "" {
		start, err := dto.ParseDate(s)
		if err != nil {
			respondError(w, r, "invalid start date", err)
			return
		}
		filter.StartDate = &start
	}
	if s := q.Get("end"); s != "" {
		end, err := dto.ParseDate(s)
		if err != nil {
			respondError(w, r, "invalid end date", err)
			return
		}
		filter.EndDate = &end
	}

	logs, err := h.audit.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, "failed to list audit logs", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}

// ListEvents returns the outbox history of {aggregateType}/{aggregateID}.
func (h *AuditHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r, 50)

	events, err := h.events.GetByAggregate(r.Context(), chi.URLParam(r, "aggregateType"), chi.URLParam(r, "aggregateID"), limit, offset)
	if err != nil {
		respondError(w, r, "failed to list events", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EventsFromDomain(events))
}
