package audit

import (
	"context"
	"fmt"

	"adscreen-service/internal/domain/audit"
	"adscreen-service/internal/repository/postgres"
)

type EntryLister interface {
	List(ctx context.Context, filters *audit.EntryFilters) ([]audit.Entry, int64, error)
}

// AuditService exposes the append-only audit trail to admins.
type AuditService struct {
	entries EntryLister
}

func NewAuditService(entries EntryLister) *AuditService {
	return &AuditService{entries: entries}
}

func (s *AuditService) List(ctx context.Context, filters *audit.EntryFilters) (*audit.EntryListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 50
	}

	entries, total, err := s.entries.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	if entries == nil {
		entries = []audit.Entry{}
	}

	return &audit.EntryListResponse{
		Entries:    entries,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: postgres.TotalPages(total, filters.PageSize),
	}, nil
}
