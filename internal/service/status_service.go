package service

import (
	"context"

	"github.com/securohelp/case-service/internal/domain"
	"github.com/securohelp/case-service/internal/repository"
)

// StatusService exposes the status catalog read operations.
type StatusService struct {
	store repository.Store
}

// NewStatusService constructs the service.
func NewStatusService(store repository.Store) *StatusService {
	return &StatusService{store: store}
}

// ListActive returns selectable statuses ordered by sort order.
func (s *StatusService) ListActive(ctx context.Context) ([]domain.CaseStatus, error) {
	statuses, err := s.store.Statuses().ListActive(ctx)
	if err != nil {
		return nil, persistenceError(err)
	}
	return statuses, nil
}

// GetByCode resolves a status by its symbolic code.
func (s *StatusService) GetByCode(ctx context.Context, code domain.StatusCode) (*domain.CaseStatus, error) {
	status, err := s.store.Statuses().GetByCode(ctx, code)
	if err != nil {
		return nil, lookupError(err, "status", map[string]any{"code": code})
	}
	return status, nil
}
