// Package audit exposes the read side of the activity log.
package audit

import (
	"context"
	"fmt"

	"github.com/gastoserp/backend/internal/domain/audit"
	"github.com/google/uuid"
)

// ActivityService serves the activity screen: who did what to which
// record, in commit order
type ActivityService struct {
	repo audit.Repository
}

// NewActivityService creates a new ActivityService
func NewActivityService(repo audit.Repository) *ActivityService {
	return &ActivityService{repo: repo}
}

// GetEntityActivity returns the activity lines recorded for one entity
func (s *ActivityService) GetEntityActivity(ctx context.Context, entityTable string, entityID uuid.UUID) ([]audit.ActivityEntry, error) {
	entries, err := s.repo.FindByEntity(ctx, entityTable, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity entries: %w", err)
	}
	return entries, nil
}
