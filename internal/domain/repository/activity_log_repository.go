package repository

import (
	"context"

	"safecommute/internal/common"
	"safecommute/internal/domain/model"
	"safecommute/internal/platform/docstore"
)

// ActivityLogRepository appends audit records under activity_logs. Entries
// are never read back by the service; they exist for operators.
type ActivityLogRepository interface {
	Append(ctx context.Context, entry *model.ActivityLogEntry) error
}

type docActivityLogRepository struct {
	store docstore.Store
}

func NewDocActivityLogRepository(store docstore.Store) ActivityLogRepository {
	return &docActivityLogRepository{store: store}
}

func (r *docActivityLogRepository) Append(ctx context.Context, entry *model.ActivityLogEntry) error {
	if _, err := r.store.Push(ctx, "activity_logs", entry); err != nil {
		return common.Errorf("docActivityLogRepository.Append: %w", err)
	}
	return nil
}
