package interfaces

import (
	"context"

	"github.com/modsec-lab/aegis/pkg/domain/model"
)

// CaseLogRepository defines the interface for the moderation case archive
type CaseLogRepository interface {
	// Put saves a completed case record (upsert by ID)
	Put(ctx context.Context, log *model.CaseLog) error

	// List retrieves archived cases in descending creation order,
	// up to limit entries. limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]*model.CaseLog, error)
}
