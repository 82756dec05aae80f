package interfaces

import (
	"context"

	"github.com/modsec-lab/aegis/pkg/domain/model"
	"github.com/modsec-lab/aegis/pkg/domain/types"
)

// StrikeRepository defines the interface for the strike/ban ledger
type StrikeRepository interface {
	// Exists reports whether a record is present for the user
	Exists(ctx context.Context, userID types.UserID) (bool, error)

	// Get retrieves the record for the user.
	// Returns ErrStrikeNotFound when no record exists.
	Get(ctx context.Context, userID types.UserID) (*model.StrikeRecord, error)

	// Insert creates a new record. Fails if one already exists.
	Insert(ctx context.Context, record *model.StrikeRecord) error

	// Update replaces an existing record. Fails if none exists.
	Update(ctx context.Context, record *model.StrikeRecord) error
}
