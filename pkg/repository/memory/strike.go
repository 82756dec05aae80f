package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/modsec-lab/aegis/pkg/domain/interfaces"
	"github.com/modsec-lab/aegis/pkg/domain/model"
	"github.com/modsec-lab/aegis/pkg/domain/types"
)

type strikeRepository struct {
	mu      sync.RWMutex
	records map[types.UserID]*model.StrikeRecord
}

func newStrikeRepository() *strikeRepository {
	return &strikeRepository{
		records: make(map[types.UserID]*model.StrikeRecord),
	}
}

func copyStrike(s *model.StrikeRecord) *model.StrikeRecord {
	copied := *s
	return &copied
}

func (r *strikeRepository) Exists(ctx context.Context, userID types.UserID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.records[userID]
	return ok, nil
}

func (r *strikeRepository) Get(ctx context.Context, userID types.UserID) (*model.StrikeRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[userID]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrStrikeNotFound, "no strike record", goerr.V("user_id", userID))
	}
	return copyStrike(record), nil
}

func (r *strikeRepository) Insert(ctx context.Context, record *model.StrikeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[record.UserID]; ok {
		return goerr.New("strike record already exists", goerr.V("user_id", record.UserID))
	}

	stored := copyStrike(record)
	stored.UpdatedAt = time.Now().UTC()
	r.records[record.UserID] = stored
	return nil
}

func (r *strikeRepository) Update(ctx context.Context, record *model.StrikeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[record.UserID]; !ok {
		return goerr.Wrap(interfaces.ErrStrikeNotFound, "no strike record to update", goerr.V("user_id", record.UserID))
	}

	stored := copyStrike(record)
	stored.UpdatedAt = time.Now().UTC()
	r.records[record.UserID] = stored
	return nil
}
