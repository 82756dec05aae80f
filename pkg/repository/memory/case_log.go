package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/modsec-lab/aegis/pkg/domain/model"
	"github.com/modsec-lab/aegis/pkg/domain/types"
)

type caseLogRepository struct {
	mu   sync.RWMutex
	logs map[string]*model.CaseLog
}

func newCaseLogRepository() *caseLogRepository {
	return &caseLogRepository{
		logs: make(map[string]*model.CaseLog),
	}
}

func copyCaseLog(l *model.CaseLog) *model.CaseLog {
	copied := *l
	copied.Actions = append([]types.Action(nil), l.Actions...)
	return &copied
}

func (r *caseLogRepository) Put(ctx context.Context, log *model.CaseLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logs[log.ID] = copyCaseLog(log)
	return nil
}

func (r *caseLogRepository) List(ctx context.Context, limit int) ([]*model.CaseLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	logs := make([]*model.CaseLog, 0, len(r.logs))
	for _, l := range r.logs {
		logs = append(logs, copyCaseLog(l))
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].CreatedAt.After(logs[j].CreatedAt)
	})

	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}
