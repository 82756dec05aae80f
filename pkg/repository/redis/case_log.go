package redis

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/modsec-lab/aegis/pkg/domain/model"
	"github.com/redis/go-redis/v9"
)

const (
	caseLogIndexKey  = "case_logs"
	caseLogKeyPrefix = "case_log:"
)

type caseLogRepository struct {
	client *redis.Client
}

func (r *caseLogRepository) Put(ctx context.Context, log *model.CaseLog) error {
	data, err := json.Marshal(log)
	if err != nil {
		return goerr.Wrap(err, "failed to encode case log", goerr.V("id", log.ID))
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, caseLogKeyPrefix+log.ID, data, 0)
	pipe.ZAdd(ctx, caseLogIndexKey, redis.Z{
		Score:  float64(log.CreatedAt.UnixNano()),
		Member: log.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return goerr.Wrap(err, "failed to put case log", goerr.V("id", log.ID))
	}
	return nil
}

func (r *caseLogRepository) List(ctx context.Context, limit int) ([]*model.CaseLog, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	ids, err := r.client.ZRevRange(ctx, caseLogIndexKey, 0, stop).Result()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list case log index")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, caseLogKeyPrefix+id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch case logs")
	}

	logs := make([]*model.CaseLog, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// index entry without a body, skip
			continue
		}
		var log model.CaseLog
		if err := json.Unmarshal([]byte(s), &log); err != nil {
			return nil, goerr.Wrap(err, "failed to decode case log", goerr.V("id", ids[i]))
		}
		logs = append(logs, &log)
	}

	return logs, nil
}
