// Package redis provides a Redis-backed Repository. Strike records live
// at string keys and case logs in a sorted set scored by creation time,
// so the archive can be read newest-first without a secondary index.
package redis

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/modsec-lab/aegis/pkg/domain/interfaces"
	"github.com/redis/go-redis/v9"
)

type Redis struct {
	client  *redis.Client
	strike  *strikeRepository
	caseLog *caseLogRepository
}

var _ interfaces.Repository = &Redis{}

func New(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", addr), goerr.V("db", db))
	}

	return &Redis{
		client:  client,
		strike:  &strikeRepository{client: client},
		caseLog: &caseLogRepository{client: client},
	}, nil
}

func (r *Redis) Strike() interfaces.StrikeRepository {
	return r.strike
}

func (r *Redis) CaseLog() interfaces.CaseLogRepository {
	return r.caseLog
}

func (r *Redis) Close() error {
	return r.client.Close()
}
