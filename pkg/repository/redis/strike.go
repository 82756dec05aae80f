package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/modsec-lab/aegis/pkg/domain/interfaces"
	"github.com/modsec-lab/aegis/pkg/domain/model"
	"github.com/modsec-lab/aegis/pkg/domain/types"
	"github.com/redis/go-redis/v9"
)

const strikeKeyPrefix = "strike:"

type strikeRepository struct {
	client *redis.Client
}

func strikeKey(userID types.UserID) string {
	return strikeKeyPrefix + string(userID)
}

func (r *strikeRepository) Exists(ctx context.Context, userID types.UserID) (bool, error) {
	n, err := r.client.Exists(ctx, strikeKey(userID)).Result()
	if err != nil {
		return false, goerr.Wrap(err, "failed to check strike record", goerr.V("user_id", userID))
	}
	return n > 0, nil
}

func (r *strikeRepository) Get(ctx context.Context, userID types.UserID) (*model.StrikeRecord, error) {
	data, err := r.client.Get(ctx, strikeKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, goerr.Wrap(interfaces.ErrStrikeNotFound, "strike record not found", goerr.V("user_id", userID))
		}
		return nil, goerr.Wrap(err, "failed to get strike record", goerr.V("user_id", userID))
	}

	var rec model.StrikeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, goerr.Wrap(err, "failed to decode strike record", goerr.V("user_id", userID))
	}

	return &rec, nil
}

func (r *strikeRepository) Insert(ctx context.Context, rec *model.StrikeRecord) error {
	rec.UpdatedAt = time.Now()
	data, err := json.Marshal(rec)
	if err != nil {
		return goerr.Wrap(err, "failed to encode strike record", goerr.V("user_id", rec.UserID))
	}

	ok, err := r.client.SetNX(ctx, strikeKey(rec.UserID), data, 0).Result()
	if err != nil {
		return goerr.Wrap(err, "failed to insert strike record", goerr.V("user_id", rec.UserID))
	}
	if !ok {
		return goerr.New("strike record already exists", goerr.V("user_id", rec.UserID))
	}
	return nil
}

func (r *strikeRepository) Update(ctx context.Context, rec *model.StrikeRecord) error {
	rec.UpdatedAt = time.Now()
	data, err := json.Marshal(rec)
	if err != nil {
		return goerr.Wrap(err, "failed to encode strike record", goerr.V("user_id", rec.UserID))
	}

	ok, err := r.client.SetXX(ctx, strikeKey(rec.UserID), data, 0).Result()
	if err != nil {
		return goerr.Wrap(err, "failed to update strike record", goerr.V("user_id", rec.UserID))
	}
	if !ok {
		return goerr.Wrap(interfaces.ErrStrikeNotFound, "strike record not found", goerr.V("user_id", rec.UserID))
	}
	return nil
}
