package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/omteam/fitagent/server/internal/agent/model"
	"github.com/omteam/fitagent/server/internal/agent/personalize"
	errx "github.com/omteam/fitagent/server/internal/core/error"
	logx "github.com/omteam/fitagent/server/pkg/logger"
)

// RedisProfileRepository stores personalization records as JSON blobs with a
// native TTL, so the 14-day lazy-expiry contract of the in-memory store is
// preserved by Redis itself. Mutation and summary semantics are shared with
// the memory store through the personalize helpers.
type RedisProfileRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisProfileRepository(rdb redis.Cmdable) *RedisProfileRepository {
	return &RedisProfileRepository{rdb: rdb, ttl: model.ProfileTTL}
}

func (r *RedisProfileRepository) profileKey(userID string) string {
	return fmt.Sprintf("profile:%s:context", userID)
}

// Update implements model.ProfileRepository. An empty userID is a no-op.
func (r *RedisProfileRepository) Update(ctx context.Context, userID string, payload model.ProfilePayload) error {
	if userID == "" {
		return nil
	}

	now := time.Now()
	rec, err := r.load(ctx, userID, now)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = personalize.NewRecord(now)
	}

	personalize.ApplyUpdate(rec, payload, now)

	b, err := json.Marshal(rec)
	if err != nil {
		logx.Error().Err(err).Str("user_id", userID).Msg("failed to marshal profile record")
		return fmt.Errorf("marshal profile record: %w", err)
	}

	key := r.profileKey(userID)
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to store profile record")
		return errx.WrapRedis(err)
	}
	return nil
}

// Summarize implements model.ProfileRepository. Returns an empty string when
// the user is unknown or the record has expired.
func (r *RedisProfileRepository) Summarize(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", nil
	}

	rec, err := r.load(ctx, userID, time.Now())
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", nil
	}
	return personalize.RenderSummary(rec), nil
}

// load fetches and decodes the record, treating a missing key or an expired
// timestamp as absent. The timestamp check is a belt over Redis's own TTL in
// case the record was written by a store without native expiry.
func (r *RedisProfileRepository) load(ctx context.Context, userID string, now time.Time) (*model.ProfileRecord, error) {
	key := r.profileKey(userID)

	raw, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load profile record")
		return nil, errx.WrapRedis(err)
	}

	var rec model.ProfileRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to unmarshal profile record")
		return nil, fmt.Errorf("unmarshal profile record: %w", err)
	}
	if personalize.Expired(&rec, now) {
		return nil, nil
	}
	return &rec, nil
}

var _ model.ProfileRepository = (*RedisProfileRepository)(nil)
