package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"esl-toolkit/api/internal/gamify"
)

const (
	redisKeyPrefix = "esl:awards:"
	maxTxRetries   = 5
)

// Redis stores each session as a JSON AwardState with a TTL. Mutations run
// in WATCH/MULTI transactions and retry when another writer got there first.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

func redisKey(id string) string { return redisKeyPrefix + id }

func (s *Redis) Create(ctx context.Context, ext gamify.Extraction) (string, gamify.AwardState, error) {
	id := uuid.NewString()
	st := gamify.NewAwards(ext).State()
	b, err := json.Marshal(st)
	if err != nil {
		return "", gamify.AwardState{}, fmt.Errorf("marshal award state: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, redisKey(id), b, s.ttl).Result()
	if err != nil {
		return "", gamify.AwardState{}, fmt.Errorf("redis create %s: %w", id, err)
	}
	if !ok {
		return "", gamify.AwardState{}, fmt.Errorf("redis create %s: id collision", id)
	}
	return id, st, nil
}

func (s *Redis) Get(ctx context.Context, id string) (gamify.AwardState, error) {
	b, err := s.rdb.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return gamify.AwardState{}, ErrNotFound
	}
	if err != nil {
		return gamify.AwardState{}, fmt.Errorf("redis get %s: %w", id, err)
	}
	return decodeState(b)
}

func (s *Redis) Toggle(ctx context.Context, id, category string) (gamify.AwardState, bool, error) {
	return s.mutate(ctx, id, func(a *gamify.Awards) bool { return a.Toggle(category) })
}

func (s *Redis) Finalize(ctx context.Context, id string) (gamify.AwardState, error) {
	st, _, err := s.mutate(ctx, id, func(a *gamify.Awards) bool {
		if a.Finalized() {
			return false
		}
		a.Finalize()
		return true
	})
	return st, err
}

func (s *Redis) Delete(ctx context.Context, id string) error {
	n, err := s.rdb.Del(ctx, redisKey(id)).Result()
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Redis) mutate(ctx context.Context, id string, fn func(*gamify.Awards) bool) (gamify.AwardState, bool, error) {
	key := redisKey(id)
	var (
		out     gamify.AwardState
		changed bool
	)
	txf := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		st, err := decodeState(b)
		if err != nil {
			return err
		}
		a := gamify.Restore(st)
		changed = fn(a)
		out = a.State()
		if !changed {
			return nil
		}
		data, err := json.Marshal(out)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, redis.KeepTTL)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return out, changed, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, ErrNotFound):
			return gamify.AwardState{}, false, ErrNotFound
		default:
			return gamify.AwardState{}, false, fmt.Errorf("redis update %s: %w", id, err)
		}
	}
	return gamify.AwardState{}, false, fmt.Errorf("redis update %s: too much contention", id)
}

func decodeState(b []byte) (gamify.AwardState, error) {
	var st gamify.AwardState
	if err := json.Unmarshal(b, &st); err != nil {
		return gamify.AwardState{}, fmt.Errorf("decode award state: %w", err)
	}
	return st, nil
}
