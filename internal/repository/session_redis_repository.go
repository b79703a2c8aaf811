package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/staff-console/internal/domain"
)

type redisSessionRepository struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisSessionRepository stores each session as two keys,
// <prefix>:<id>:token and <prefix>:<id>:user, sharing one TTL.
func NewRedisSessionRepository(client redis.UniversalClient, prefix string) SessionRepository {
	return &redisSessionRepository{client: client, prefix: prefix}
}

func (r *redisSessionRepository) key(id, field string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, id, field)
}

func (r *redisSessionRepository) Save(ctx context.Context, id string, cred domain.Credential, ttl time.Duration) error {
	user, err := json.Marshal(cred.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(id, "token"), cred.Token, ttl)
	pipe.Set(ctx, r.key(id, "user"), user, ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisSessionRepository) Load(ctx context.Context, id string) (domain.Credential, error) {
	vals, err := r.client.MGet(ctx, r.key(id, "token"), r.key(id, "user")).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Credential{}, ErrSessionNotFound
		}
		return domain.Credential{}, err
	}
	token, _ := vals[0].(string)
	if token == "" {
		return domain.Credential{}, ErrSessionNotFound
	}
	cred := domain.Credential{Token: token}
	if raw, ok := vals[1].(string); ok && raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &cred.User); err != nil {
			return domain.Credential{}, fmt.Errorf("decode user: %w", err)
		}
	}
	return cred, nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id, "token"), r.key(id, "user")).Err()
}

// PurgeExpired is a no-op; redis expires keys itself.
func (r *redisSessionRepository) PurgeExpired(context.Context) (int64, error) {
	return 0, nil
}

func (r *redisSessionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
