package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/staff-console/internal/domain"
)

// PgxPool is the subset of pgxpool.Pool used by the postgres session store.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

type postgresSessionRepository struct {
	pool PgxPool
}

// NewPostgresSessionRepository stores sessions in the console_sessions table.
func NewPostgresSessionRepository(pool PgxPool) SessionRepository {
	return &postgresSessionRepository{pool: pool}
}

func (r *postgresSessionRepository) Save(ctx context.Context, id string, cred domain.Credential, ttl time.Duration) error {
	const query = `
        INSERT INTO console_sessions (id, token, user_blob, expires_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (id) DO UPDATE
        SET token = EXCLUDED.token, user_blob = EXCLUDED.user_blob, expires_at = EXCLUDED.expires_at, updated_at = NOW()`

	user, err := json.Marshal(cred.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	var expiresAt *time.Time
	if ttl > 0 {
		at := time.Now().Add(ttl).UTC()
		expiresAt = &at
	}
	_, err = r.pool.Exec(ctx, query, id, cred.Token, user, expiresAt)
	return err
}

func (r *postgresSessionRepository) Load(ctx context.Context, id string) (domain.Credential, error) {
	const query = `
        SELECT token, user_blob
        FROM console_sessions
        WHERE id = $1 AND (expires_at IS NULL OR expires_at > NOW())`

	var (
		cred domain.Credential
		user []byte
	)
	if err := r.pool.QueryRow(ctx, query, id).Scan(&cred.Token, &user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Credential{}, ErrSessionNotFound
		}
		return domain.Credential{}, err
	}
	if len(user) > 0 {
		if err := json.Unmarshal(user, &cred.User); err != nil {
			return domain.Credential{}, fmt.Errorf("decode user: %w", err)
		}
	}
	return cred, nil
}

func (r *postgresSessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM console_sessions WHERE id = $1`, id)
	return err
}

func (r *postgresSessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM console_sessions WHERE expires_at IS NOT NULL AND expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *postgresSessionRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
