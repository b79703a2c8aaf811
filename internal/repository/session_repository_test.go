package repository

import (
	"context"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/staff-console/internal/domain"
)

func TestMemorySessionRoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := newMemorySessionRepository(func() time.Time { return now })
	ctx := context.Background()

	cred := domain.Credential{Token: "abc123", User: domain.UserProfile{"name": "Ada"}}
	require.NoError(t, repo.Save(ctx, "s1", cred, time.Hour))

	got, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, cred, got)

	now = now.Add(2 * time.Hour)
	_, err = repo.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionDeleteAndPurge(t *testing.T) {
	now := time.Now()
	repo := newMemorySessionRepository(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "short", domain.Credential{Token: "a"}, time.Minute))
	require.NoError(t, repo.Save(ctx, "long", domain.Credential{Token: "b"}, time.Hour))
	require.NoError(t, repo.Save(ctx, "gone", domain.Credential{Token: "c"}, 0))
	require.NoError(t, repo.Delete(ctx, "gone"))

	now = now.Add(10 * time.Minute)
	purged, err := repo.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = repo.Load(ctx, "long")
	assert.NoError(t, err)
	_, err = repo.Load(ctx, "gone")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestPostgresSessionSave(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO console_sessions")).
		WithArgs("s1", "abc123", []byte(`{"name":"Ada"}`), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewPostgresSessionRepository(mock)
	err = repo.Save(context.Background(), "s1", domain.Credential{Token: "abc123", User: domain.UserProfile{"name": "Ada"}}, time.Hour)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSessionLoad(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT token, user_blob")).
		WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"token", "user_blob"}).AddRow("abc123", []byte(`{"name":"Ada"}`)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT token, user_blob")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresSessionRepository(mock)
	cred, err := repo.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "abc123", cred.Token)
	assert.Equal(t, "Ada", cred.User.Name())

	_, err = repo.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSessionDeleteAndPurge(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM console_sessions WHERE id = $1")).
		WithArgs("s1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM console_sessions WHERE expires_at IS NOT NULL")).
		WillReturnResult(pgconn.NewCommandTag("DELETE 3"))

	repo := NewPostgresSessionRepository(mock)
	require.NoError(t, repo.Delete(context.Background(), "s1"))
	purged, err := repo.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), purged)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Runs against a real redis when REDIS_TEST_ADDR is set.
func TestRedisSessionRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	repo := NewRedisSessionRepository(client, "staff-console-test:session")
	cred := domain.Credential{Token: "abc123", User: domain.UserProfile{"name": "Ada"}}

	require.NoError(t, repo.Save(ctx, "s1", cred, time.Minute))
	token, err := client.Get(ctx, "staff-console-test:session:s1:token").Result()
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	got, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.User.Name())

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
