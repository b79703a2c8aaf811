package workspace

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/staff-console/internal/apiclient"
	"github.com/spec-kit/staff-console/internal/domain"
	"github.com/spec-kit/staff-console/internal/envelope"
	"github.com/spec-kit/staff-console/internal/events"
	"github.com/spec-kit/staff-console/internal/identity"
	"github.com/spec-kit/staff-console/internal/repository"
	"github.com/spec-kit/staff-console/internal/selection"
)

type tokenProbe struct {
	mu     sync.Mutex
	tokens []string
	calls  map[string]int
}

func (p *tokenProbe) loader(kind envelope.Kind) Loader {
	return func(ctx context.Context, id string) ([]identity.Entity, error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.calls == nil {
			p.calls = map[string]int{}
		}
		p.calls[id]++
		if src, ok := apiclient.CredentialsFrom(ctx); ok {
			p.tokens = append(p.tokens, src.Token())
		}
		return identity.Assign(kind, []envelope.Record{{"_id": id + "-x"}}), nil
	}
}

func (p *tokenProbe) count(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[id]
}

func newRegistry(t *testing.T, probe *tokenProbe) (*Registry, repository.SessionRepository) {
	t.Helper()
	store := repository.NewMemorySessionRepository()
	reg := NewRegistry(store, Loaders{
		DepartmentsByCompany: probe.loader(envelope.Department),
		StaffByDepartment:    probe.loader(envelope.Staff),
	}, Options{TTL: time.Hour, FetchTimeout: time.Second})
	return reg, store
}

func wait(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, selection.Wait(ctx, ch))
}

func TestOpenPersistsAndScopesCredential(t *testing.T) {
	probe := &tokenProbe{}
	reg, store := newRegistry(t, probe)
	ctx := context.Background()

	ws, err := reg.Open(ctx, domain.Credential{Token: "abc123", User: domain.UserProfile{"name": "Ada"}})
	require.NoError(t, err)

	stored, err := store.Load(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, "abc123", stored.Token)

	wait(t, ws.Departments.Select(ctx, "c1"))
	snap := ws.Departments.Snapshot()
	assert.Equal(t, selection.StateReady, snap.State)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, []string{"abc123"}, probe.tokens)
}

func TestGetRestoresFromStore(t *testing.T) {
	reg, store := newRegistry(t, &tokenProbe{})
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "s-1", domain.Credential{Token: "t"}, time.Hour))

	ws, err := reg.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "t", ws.Session.Token())
	assert.Equal(t, 1, reg.Len())

	again, err := reg.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Same(t, ws, again)

	_, err = reg.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNoWorkspace)
	_, err = reg.Get(ctx, "")
	assert.ErrorIs(t, err, ErrNoWorkspace)
}

func TestCloseLogsOutAndForgets(t *testing.T) {
	reg, store := newRegistry(t, &tokenProbe{})
	ctx := context.Background()
	ws, err := reg.Open(ctx, domain.Credential{Token: "t"})
	require.NoError(t, err)

	require.NoError(t, reg.Close(ctx, ws.ID))
	assert.False(t, ws.Session.Authenticated())
	assert.Equal(t, 0, reg.Len())
	_, err = store.Load(ctx, ws.ID)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestCloseOnOneRegistryEndsWorkspaceOnAnother(t *testing.T) {
	store := repository.NewMemorySessionRepository()
	opts := Options{TTL: time.Hour, FetchTimeout: time.Second}
	first := NewRegistry(store, Loaders{}, opts)
	second := NewRegistry(store, Loaders{}, opts)
	ctx := context.Background()

	ws, err := first.Open(ctx, domain.Credential{Token: "abc123"})
	require.NoError(t, err)
	restored, err := second.Get(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, "abc123", restored.Session.Token())

	require.NoError(t, first.Close(ctx, ws.ID))

	_, err = second.Get(ctx, ws.ID)
	assert.ErrorIs(t, err, ErrNoWorkspace)
	assert.False(t, restored.Session.Authenticated())
	assert.Empty(t, restored.Session.Token())
	assert.Equal(t, 0, second.Len())
}

func TestSweepDropsIdleWorkspaces(t *testing.T) {
	reg, _ := newRegistry(t, &tokenProbe{})
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	_, err := reg.Open(context.Background(), domain.Credential{Token: "t"})
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Sweep())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, reg.Sweep())
	assert.Equal(t, 0, reg.Len())
}

func TestDepartmentsCreatedRefreshesMatchingCompany(t *testing.T) {
	probe := &tokenProbe{}
	reg, _ := newRegistry(t, probe)
	ctx := context.Background()
	ws, err := reg.Open(ctx, domain.Credential{Token: "t"})
	require.NoError(t, err)
	wait(t, ws.Departments.Select(ctx, "c1"))

	require.NoError(t, reg.HandleEvent(ctx, events.New(events.EventDepartmentsCreated, events.Actor{}, events.DepartmentsCreatedPayload{CompanyID: "c2"})))
	assert.Equal(t, 1, probe.count("c1"))

	require.NoError(t, reg.HandleEvent(ctx, events.New(events.EventDepartmentsCreated, events.Actor{}, events.DepartmentsCreatedPayload{CompanyID: "c1"})))
	require.Eventually(t, func() bool { return probe.count("c1") == 2 }, time.Second, 5*time.Millisecond)
}

func TestCompanyDeletedClearsSelections(t *testing.T) {
	reg, _ := newRegistry(t, &tokenProbe{})
	ctx := context.Background()
	ws, err := reg.Open(ctx, domain.Credential{Token: "t"})
	require.NoError(t, err)
	wait(t, ws.Departments.Select(ctx, "c1"))
	wait(t, ws.Staff.Select(ctx, "d1"))

	require.NoError(t, reg.HandleEvent(ctx, events.New(events.EventCompanyDeleted, events.Actor{}, events.OrganizationPayload{ID: "c1"})))
	assert.Equal(t, selection.StateEmpty, ws.Departments.Snapshot().State)
	assert.Equal(t, selection.StateEmpty, ws.Staff.Snapshot().State)
}
