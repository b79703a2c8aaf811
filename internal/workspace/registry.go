// Package workspace keeps the per-operator state of the console: the held
// credential and the two dependent selections (company to departments,
// department to staff). Workspaces live in memory, are rebuilt from the
// session store when a request arrives for one this process has not seen,
// and are dropped once the store no longer holds their session.
package workspace

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-console/internal/apiclient"
	"github.com/spec-kit/staff-console/internal/domain"
	"github.com/spec-kit/staff-console/internal/events"
	"github.com/spec-kit/staff-console/internal/identity"
	"github.com/spec-kit/staff-console/internal/repository"
	"github.com/spec-kit/staff-console/internal/selection"
	"github.com/spec-kit/staff-console/internal/session"
)

// ErrNoWorkspace is returned for unknown or expired session ids.
var ErrNoWorkspace = errors.New("no workspace for session")

// Loader fetches entities for a selection.
type Loader func(ctx context.Context, id string) ([]identity.Entity, error)

// Loaders supplies the fetchers behind the dependent selections.
type Loaders struct {
	DepartmentsByCompany Loader
	StaffByDepartment    Loader
}

// Workspace is one signed-in operator.
type Workspace struct {
	ID          string
	Session     *session.Session
	Departments *selection.Cache[identity.Entity]
	Staff       *selection.Cache[identity.Entity]

	mu       sync.Mutex
	lastSeen time.Time
}

// Context attaches the workspace credential to ctx for upstream calls.
func (w *Workspace) Context(ctx context.Context) context.Context {
	return apiclient.WithCredentials(ctx, w.Session)
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

// Options configures a Registry.
type Options struct {
	TTL          time.Duration
	FetchTimeout time.Duration
	Logger       *zap.Logger
}

// Registry owns every live workspace.
type Registry struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace
	store      repository.SessionRepository
	loaders    Loaders
	ttl        time.Duration
	timeout    time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewRegistry constructs a registry backed by store.
func NewRegistry(store repository.SessionRepository, loaders Loaders, opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		workspaces: make(map[string]*Workspace),
		store:      store,
		loaders:    loaders,
		ttl:        opts.TTL,
		timeout:    opts.FetchTimeout,
		logger:     logger,
		now:        time.Now,
	}
}

// Open persists cred under a new session id and returns its workspace.
func (r *Registry) Open(ctx context.Context, cred domain.Credential) (*Workspace, error) {
	id := uuid.NewString()
	if err := r.store.Save(ctx, id, cred, r.ttl); err != nil {
		return nil, err
	}
	ws := r.build(id, cred)
	r.mu.Lock()
	r.workspaces[id] = ws
	r.mu.Unlock()
	r.logger.Info("workspace opened", zap.String("session_id", id))
	return ws, nil
}

// Get returns the workspace for id, restoring it from the store if needed.
// The store is consulted on every call so that a sign-out on any replica
// ends the workspace here too.
func (r *Registry) Get(ctx context.Context, id string) (*Workspace, error) {
	if id == "" {
		return nil, ErrNoWorkspace
	}

	cred, err := r.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			r.evict(id)
			return nil, ErrNoWorkspace
		}
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ws, ok := r.workspaces[id]; ok {
		ws.touch(r.now())
		return ws, nil
	}
	ws := r.build(id, cred)
	r.workspaces[id] = ws
	r.logger.Debug("workspace restored", zap.String("session_id", id))
	return ws, nil
}

// evict forgets a workspace whose stored session is gone.
func (r *Registry) evict(id string) {
	r.mu.Lock()
	ws, ok := r.workspaces[id]
	delete(r.workspaces, id)
	r.mu.Unlock()
	if ok {
		ws.Session.Logout()
		ws.Departments.Clear()
		ws.Staff.Clear()
		r.logger.Info("workspace ended elsewhere", zap.String("session_id", id))
	}
}

// Close signs the workspace out and forgets it.
func (r *Registry) Close(ctx context.Context, id string) error {
	r.evict(id)
	return r.store.Delete(ctx, id)
}

// Sweep drops in-memory workspaces idle for longer than the TTL. The stored
// credential is left to the store's own expiry.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for id, ws := range r.workspaces {
		if ws.idleSince().Before(cutoff) {
			ws.Departments.Clear()
			ws.Staff.Clear()
			delete(r.workspaces, id)
			dropped++
		}
	}
	return dropped
}

// Len reports the number of in-memory workspaces.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workspaces)
}

// Ping checks the session store.
func (r *Registry) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// HandleEvent refreshes selections affected by a change made in any workspace.
func (r *Registry) HandleEvent(ctx context.Context, event events.Event) error {
	r.mu.RLock()
	all := make([]*Workspace, 0, len(r.workspaces))
	for _, ws := range r.workspaces {
		all = append(all, ws)
	}
	r.mu.RUnlock()

	for _, ws := range all {
		switch event.Type {
		case events.EventDepartmentsCreated:
			if p, ok := event.Payload.(events.DepartmentsCreatedPayload); ok && ws.Departments.Selection() == p.CompanyID {
				ws.Departments.Refresh(ws.Context(ctx))
			}
		case events.EventCompanyDeleted:
			if p, ok := event.Payload.(events.OrganizationPayload); ok && ws.Departments.Selection() == p.ID {
				ws.Departments.Clear()
				ws.Staff.Clear()
			}
		case events.EventStaffCreated, events.EventStaffUpdated:
			p, _ := event.Payload.(events.StaffPayload)
			sel := ws.Staff.Selection()
			if sel != "" && (p.DepartmentID == "" || p.DepartmentID == sel) {
				ws.Staff.Refresh(ws.Context(ctx))
			}
		}
	}
	return nil
}

func (r *Registry) build(id string, cred domain.Credential) *Workspace {
	ws := &Workspace{ID: id, Session: session.Restore(cred), lastSeen: r.now()}
	ws.Departments = selection.New(r.scoped(ws, r.loaders.DepartmentsByCompany), selection.Options{
		Name: "company-departments", Timeout: r.timeout, Logger: r.logger,
	})
	ws.Staff = selection.New(r.scoped(ws, r.loaders.StaffByDepartment), selection.Options{
		Name: "department-staff", Timeout: r.timeout, Logger: r.logger,
	})
	return ws
}

// scoped binds a loader to the workspace credential.
func (r *Registry) scoped(ws *Workspace, load Loader) selection.Fetcher[identity.Entity] {
	return func(ctx context.Context, id string) ([]identity.Entity, error) {
		if load == nil {
			return nil, nil
		}
		return load(ws.Context(ctx), id)
	}
}
