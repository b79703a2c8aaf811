package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-console/internal/apiclient"
	"github.com/spec-kit/staff-console/internal/auth"
	"github.com/spec-kit/staff-console/internal/domain"
	"github.com/spec-kit/staff-console/internal/events"
	"github.com/spec-kit/staff-console/internal/identity"
	"github.com/spec-kit/staff-console/internal/repository"
	"github.com/spec-kit/staff-console/internal/workspace"
	apperrors "github.com/spec-kit/staff-console/pkg/util/errorutil"
)

// Workspaces opens and closes operator workspaces.
type Workspaces interface {
	Open(ctx context.Context, cred domain.Credential) (*workspace.Workspace, error)
	Close(ctx context.Context, id string) error
}

// AuthService coordinates sign-in and sign-out.
type AuthService struct {
	users      repository.UserRepository
	workspaces Workspaces
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Workspaces Workspaces
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// LoginResult is what a successful sign-in hands back to the console.
type LoginResult struct {
	SessionID string
	Token     string
	ExpiresAt time.Time
	User      domain.UserProfile
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		workspaces: deps.Workspaces,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
	}
}

// Login exchanges email and password for a remote API token and opens a workspace holding it.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	cred, err := s.users.Login(ctx, email, password)
	if err != nil {
		return nil, loginError(err)
	}

	ws, err := s.workspaces.Open(ctx, cred)
	if err != nil {
		return nil, err
	}

	token, exp, err := s.tokens.GenerateToken(ws.ID, cred.User.ID(), cred.User.Name(), cred.User.Role())
	if err != nil {
		_ = s.workspaces.Close(ctx, ws.ID)
		return nil, err
	}

	s.publish(ctx, events.New(events.EventSignedIn, events.Actor{
		SessionID: ws.ID, UserID: cred.User.ID(), Name: cred.User.Name(),
	}, nil))

	return &LoginResult{SessionID: ws.ID, Token: token, ExpiresAt: exp, User: ws.Session.User()}, nil
}

// Logout clears the held credential and drops the workspace.
func (s *AuthService) Logout(ctx context.Context, actor events.Actor) error {
	if err := s.workspaces.Close(ctx, actor.SessionID); err != nil {
		return err
	}
	s.publish(ctx, events.New(events.EventSignedOut, actor, nil))
	return nil
}

// Profile returns the signed-in operator as the remote API knows them.
func (s *AuthService) Profile(ctx context.Context) (identity.Entity, error) {
	me, err := s.users.Me(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return identity.Entity{}, apperrors.NewNotFound("profile", nil)
	}
	return me, err
}

// Roles lists the roles offered by the remote API.
func (s *AuthService) Roles(ctx context.Context) ([]identity.Entity, error) {
	return s.users.Roles(ctx)
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, s.logger, event)
}

// loginError turns a failed login into the message shown on the sign-in form.
func loginError(err error) error {
	if errors.Is(err, repository.ErrMissingToken) {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	apiErr, ok := apiclient.AsError(err)
	if !ok {
		return err
	}
	switch {
	case apiErr.Status == http.StatusNotFound:
		return apperrors.NewUnauthorized("login endpoint not found")
	case apiErr.Status >= 400 && apiErr.Status < 500:
		if apiErr.Reported() {
			return apperrors.NewUnauthorized(apiErr.Message)
		}
		return apperrors.NewUnauthorized("invalid credentials")
	}
	return err
}
