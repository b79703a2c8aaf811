package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-console/internal/workspace"
	apperrors "github.com/spec-kit/staff-console/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the signed-in operator.
type Principal struct {
	SessionID string
	UserID    string
	Name      string
	Role      string
	Workspace *workspace.Workspace
}

// Workspaces resolves session ids to workspaces.
type Workspaces interface {
	Get(ctx context.Context, id string) (*workspace.Workspace, error)
	Close(ctx context.Context, id string) error
}

// AuthMiddleware validates the console token and loads the workspace.
type AuthMiddleware struct {
	tokens     *TokenManager
	workspaces Workspaces
	cookie     string
	logger     *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, workspaces Workspaces, cookieName string, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, workspaces: workspaces, cookie: cookieName, logger: logger}
}

// CookieName is the cookie carrying the console token.
func (m *AuthMiddleware) CookieName() string {
	return m.cookie
}

// Handle enforces authentication for protected routes. When the remote API
// rejects the held bearer token the workspace is closed so the operator has
// to sign in again.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	raw, err := m.extract(c)
	if err != nil {
		return err
	}

	claims, err := m.tokens.ParseToken(raw)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	ws, err := m.workspaces.Get(c.UserContext(), claims.SessionID)
	if err != nil {
		if errors.Is(err, workspace.ErrNoWorkspace) {
			return apperrors.NewUnauthorized("session expired")
		}
		return apperrors.MapError(err)
	}
	if !ws.Session.Authenticated() {
		return apperrors.NewUnauthorized("session expired")
	}

	c.Locals(principalKey, &Principal{
		SessionID: claims.SessionID,
		UserID:    claims.Subject,
		Name:      claims.Name,
		Role:      claims.Role,
		Workspace: ws,
	})
	c.SetUserContext(ws.Context(c.UserContext()))

	err = c.Next()
	if err != nil && apperrors.ToDomainError(err).HTTPStatus == http.StatusUnauthorized {
		if closeErr := m.workspaces.Close(c.UserContext(), claims.SessionID); closeErr != nil {
			m.logger.Warn("closing rejected session", zap.String("session_id", claims.SessionID), zap.Error(closeErr))
		}
		c.ClearCookie(m.cookie)
	}
	return err
}

func (m *AuthMiddleware) extract(c *fiber.Ctx) (string, error) {
	if m.cookie != "" {
		if v := c.Cookies(m.cookie); v != "" {
			return v, nil
		}
	}
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", apperrors.NewUnauthorized("missing authorization")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperrors.NewUnauthorized("invalid authorization header")
	}
	return parts[1], nil
}

// PrincipalFromContext retrieves the signed-in operator.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
