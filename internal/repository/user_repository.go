package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/staff-console/internal/domain"
	"github.com/spec-kit/staff-console/internal/envelope"
	"github.com/spec-kit/staff-console/internal/identity"
)

// ErrMissingToken is returned when a login answer carries no token.
var ErrMissingToken = errors.New("login response did not include a token")

// UserRepository covers the signed-in operator: login, own profile and role lookups.
type UserRepository interface {
	Login(ctx context.Context, email, password string) (domain.Credential, error)
	Me(ctx context.Context) (identity.Entity, error)
	Roles(ctx context.Context) ([]identity.Entity, error)
}

type userRepository struct {
	api Remote
}

// NewUserRepository instantiates the repository.
func NewUserRepository(api Remote) UserRepository {
	return &userRepository{api: api}
}

func (r *userRepository) Login(ctx context.Context, email, password string) (domain.Credential, error) {
	raw, err := r.api.Post(ctx, "api/auth/login", map[string]string{"email": email, "password": password})
	if err != nil {
		return domain.Credential{}, err
	}
	body, ok := envelope.Unwrap(raw)
	if !ok {
		return domain.Credential{}, ErrMissingToken
	}
	token := domain.StringField(body, "token")
	if token == "" {
		if inner, ok := body["data"].(map[string]any); ok {
			body = inner
			token = domain.StringField(body, "token")
		}
	}
	if token == "" {
		return domain.Credential{}, ErrMissingToken
	}
	user, _ := body["user"].(map[string]any)
	return domain.Credential{Token: token, User: domain.UserProfile(user)}, nil
}

func (r *userRepository) Me(ctx context.Context) (identity.Entity, error) {
	return getEntity(ctx, r.api, envelope.Staff, "api/lookups/users/me", "data", "user")
}

func (r *userRepository) Roles(ctx context.Context) ([]identity.Entity, error) {
	return listEntities(ctx, r.api, envelope.Role, "api/lookups/roles", nil)
}
