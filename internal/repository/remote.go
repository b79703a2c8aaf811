package repository

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/spec-kit/staff-console/internal/apiclient"
	"github.com/spec-kit/staff-console/internal/domain"
	"github.com/spec-kit/staff-console/internal/envelope"
	"github.com/spec-kit/staff-console/internal/identity"
)

// Remote is the part of the API client the repositories depend on.
type Remote interface {
	Get(ctx context.Context, path string, query url.Values) (any, error)
	Post(ctx context.Context, path string, body any) (any, error)
	Put(ctx context.Context, path string, body any) (any, error)
	Delete(ctx context.Context, path string) (any, error)
	Submit(ctx context.Context, method, path string, form *apiclient.Form) (any, error)
}

// listEntities fetches path and returns the normalized, keyed records.
func listEntities(ctx context.Context, api Remote, kind envelope.Kind, path string, query url.Values) ([]identity.Entity, error) {
	raw, err := api.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	return identity.Assign(kind, envelope.Normalize(kind, raw)), nil
}

// getEntity fetches a single object, unwrapping the given envelope keys.
func getEntity(ctx context.Context, api Remote, kind envelope.Kind, path string, keys ...string) (identity.Entity, error) {
	raw, err := api.Get(ctx, path, nil)
	if err != nil {
		return identity.Entity{}, err
	}
	rec, ok := envelope.Unwrap(raw, keys...)
	if !ok || len(rec) == 0 {
		return identity.Entity{}, ErrNotFound
	}
	return identity.Assign(kind, []envelope.Record{rec})[0], nil
}

func filterEntities(entities []identity.Entity, keep func(envelope.Record) bool) []identity.Entity {
	out := make([]identity.Entity, 0, len(entities))
	for _, e := range entities {
		if keep(e.Record) {
			out = append(out, e)
		}
	}
	return out
}

func uploadFile(u *domain.Upload) apiclient.FormFile {
	return apiclient.FormFile{Field: u.Field, Filename: u.Filename, ContentType: u.ContentType, Data: u.Data}
}

func escape(id string) string {
	return url.PathEscape(strings.TrimSpace(id))
}

// jsonValue types a form value for JSON submission. Numeric and boolean staff
// fields are sent typed when they parse, strings otherwise.
func jsonValue(field, value string) any {
	switch field {
	case "stats_score", "leave_balance":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	case "is_active":
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return value
}
