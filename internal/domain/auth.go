package domain

import (
	"fmt"
	"strconv"
)

// Credential is the bearer token and user blob returned by the remote login endpoint.
type Credential struct {
	Token string
	User  UserProfile
}

// Empty reports whether no token is held.
func (c Credential) Empty() bool {
	return c.Token == ""
}

// UserProfile is the identity blob the backend returns for the signed-in operator.
// Its shape is owned by the backend, so it is kept as a loose mapping.
type UserProfile map[string]any

// ID returns `_id` or `id`.
func (u UserProfile) ID() string {
	if v := StringField(u, "_id"); v != "" {
		return v
	}
	return StringField(u, "id")
}

func (u UserProfile) Name() string  { return StringField(u, "name") }
func (u UserProfile) Email() string { return StringField(u, "email") }

// Role returns the role name whether the backend sent a string or a role object.
func (u UserProfile) Role() string {
	switch v := u["role"].(type) {
	case string:
		return v
	case map[string]any:
		return StringField(v, "name")
	}
	return ""
}

// StringField reads a scalar field as a string. Numbers are formatted without exponent.
func StringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	case fmt.Stringer:
		return v.String()
	}
	return ""
}

// NumberField reads a numeric field, accepting numbers and numeric strings.
func NumberField(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}
