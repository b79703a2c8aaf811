package identity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/staff-console/internal/envelope"
)

func TestAssignPrefersUnderscoreID(t *testing.T) {
	got := Assign(envelope.Staff, []envelope.Record{
		{"_id": "m1", "id": "n1"},
		{"id": 42.0},
		{"id": ""},
	})
	require.Len(t, got, 3)
	assert.Equal(t, "m1", got[0].Key)
	assert.False(t, got[0].Synthetic)
	assert.Equal(t, "42", got[1].Key)
	assert.Equal(t, "staff-2", got[2].Key)
	assert.True(t, got[2].Synthetic)
}

func TestAssignKeysAreUnique(t *testing.T) {
	records := []envelope.Record{
		{"name": "a"},
		{"_id": "ticket-0"},
		{"name": "b"},
		{"_id": "ticket-2"},
		{"name": "c"},
	}
	got := Assign(envelope.Ticket, records)
	seen := map[string]bool{}
	for _, e := range got {
		assert.False(t, seen[e.Key], "duplicate key %s", e.Key)
		seen[e.Key] = true
	}
	assert.Equal(t, "ticket-0-1", got[0].Key)
	assert.Equal(t, "ticket-2-1", got[2].Key)
	assert.Equal(t, "ticket-4", got[4].Key)
}

func TestAssignPreservesGenuineIDs(t *testing.T) {
	raw := map[string]any{
		"status": "ok",
		"data":   map[string]any{"companies": []any{map[string]any{"id": "c1", "name": "Acme"}}},
	}
	got := Assign(envelope.Company, envelope.Normalize(envelope.Company, raw))
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].Key)
	assert.Equal(t, "Acme", got[0].Record["name"])

	body, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"c1","name":"Acme","key":"c1"}]`, string(body))
}

func TestSyntheticFlagSerialized(t *testing.T) {
	body, err := json.Marshal(Assign(envelope.Branch, []envelope.Record{{"name": "HQ"}}))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"HQ","key":"branch-0","key_synthetic":true}]`, string(body))
}

func TestIndexAndRecords(t *testing.T) {
	entities := Assign(envelope.Role, []envelope.Record{{"_id": "r1", "name": "Admin"}, {"name": "Guest"}})
	idx := Index(entities)
	assert.Equal(t, "Admin", idx["r1"].Record["name"])
	assert.Equal(t, "Guest", idx["role-1"].Record["name"])
	assert.Len(t, Records(entities), 2)
}

func TestGenuineIndexSkipsSyntheticKeys(t *testing.T) {
	entities := Assign(envelope.Staff, []envelope.Record{{"_id": "u1", "name": "Ada"}, {"name": "Temp"}})
	idx := GenuineIndex(entities)
	assert.Len(t, idx, 1)
	assert.Contains(t, idx, "u1")
	assert.NotContains(t, idx, "staff-1")
}
