package identity

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spec-kit/staff-console/internal/envelope"
)

// KeyField is the field added to every serialized entity.
const KeyField = "key"

// Entity is a record with a resolved identifier.
// Synthetic keys are positional and change when the list is refetched in a different order.
type Entity struct {
	Key       string
	Synthetic bool
	Record    envelope.Record
}

// MarshalJSON flattens the record and adds the key fields.
func (e Entity) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Record)+2)
	for k, v := range e.Record {
		out[k] = v
	}
	out[KeyField] = e.Key
	if e.Synthetic {
		out["key_synthetic"] = true
	}
	return json.Marshal(out)
}

// Genuine returns the server identifier of rec: `_id`, then `id`.
func Genuine(rec envelope.Record) (string, bool) {
	for _, field := range []string{"_id", "id"} {
		if v, ok := scalar(rec[field]); ok {
			return v, true
		}
	}
	return "", false
}

// Assign gives every record a key unique within the batch.
// Records without `_id` or `id` get `<kind>-<index>`, suffixed when that
// would clash with another key in the batch.
func Assign(kind envelope.Kind, records []envelope.Record) []Entity {
	out := make([]Entity, len(records))
	used := make(map[string]struct{}, len(records))

	for i, rec := range records {
		if key, ok := Genuine(rec); ok {
			out[i] = Entity{Key: key, Record: rec}
			used[key] = struct{}{}
		}
	}
	for i, rec := range records {
		if out[i].Key != "" {
			continue
		}
		base := fmt.Sprintf("%s-%d", kind, i)
		key := base
		for n := 1; ; n++ {
			if _, taken := used[key]; !taken {
				break
			}
			key = fmt.Sprintf("%s-%d", base, n)
		}
		used[key] = struct{}{}
		out[i] = Entity{Key: key, Synthetic: true, Record: rec}
	}
	return out
}

// Index maps keys to entities. Later duplicates of a genuine id win.
func Index(entities []Entity) map[string]Entity {
	out := make(map[string]Entity, len(entities))
	for _, e := range entities {
		out[e.Key] = e
	}
	return out
}

// GenuineIndex maps server identifiers to entities. Synthesized keys are left
// out; they mean nothing outside the batch that produced them.
func GenuineIndex(entities []Entity) map[string]Entity {
	out := make(map[string]Entity, len(entities))
	for _, e := range entities {
		if !e.Synthetic {
			out[e.Key] = e
		}
	}
	return out
}

// Records strips the keys again.
func Records(entities []Entity) []envelope.Record {
	out := make([]envelope.Record, len(entities))
	for i, e := range entities {
		out[i] = e.Record
	}
	return out
}

func scalar(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, id != ""
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case int:
		return strconv.Itoa(id), true
	case int64:
		return strconv.FormatInt(id, 10), true
	}
	return "", false
}
