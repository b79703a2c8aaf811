// Package envelope pulls entity lists out of the loosely shaped payloads the
// remote API returns. The same endpoint may answer with a bare array, with
// {data: [...]}, with {<kind>: [...]}, or with the list nested one level under
// data. Anything unrecognised normalizes to an empty list.
package envelope

// Kind names an entity family.
type Kind string

const (
	Staff      Kind = "staff"
	Company    Kind = "company"
	Branch     Kind = "branch"
	Department Kind = "department"
	Ticket     Kind = "ticket"
	Attendance Kind = "attendance"
	Appraisal  Kind = "appraisal"
	Role       Kind = "role"
)

// Record is one entity as sent by the server.
type Record = map[string]any

const dataKey = "data"

// WrapperKeys is the ordered list of keys probed for each kind. The first key
// holding an array wins.
var WrapperKeys = map[Kind][]string{
	Staff:      {"data", "users", "staff", "items", "results"},
	Company:    {"data", "companies", "items", "results"},
	Branch:     {"data", "branches", "items", "results"},
	Department: {"data", "departments", "items", "results"},
	Ticket:     {"data", "tickets", "items", "results"},
	Attendance: {"data", "attendance", "records", "items", "results"},
	Appraisal:  {"data", "appraisals", "items", "results"},
	Role:       {"data", "roles", "items", "results"},
}

var fallbackKeys = []string{"data", "items", "results"}

// Keys returns the probe order for kind.
func Keys(kind Kind) []string {
	if keys, ok := WrapperKeys[kind]; ok {
		return keys
	}
	return fallbackKeys
}

// Extract returns the list carried by raw. A list input is returned as is.
// The result is never nil.
func Extract(kind Kind, raw any) []any {
	if list, ok := asList(raw); ok {
		return list
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return []any{}
	}
	keys := Keys(kind)
	if list, ok := probe(obj, keys); ok {
		return list
	}
	if nested, ok := obj[dataKey].(map[string]any); ok {
		if list, ok := probe(nested, keys); ok {
			return list
		}
	}
	return []any{}
}

// Normalize is Extract restricted to object elements.
func Normalize(kind Kind, raw any) []Record {
	items := Extract(kind, raw)
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if rec, ok := item.(map[string]any); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Unwrap returns the single object carried by raw, looking inside the given
// wrapper keys first. It returns false when raw is not an object.
func Unwrap(raw any, keys ...string) (Record, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}
	for _, key := range keys {
		if inner, ok := obj[key].(map[string]any); ok {
			return inner, true
		}
	}
	return obj, true
}

func probe(obj map[string]any, keys []string) ([]any, bool) {
	for _, key := range keys {
		if list, ok := asList(obj[key]); ok {
			return list, true
		}
	}
	return nil, false
}

func asList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case []map[string]any:
		out := make([]any, len(list))
		for i := range list {
			out[i] = list[i]
		}
		return out, true
	}
	return nil, false
}
