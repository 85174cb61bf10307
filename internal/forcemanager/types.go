package forcemanager

import (
	"encoding/json"
	"strconv"
)

// Record is one JSON record as returned by the remote API. Field
// shapes vary between deployments, so access goes through the typed
// accessors below.
type Record map[string]interface{}

// Str returns a string field, empty when absent or null.
func (r Record) Str(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Int64 coerces a field that may arrive as a JSON number or a numeric
// string into an int64; 0 when absent or unparseable.
func (r Record) Int64(key string) int64 {
	return coerceInt64(r[key])
}

// Float returns a numeric field as float64, 0 when absent.
func (r Record) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return 0
}

// Bool returns a boolean field, false when absent.
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Ref decodes a weak reference field (see Reference).
func (r Record) Ref(key string) Reference {
	return DecodeReference(r[key])
}

func coerceInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	}
	return 0
}

// Reference is the decoded form of the remote API's weak reference
// objects. They arrive in three shapes: absent/null, a bare numeric
// id, or an {id, value} object carrying a display name. Decoding
// happens once at the mapping boundary; downstream code never branches
// on the raw shape.
type Reference struct {
	ID    int64
	Label string
	Valid bool
}

// DecodeReference normalizes any of the reference shapes.
func DecodeReference(v interface{}) Reference {
	switch ref := v.(type) {
	case nil:
		return Reference{}
	case map[string]interface{}:
		r := Reference{ID: coerceInt64(ref["id"]), Valid: true}
		if s, ok := ref["value"].(string); ok {
			r.Label = s
		}
		return r
	case string:
		if ref == "" {
			return Reference{}
		}
		return Reference{ID: coerceInt64(ref), Label: ref, Valid: true}
	default:
		if id := coerceInt64(v); id != 0 {
			return Reference{ID: id, Valid: true}
		}
		return Reference{}
	}
}

// RefValue encodes a reference back to the {id, value} wire shape.
// The id is omitted when zero, matching what the remote accepts for
// value-only references.
func RefValue(id int64, label string) map[string]interface{} {
	out := map[string]interface{}{"value": label}
	if id != 0 {
		out["id"] = id
	}
	return out
}

// Response wraps one API reply. List replies come back either as a
// bare JSON array or as {"results": [...]}; both shapes decode the
// same way here.
type Response struct {
	data interface{}
}

// NewResponse wraps already decoded JSON data. Fakes standing in for
// the client build their replies with it.
func NewResponse(data interface{}) *Response {
	return &Response{data: data}
}

// Empty reports whether the reply carried no payload. Failed requests
// are normalized to an empty response, so orchestrators treat "error"
// and "no data" alike.
func (r *Response) Empty() bool {
	if r == nil || r.data == nil {
		return true
	}
	switch v := r.data.(type) {
	case map[string]interface{}:
		return len(v) == 0
	case []interface{}:
		return len(v) == 0
	}
	return false
}

// List returns the reply as a record list, accepting both wire shapes.
func (r *Response) List() []Record {
	if r == nil {
		return nil
	}
	var items []interface{}
	switch v := r.data.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		items, _ = v["results"].([]interface{})
	}
	out := make([]Record, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]interface{}); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

// Object returns the reply as a single record, nil when it is not one.
func (r *Response) Object() Record {
	if r == nil {
		return nil
	}
	if m, ok := r.data.(map[string]interface{}); ok {
		return Record(m)
	}
	return nil
}
