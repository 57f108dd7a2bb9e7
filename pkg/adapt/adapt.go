// Package adapt holds the response adapters that pull entity data out of
// backend bodies. Backends disagree on where data lives (`data`, `data.group`,
// `data.data`), so every reducer arm names its own path and extraction must
// tolerate missing or malformed documents.
package adapt

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Into decodes the value at path into dst. An empty path means the whole body.
// It reports false, leaving dst untouched, when the path is absent, null or
// does not decode.
func Into(body json.RawMessage, path string, dst any) bool {
	raw := Sub(body, path)
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false
	}
	return true
}

// Sub returns the raw JSON at path, or nil.
func Sub(body json.RawMessage, path string) json.RawMessage {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return nil
	}
	if path == "" {
		if gjson.ParseBytes(body).Type == gjson.Null {
			return nil
		}
		return body
	}
	res := gjson.GetBytes(body, path)
	if !res.Exists() || res.Type == gjson.Null {
		return nil
	}
	return json.RawMessage(res.Raw)
}

// String returns the string at path, or "" when absent or not a string.
func String(body json.RawMessage, path string) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	res := gjson.GetBytes(body, path)
	if res.Type != gjson.String {
		return ""
	}
	return res.Str
}

// Message extracts the user-facing status text carried by most responses.
func Message(body json.RawMessage) string {
	return String(body, "message")
}

// Path is a named adapter for one entity location, e.g. Path[models.Group]("data.group").
type Path[T any] string

// Get decodes the entity at the path.
func (p Path[T]) Get(body json.RawMessage) (T, bool) {
	var out T
	ok := Into(body, string(p), &out)
	return out, ok
}

// Ptr decodes the entity at the path, returning nil when it is missing.
func (p Path[T]) Ptr(body json.RawMessage) *T {
	v, ok := p.Get(body)
	if !ok {
		return nil
	}
	return &v
}
