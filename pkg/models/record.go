package models

import "encoding/json"

// RemoteRecord is one heterogeneous item returned by the remote job
// provider. The shape varies by actor configuration: some runs return a
// single profile-shaped record, others mix profile and post records. The
// accessor helpers are total, returning zero values for missing or
// mistyped fields so the normalizer never has to branch on presence.
type RemoteRecord map[string]interface{}

// String returns the first present string value among the given keys.
func (r RemoteRecord) String(keys ...string) string {
	for _, key := range keys {
		if v, ok := r[key].(string); ok {
			return v
		}
	}
	return ""
}

// Int returns the first present numeric value among the given keys. JSON
// numbers decode as float64, but int and json.Number are accepted too.
func (r RemoteRecord) Int(keys ...string) int {
	for _, key := range keys {
		switch v := r[key].(type) {
		case float64:
			return int(v)
		case int:
			return v
		case int64:
			return int(v)
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return int(n)
			}
		}
	}
	return 0
}

// Bool returns the first present boolean value among the given keys.
func (r RemoteRecord) Bool(keys ...string) bool {
	for _, key := range keys {
		if v, ok := r[key].(bool); ok {
			return v
		}
	}
	return false
}

// StringSlice returns the first present string array among the given keys.
// Non-string elements are skipped.
func (r RemoteRecord) StringSlice(keys ...string) []string {
	for _, key := range keys {
		raw, ok := r[key].([]interface{})
		if !ok {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Records returns the first present array of nested records among the
// given keys.
func (r RemoteRecord) Records(keys ...string) []RemoteRecord {
	for _, key := range keys {
		raw, ok := r[key].([]interface{})
		if !ok {
			continue
		}
		out := make([]RemoteRecord, 0, len(raw))
		for _, item := range raw {
			if m, ok := item.(map[string]interface{}); ok {
				out = append(out, RemoteRecord(m))
			}
		}
		return out
	}
	return nil
}

// Has reports whether any of the given keys is present with a non-nil value.
func (r RemoteRecord) Has(keys ...string) bool {
	for _, key := range keys {
		if v, ok := r[key]; ok && v != nil {
			return true
		}
	}
	return false
}
