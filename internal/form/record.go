package form

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Record is the flat canonical view of a submission. An empty string means
// the field is absent.
type Record map[string]string

// Get returns the trimmed value for key.
func (r Record) Get(key string) string {
	return strings.TrimSpace(r[key])
}

// Has reports whether key carries a non-blank value.
func (r Record) Has(key string) bool {
	return r.Get(key) != ""
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Keys returns the record keys in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values splits a comma-joined multi-select value into its trimmed parts.
func (r Record) Values(key string) []string {
	raw := r.Get(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Contains reports whether the multi-select value of key includes want.
// Matching is exact and case-sensitive.
func (r Record) Contains(key, want string) bool {
	for _, v := range r.Values(key) {
		if v == want {
			return true
		}
	}
	return false
}

// NormalizeKey trims a submitted key, composes it to NFC and drops the
// trailing "[]" that qs-style encoders append to array fields.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(norm.NFC.String(key))
	return strings.TrimSuffix(key, "[]")
}

// FromRaw flattens a decoded JSON or form payload into a Record.
func FromRaw(raw map[string]any) Record {
	rawKeys := make([]string, 0, len(raw))
	for k := range raw {
		rawKeys = append(rawKeys, k)
	}
	sort.Strings(rawKeys)

	out := make(Record, len(raw))
	for _, k := range rawKeys {
		v := raw[k]
		key := NormalizeKey(k)
		if key == "" {
			continue
		}
		s, ok := stringify(v)
		if !ok {
			continue
		}
		// Repeated keys (e.g. "a" and "a[]") merge in multi-select order.
		if prev := out[key]; prev != "" {
			s = prev + "," + s
		}
		out[key] = s
	}
	return out
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s := norm.NFC.String(t)
		if strings.TrimSpace(s) == "" {
			return "", false
		}
		return s, true
	case bool:
		if !t {
			return "", false
		}
		return "true", true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case []string:
		items := make([]any, len(t))
		for i, s := range t {
			items[i] = s
		}
		return stringify(items)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := stringify(item); ok {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			return "", false
		}
		return strings.Join(parts, ","), true
	default:
		// Nested objects have no placement on the form.
		return "", false
	}
}
