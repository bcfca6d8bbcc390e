package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/a3tai/form-filler/internal/form"
)

var errNotObject = errors.New("JSON body must be an object")

// decodeSubmission reads a form-urlencoded, multipart or JSON body into a
// record. The returned error describes a malformed body; the record then
// holds whatever fields did parse, which for JSON and multipart is none. A
// body over the size limit is reported with an *http.MaxBytesError.
func decodeSubmission(r *http.Request) (form.Record, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(32 << 10); err != nil {
			return form.Record{}, err
		}
		return form.FromRaw(bracketValues(r.MultipartForm.Value)), nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return form.Record{}, err
	}

	if mediaType == "application/x-www-form-urlencoded" {
		// ParseQuery keeps every pair it could decode alongside the first
		// bad escape.
		values, err := url.ParseQuery(string(body))
		return form.FromRaw(bracketValues(values)), err
	}

	if strings.TrimSpace(string(body)) == "" {
		return form.Record{}, nil
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return form.Record{}, errNotObject
		}
		return form.Record{}, err
	}
	return form.FromRaw(raw), nil
}

// bracketValues folds qs-style array keys ("a[]", "a[0]", "a[1]") into one
// list under the bare key. Keys with a non-numeric bracket are nested
// objects and have no place on the form.
func bracketValues(values map[string][]string) map[string]any {
	type indexed struct {
		index int
		value string
	}
	lists := make(map[string][]indexed)
	out := make(map[string]any, len(values))

	for key, vals := range values {
		base, index, ok := splitBracket(key)
		if !ok {
			continue
		}
		if index < 0 && len(vals) == 1 && base == key {
			out[base] = vals[0]
			continue
		}
		for i, v := range vals {
			n := index
			if n < 0 {
				n = i
			}
			lists[base] = append(lists[base], indexed{index: n, value: v})
		}
	}

	for base, items := range lists {
		sort.SliceStable(items, func(i, j int) bool { return items[i].index < items[j].index })
		merged := make([]any, 0, len(items)+1)
		if plain, ok := out[base].(string); ok {
			merged = append(merged, plain)
		}
		for _, it := range items {
			merged = append(merged, it.value)
		}
		out[base] = merged
	}
	return out
}

// splitBracket returns the bare key and array index of key. index is -1
// for "a" and "a[]". ok is false for nested keys like "a[b]".
func splitBracket(key string) (base string, index int, ok bool) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return key, -1, true
	}
	inner := key[open+1 : len(key)-1]
	if inner == "" {
		return key[:open], -1, true
	}
	n, err := strconv.Atoi(inner)
	if err != nil || n < 0 {
		return "", 0, false
	}
	return key[:open], n, true
}

func describeDecodeError(err error) string {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Sprintf("invalid JSON at offset %d", syntaxErr.Offset)
	}
	return err.Error()
}
