// Package azcli executes external az CLI commands and classifies the outcome.
//
// Every invocation returns a Result, never an error: non-zero exit codes,
// spawn failures and IO failures are all folded into a failed Result so that
// orchestration code can inspect and decide without error-driven control flow.
package azcli

import (
	"encoding/json"
	"strings"
)

// Result is the immutable outcome of one command invocation.
//
// On success Text holds stdout and JSON holds the parsed body when stdout was
// valid JSON (nil otherwise — a non-JSON body is not an error). On failure
// Text holds the combined stdout+stderr for diagnosis and JSON is nil.
type Result struct {
	Success bool
	Text    string
	JSON    any
}

// succeed builds a success Result, probing the body for JSON.
func succeed(text string) Result {
	r := Result{Success: true, Text: text}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return r
	}
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
		r.JSON = v
	}
	return r
}

// fail builds a failure Result carrying the given diagnostic text.
func fail(text string) Result {
	return Result{Success: false, Text: text}
}

// Lookup walks the parsed JSON body through a chain of object keys and
// returns the value at the end of the path. It reports false when the body
// is not JSON or any key along the path is missing.
func (r Result) Lookup(path ...string) (any, bool) {
	cur := r.JSON
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// LookupString is Lookup restricted to string values.
func (r Result) LookupString(path ...string) (string, bool) {
	v, ok := r.Lookup(path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Array returns the parsed JSON body as a slice. A single JSON object is
// normalized into a one-element slice; a non-JSON or missing body yields nil.
func (r Result) Array() []any {
	switch v := r.JSON.(type) {
	case []any:
		return v
	case map[string]any:
		return []any{v}
	default:
		return nil
	}
}
