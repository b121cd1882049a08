// Package normalize converts nested, inconsistently shaped upstream JSON
// into flat application records. Field lookups try an ordered list of
// candidate paths and fall back to sentinels; a malformed record is skipped
// with a diagnostic instead of aborting its batch.
package normalize

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// ShapeError means the payload as a whole did not match the expected
// contract. The batch is skipped entirely, because a shape mismatch
// indicates the upstream contract changed.
type ShapeError struct {
	Got string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unexpected payload shape: %s", e.Got)
}

// unwrap accepts either a bare document or a one-element wrapper array
// holding one, and parses it for path queries. Anything else is a
// ShapeError.
func unwrap(raw any) (gjson.Result, error) {
	if raw == nil {
		return gjson.Result{}, &ShapeError{Got: "nil"}
	}

	if list, ok := raw.([]any); ok {
		if len(list) != 1 {
			return gjson.Result{}, &ShapeError{Got: fmt.Sprintf("wrapper of length %d", len(list))}
		}
		raw = list[0]
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return gjson.Result{}, &ShapeError{Got: fmt.Sprintf("unmarshalable %T", raw)}
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return gjson.Result{}, &ShapeError{Got: doc.Type.String()}
	}
	return doc, nil
}

// firstString returns the first non-empty string found at the candidate
// paths.
func firstString(doc gjson.Result, paths ...string) string {
	for _, path := range paths {
		if v := doc.Get(path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
