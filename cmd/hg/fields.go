package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/alfredjeanlab/hypergraph/internal/model"
)

// splitField splits "key=value" into (key, value, true).
// Returns ("", "", false) if there is no '=' or key is empty.
func splitField(s string) (string, string, bool) {
	i := strings.IndexByte(s, '=')
	if i <= 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// parseValue decodes v as JSON when it looks like a JSON literal (object,
// array, quoted string, boolean, null, or number) and returns it as a plain
// string otherwise.
func parseValue(v string) any {
	if len(v) == 0 {
		return v
	}
	looksJSON := false
	switch v[0] {
	case '{', '[', '"':
		looksJSON = true
	default:
		looksJSON = v == "true" || v == "false" || v == "null" ||
			v[0] == '-' || unicode.IsDigit(rune(v[0]))
	}
	if !looksJSON || !json.Valid([]byte(v)) {
		return v
	}
	var out any
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		return v
	}
	return out
}

// parseMetadata converts -m key=value pairs into metadata. A key given twice
// keeps its last value.
func parseMetadata(pairs []string) (model.Metadata, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	md := make(model.Metadata, len(pairs))
	for _, p := range pairs {
		k, v, ok := splitField(p)
		if !ok {
			return nil, fmt.Errorf("invalid metadata %q: expected key=value", p)
		}
		md[k] = parseValue(v)
	}
	return md, nil
}
