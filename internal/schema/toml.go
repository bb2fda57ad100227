package schema

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

func decodeTOML(source string, data []byte) ([]map[string]any, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Source: source, Index: -1, Reason: "malformed TOML: " + err.Error()}
	}

	raw, ok := doc["options"]
	if !ok {
		return nil, &Error{Source: source, Index: -1, Reason: "missing top-level 'options' array"}
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, &Error{Source: source, Index: -1, Reason: "'options' must be an array of tables"}
	}

	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		fields, ok := item.(map[string]any)
		if !ok {
			return nil, &Error{Source: source, Index: i, Reason: fmt.Sprintf("expected a table, got %T", item)}
		}
		out = append(out, fields)
	}
	return out, nil
}
