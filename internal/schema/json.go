package schema

import (
	"fmt"

	"github.com/tidwall/gjson"
)

func decodeJSON(source string, data []byte) ([]map[string]any, error) {
	if !gjson.ValidBytes(data) {
		return nil, &Error{Source: source, Index: -1, Reason: "malformed JSON"}
	}
	options := gjson.GetBytes(data, "options")
	if !options.Exists() {
		return nil, &Error{Source: source, Index: -1, Reason: "missing top-level 'options' array"}
	}
	if !options.IsArray() {
		return nil, &Error{Source: source, Index: -1, Reason: "'options' must be an array"}
	}

	var (
		out []map[string]any
		err error
	)
	options.ForEach(func(_, opt gjson.Result) bool {
		if !opt.IsObject() {
			err = &Error{Source: source, Index: len(out), Reason: fmt.Sprintf("expected an object, got %s", opt.Type)}
			return false
		}
		fields := make(map[string]any, 4)
		opt.ForEach(func(key, value gjson.Result) bool {
			fields[key.String()] = jsonValue(value)
			return true
		})
		out = append(out, fields)
		return true
	})
	return out, err
}

// jsonValue keeps scalars typed so that strings written as numbers (and the
// reverse) are rejected by decodeOption.
func jsonValue(v gjson.Result) any {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Num
	case gjson.True, gjson.False:
		return v.Bool()
	case gjson.Null:
		return nil
	default:
		return v.Raw
	}
}
