package cli

import (
	"encoding/json"
	"fmt"
	"slices"

	"mbkm-console/internal/format"
)

// envelope is the JSON shape of every command result.
type envelope struct {
	Data    any      `json:"data"`
	Meta    any      `json:"meta,omitempty"`
	Message string   `json:"message,omitempty"`
	Hints   []string `json:"_hints,omitempty"`

	table *format.Table
}

func (e envelope) Table() format.Table {
	if e.table != nil {
		return *e.table
	}
	if e.Message != "" {
		return format.Table{Headers: []string{"Message"}, Rows: [][]string{{e.Message}}}
	}
	return fieldTable(e.Data)
}

// fieldTable renders any JSON object as a two column key/value table.
func fieldTable(v any) format.Table {
	t := format.Table{Headers: []string{"Field", "Value"}}
	b, err := json.Marshal(v)
	if err != nil {
		return t
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return t
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		t.Rows = append(t.Rows, []string{k, cellText(m[k])})
	}
	return t
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
