package workload

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/notebench/pkg/core"
)

// DecodeItems parses a JSON array of objects. Null elements become empty
// objects; a non-array body or a non-object element is a core.ErrBadRequest.
func DecodeItems(body []byte) ([]map[string]any, error) {
	var raw []any
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, fmt.Errorf("%w: expected array", core.ErrBadRequest)
	}

	items := make([]map[string]any, len(raw))
	for i, v := range raw {
		switch obj := v.(type) {
		case map[string]any:
			items[i] = obj
		case nil:
			items[i] = map[string]any{}
		default:
			return nil, fmt.Errorf("%w: item %d is not an object", core.ErrBadRequest, i)
		}
	}
	return items, nil
}

// Annotate marks every item as processed and records its original position.
// Items are modified in place and returned for convenience.
func Annotate(items []map[string]any) []map[string]any {
	for i := range items {
		if items[i] == nil {
			items[i] = map[string]any{}
		}
		items[i]["processed"] = true
		items[i]["index"] = i
	}
	return items
}
