package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Project restricts item to fields plus the identity field. With no fields
// the item is returned unchanged.
func Project(item interface{}, fields []string) (interface{}, error) {
	if len(fields) == 0 {
		return item, nil
	}

	raw, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	var full map[string]interface{}
	if err := json.Unmarshal(raw, &full); err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}

	out := make(map[string]interface{}, len(fields)+1)
	if id, ok := full[IdentityField]; ok {
		out[IdentityField] = id
	}
	for _, name := range fields {
		pick(full, out, strings.Split(name, "."))
	}
	return out, nil
}

// pick copies the value at path from src into dst, creating the nested
// objects on the way.
func pick(src, dst map[string]interface{}, path []string) {
	v, ok := src[path[0]]
	if !ok {
		return
	}
	if len(path) == 1 {
		dst[path[0]] = v
		return
	}
	child, ok := v.(map[string]interface{})
	if !ok {
		return
	}
	existing, present := dst[path[0]]
	next, isMap := existing.(map[string]interface{})
	switch {
	case !present:
		next = make(map[string]interface{})
		dst[path[0]] = next
	case !isMap:
		return
	}
	pick(child, next, path[1:])
}

// ProjectAll applies Project to every item.
func ProjectAll[T any](items []T, fields []string) ([]interface{}, error) {
	out := make([]interface{}, 0, len(items))
	for _, item := range items {
		p, err := Project(item, fields)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
