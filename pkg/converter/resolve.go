package converter

import (
	"strconv"
	"strings"
)

// resolveField looks up path inside record.
//
// Without nested mode the path is a literal key. In nested mode a literal
// key equal to the whole path still wins; otherwise the path is split on
// '.' and each segment descends one level. Missing keys, nil records and
// nil values all yield defaultValue.
func resolveField(record *Record, path string, nested bool, defaultValue any) any {
	if record == nil {
		return defaultValue
	}
	if v, ok := record.Get(path); ok {
		return orDefault(v, defaultValue)
	}
	if !nested || !strings.Contains(path, ".") {
		return defaultValue
	}

	var current any = record
	for _, segment := range strings.Split(path, ".") {
		next, ok := descend(current, segment)
		if !ok {
			return defaultValue
		}
		current = next
	}
	return orDefault(current, defaultValue)
}

// descend steps one path segment into value.
func descend(value any, segment string) (any, bool) {
	switch v := value.(type) {
	case *Record:
		return v.Get(segment)
	case map[string]any:
		child, ok := v[segment]
		return child, ok
	case []any:
		idx, err := strconv.Atoi(segment)
		if err != nil || idx < 0 || idx >= len(v) {
			return nil, false
		}
		return v[idx], true
	default:
		return nil, false
	}
}

func orDefault(v, defaultValue any) any {
	if v == nil {
		return defaultValue
	}
	return v
}
