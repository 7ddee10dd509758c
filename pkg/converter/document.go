package converter

import "reflect"

// normalizeDocument turns any accepted Data shape into an ordered slice of
// records. A single record is promoted to a one-element slice and nil
// entries stay nil so the assembler can skip them.
//
// Any slice or array is a collection; a map or record is a single record.
// Elements that are not records at all (a bare number inside an array, or a
// scalar passed as Data) are kept as opaque placeholders: every field
// resolves to the default value for them.
func normalizeDocument(data any) []*Record {
	switch d := data.(type) {
	case nil:
		return nil
	case []*Record:
		return d
	case []map[string]any:
		out := make([]*Record, len(d))
		for i, m := range d {
			if m != nil {
				out[i] = RecordFromMap(m)
			}
		}
		return out
	case []any:
		out := make([]*Record, len(d))
		for i, item := range d {
			out[i] = asRecord(item)
		}
		return out
	case []Record:
		out := make([]*Record, len(d))
		for i := range d {
			out[i] = &d[i]
		}
		return out
	case []map[string]string:
		out := make([]*Record, len(d))
		for i, m := range d {
			if m != nil {
				out[i] = asRecord(m)
			}
		}
		return out
	default:
		if rv := reflect.ValueOf(data); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			if rv.Kind() == reflect.Slice && rv.IsNil() {
				return nil
			}
			out := make([]*Record, rv.Len())
			for i := range out {
				out[i] = asRecord(rv.Index(i).Interface())
			}
			return out
		}
		rec := asRecord(data)
		if rec == nil {
			return nil
		}
		return []*Record{rec}
	}
}

// asRecord views a single document element as a record.
func asRecord(item any) *Record {
	switch v := item.(type) {
	case nil:
		return nil
	case *Record:
		return v
	case Record:
		return &v
	case map[string]any:
		return RecordFromMap(v)
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[k] = val
		}
		return RecordFromMap(m)
	default:
		return &Record{opaque: true}
	}
}
