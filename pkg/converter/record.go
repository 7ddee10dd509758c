package converter

import (
	"bytes"
	"sort"
)

// Record is an ordered mapping from string keys to arbitrary values.
// Key order is the order in which keys were first set and drives the
// default column order of a conversion.
//
// The converter never mutates a Record it is given.
type Record struct {
	keys   []string
	values map[string]any

	// opaque marks a placeholder for a document element that was not a
	// record; it still produces a row.
	opaque bool
}

// NewRecord creates an empty Record with room for size keys.
func NewRecord(size int) *Record {
	return &Record{
		keys:   make([]string, 0, size),
		values: make(map[string]any, size),
	}
}

// RecordFromMap builds a Record from a plain map. Go maps carry no key
// order, so keys are sorted to keep output deterministic.
func RecordFromMap(m map[string]any) *Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	r := NewRecord(len(keys))
	for _, k := range keys {
		r.Set(k, m[k])
	}
	return r
}

// Set stores value under key. Re-setting an existing key keeps its position.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key and whether the key is present.
func (r *Record) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Keys returns a copy of the record's keys in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len reports the number of keys.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// MarshalJSON renders the record as a JSON object, keys in order.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalCompact(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := marshalCompact(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
