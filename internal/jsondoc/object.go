// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jsondoc reads and writes JSON documents without losing key order
// or number formatting, so a rewritten document differs from its source only
// where its values changed.
//
// Decoded values use these Go types: *Object for objects, []any for arrays,
// string, json.Number, bool, and nil.
package jsondoc

// Object is a JSON object that remembers the order in which keys were set.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Get returns the value stored under key and whether it exists.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// String returns the value under key if it is a string.
func (o *Object) String(key string) (string, bool) {
	v, ok := o.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Set stores value under key. An existing key keeps its position.
func (o *Object) Set(key string, value any) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Keys returns the keys in insertion order. The slice is a copy.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Each calls fn for every key in order. It stops early if fn returns false.
func (o *Object) Each(fn func(key string, value any) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.values[k]) {
			return
		}
	}
}
