// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package station

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrMalformedMapping is returned when a mapping document is not a JSON
// object of label to value.
var ErrMalformedMapping = errors.New("malformed station mapping")

// Mapping is a label to value table that remembers insertion order, so the
// key scans in Resolve visit keys deterministically.
type Mapping[V any] struct {
	keys   []string
	values map[string]V
}

// NewMapping returns an empty mapping.
func NewMapping[V any]() *Mapping[V] {
	return &Mapping[V]{values: make(map[string]V)}
}

// FromMap builds a mapping from m with keys in ascending order. Use
// UnmarshalJSON or Set when the source order matters.
func FromMap[V any](m map[string]V) *Mapping[V] {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := NewMapping[V]()
	for _, k := range keys {
		out.Set(k, m[k])
	}
	return out
}

// Set stores value under key. Re-setting an existing key keeps its
// original position.
func (m *Mapping[V]) Set(key string, value V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Mapping[V]) Get(key string) (V, bool) {
	var zero V
	if m == nil {
		return zero, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Mapping[V]) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (m *Mapping[V]) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *Mapping[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// UnmarshalJSON decodes a JSON object, keeping keys in document order.
func (m *Mapping[V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMapping, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: expected object", ErrMalformedMapping)
	}

	m.keys = nil
	m.values = make(map[string]V)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedMapping, err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: expected string key", ErrMalformedMapping)
		}

		var value V
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("%w: value for %q: %v", ErrMalformedMapping, key, err)
		}
		m.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMapping, err)
	}
	return nil
}

// MarshalJSON encodes the mapping as a JSON object in insertion order.
func (m *Mapping[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
