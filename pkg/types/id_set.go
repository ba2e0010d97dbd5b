package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
)

// IDSet is an ordered, duplicate-free list of record ids persisted as a JSON
// array in a text column so it works on both Postgres and SQLite.
type IDSet []uint

// NewIDSet builds a normalized set from the provided ids.
func NewIDSet(ids ...uint) IDSet {
	var set IDSet
	for _, id := range ids {
		set = set.Add(id)
	}
	return set
}

// Contains reports whether id is part of the set.
func (s IDSet) Contains(id uint) bool {
	return slices.Contains(s, id)
}

// Add returns the set with id included, keeping ascending order.
func (s IDSet) Add(id uint) IDSet {
	idx, found := slices.BinarySearch(s, id)
	if found {
		return s
	}
	out := make(IDSet, 0, len(s)+1)
	out = append(out, s[:idx]...)
	out = append(out, id)
	return append(out, s[idx:]...)
}

// Remove returns the set without id.
func (s IDSet) Remove(id uint) IDSet {
	out := make(IDSet, 0, len(s))
	for _, existing := range s {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

// Clone returns an independent copy.
func (s IDSet) Clone() IDSet {
	if s == nil {
		return IDSet{}
	}
	return slices.Clone(s)
}

// Value marshals the set into a JSON array.
func (s IDSet) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	buf, err := json.Marshal([]uint(s))
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes a JSON array column into the set, normalizing order and duplicates.
func (s *IDSet) Scan(value any) error {
	if value == nil {
		*s = IDSet{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("id set: unsupported scan type %T", value)
	}
	if len(raw) == 0 {
		*s = IDSet{}
		return nil
	}

	var ids []uint
	if err := json.Unmarshal(raw, &ids); err != nil {
		return fmt.Errorf("id set: %w", err)
	}
	*s = NewIDSet(ids...)
	if *s == nil {
		*s = IDSet{}
	}
	return nil
}

// MarshalJSON always renders an array, never null.
func (s IDSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]uint(s))
}
