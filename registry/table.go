// Package registry holds the symbol tables of one compilation run: packages,
// message types and their value domains, topics, nodes, process states and
// behavior predicates.
//
// Every table follows the same get-or-create contract implemented by Table:
// interning a key that already exists validates the stored definition against
// the new one and either merges the two or fails with a consistency error that
// names both definitions.
package registry

import (
	"fmt"

	"github.com/luis1ribeiro/SROS2-Utilities/errors"
)

// ConflictFunc reports why incoming cannot share a key with existing.
// It returns nil when the two definitions are compatible.
type ConflictFunc[V any] func(existing, incoming V) error

// MergeFunc folds the secondary attributes of incoming into existing.
type MergeFunc[V any] func(existing, incoming V)

// Table is a keyed interning table parameterized by a conflict predicate.
// Iteration order is insertion order.
type Table[K comparable, V any] struct {
	kind     string
	entries  map[K]V
	order    []K
	conflict ConflictFunc[V]
	merge    MergeFunc[V]
}

// NewTable creates an empty table. kind names the entity in error messages.
// conflict and merge may be nil.
func NewTable[K comparable, V any](kind string, conflict ConflictFunc[V], merge MergeFunc[V]) *Table[K, V] {
	return &Table[K, V]{
		kind:     kind,
		entries:  make(map[K]V),
		conflict: conflict,
		merge:    merge,
	}
}

// Intern returns the entity stored under key, creating it from candidate if absent.
// If key exists and candidate conflicts with it, Intern returns a CodeConsistency error.
func (t *Table[K, V]) Intern(key K, candidate V) (V, error) {
	existing, ok := t.entries[key]
	if !ok {
		t.entries[key] = candidate
		t.order = append(t.order, key)
		return candidate, nil
	}

	if t.conflict != nil {
		if err := t.conflict(existing, candidate); err != nil {
			var zero V
			return zero, errors.WrapWithContext(
				err,
				errors.CodeConsistency,
				fmt.Sprintf("conflicting definitions of %s %v", t.kind, key),
				map[string]interface{}{
					"kind": t.kind,
					"key":  fmt.Sprint(key),
				},
			)
		}
	}

	if t.merge != nil {
		t.merge(existing, candidate)
	}
	return existing, nil
}

// Lookup returns the entity stored under key.
func (t *Table[K, V]) Lookup(key K) (V, bool) {
	v, ok := t.entries[key]
	return v, ok
}

// Has reports whether key is present.
func (t *Table[K, V]) Has(key K) bool {
	_, ok := t.entries[key]
	return ok
}

// Len returns the number of entries.
func (t *Table[K, V]) Len() int {
	return len(t.order)
}

// Keys returns the keys in insertion order.
func (t *Table[K, V]) Keys() []K {
	keys := make([]K, len(t.order))
	copy(keys, t.order)
	return keys
}

// All returns the entities in insertion order.
func (t *Table[K, V]) All() []V {
	values := make([]V, 0, len(t.order))
	for _, k := range t.order {
		values = append(values, t.entries[k])
	}
	return values
}

// Kind returns the entity name used in error messages.
func (t *Table[K, V]) Kind() string {
	return t.kind
}
