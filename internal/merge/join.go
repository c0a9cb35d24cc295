// Package merge joins the per-year sources into the summary table and
// applies the final range filter and ordering.
package merge

import (
	"cmp"
	"slices"
)

// Index groups values by an ordered key. Keys iterate ascending; values
// sharing a key keep their insertion order.
type Index[K cmp.Ordered, V any] struct {
	keys   []K
	groups map[K][]V
}

// NewIndex groups items by key.
func NewIndex[K cmp.Ordered, V any](items []V, key func(V) K) *Index[K, V] {
	ix := &Index[K, V]{groups: make(map[K][]V)}
	for _, it := range items {
		ix.add(key(it), it)
	}
	slices.Sort(ix.keys)
	return ix
}

func (ix *Index[K, V]) add(k K, v V) {
	if _, ok := ix.groups[k]; !ok {
		ix.keys = append(ix.keys, k)
	}
	ix.groups[k] = append(ix.groups[k], v)
}

// Keys returns the distinct keys in ascending order.
func (ix *Index[K, V]) Keys() []K { return ix.keys }

// Get returns the values stored under k.
func (ix *Index[K, V]) Get(k K) []V { return ix.groups[k] }

// Len is the total number of values.
func (ix *Index[K, V]) Len() int {
	n := 0
	for _, g := range ix.groups {
		n += len(g)
	}
	return n
}

// Values flattens the index in key order.
func (ix *Index[K, V]) Values() []V {
	out := make([]V, 0, ix.Len())
	for _, k := range ix.keys {
		out = append(out, ix.groups[k]...)
	}
	return out
}

// Grouped returns an index with exactly one value per key: the values
// stored under that key in ix.
func Grouped[K cmp.Ordered, V any](ix *Index[K, V]) *Index[K, []V] {
	out := &Index[K, []V]{keys: slices.Clone(ix.keys), groups: make(map[K][][]V, len(ix.keys))}
	for _, k := range ix.keys {
		out.groups[k] = [][]V{ix.groups[k]}
	}
	return out
}

// OuterJoin pairs left and right on their key. The output holds the union of
// both key sets. Where both sides have values every left value is combined
// with every right value, left-major; where one side is absent combine gets
// nil for it.
func OuterJoin[K cmp.Ordered, L, R, Out any](left *Index[K, L], right *Index[K, R], combine func(K, *L, *R) Out) *Index[K, Out] {
	keys := append(slices.Clone(left.keys), right.keys...)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	out := &Index[K, Out]{groups: make(map[K][]Out, len(keys))}
	for _, k := range keys {
		ls, rs := left.groups[k], right.groups[k]
		switch {
		case len(rs) == 0:
			for i := range ls {
				out.add(k, combine(k, &ls[i], nil))
			}
		case len(ls) == 0:
			for j := range rs {
				out.add(k, combine(k, nil, &rs[j]))
			}
		default:
			for i := range ls {
				for j := range rs {
					out.add(k, combine(k, &ls[i], &rs[j]))
				}
			}
		}
	}
	return out
}
