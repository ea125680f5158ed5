// Copyright 2024 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package store implements the ephemeral epoch store described in spec
// §3 and §4.5: an ordered set of tuples with an accumulated ("all") view
// and a per-epoch delta view, used by the fixpoint driver to run
// semi-naive evaluation.
package store

import (
	"sort"

	"github.com/dolthub/doltlog/value"
)

// Epoch is an ephemeral relation: one per rule per query, destroyed
// when the query ends (spec §3).
type Epoch struct {
	all   []value.Tuple // kept sorted by value.CompareTuple
	delta []value.Tuple // tuples inserted during the current epoch
	n     int
}

func New() *Epoch { return &Epoch{} }

// Insert adds t to the store if it is not already present in all,
// returning whether it was newly inserted (spec §4.5).
func (e *Epoch) Insert(t value.Tuple) bool {
	i := sort.Search(len(e.all), func(i int) bool { return value.CompareTuple(e.all[i], t) >= 0 })
	if i < len(e.all) && value.CompareTuple(e.all[i], t) == 0 {
		return false
	}
	e.all = append(e.all, nil)
	copy(e.all[i+1:], e.all[i:])
	e.all[i] = t
	e.delta = append(e.delta, t)
	return true
}

// SwapEpoch increments the epoch counter; the delta view now reflects
// only tuples inserted since the swap (spec §4.5 "swap_epoch()").
func (e *Epoch) SwapEpoch() {
	e.n++
	e.delta = e.delta[:0:0]
}

func (e *Epoch) EpochNumber() int { return e.n }

// ReplaceAll overwrites the all view with rows (sorted here), reporting
// whether the contents actually changed. It backs aggregated rule-sets
// (spec §4.6), which recompute their whole group set every round rather
// than inserting individual rows.
func (e *Epoch) ReplaceAll(rows []value.Tuple) bool {
	sorted := append([]value.Tuple(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return value.CompareTuple(sorted[i], sorted[j]) < 0 })
	if tuplesEqual(e.all, sorted) {
		return false
	}
	e.all = sorted
	e.delta = sorted
	return true
}

func tuplesEqual(a, b []value.Tuple) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if value.CompareTuple(a[i], b[i]) != 0 {
			return false
		}
	}
	return true
}

func (e *Epoch) Len() int { return len(e.all) }

// AllIter returns every tuple in sorted order.
func (e *Epoch) AllIter() []value.Tuple { return e.all }

// DeltaIter returns the tuples inserted since the last SwapEpoch, in
// insertion order.
func (e *Epoch) DeltaIter() []value.Tuple { return e.delta }

// Get is a point lookup for key, distinct from the range-based
// PrefixIter/RangeIter (spec §4.4 point-lookup strategy): it returns the
// one tuple equal to key, if present, searching the delta view when
// delta is true and the sorted all view otherwise.
func (e *Epoch) Get(key value.Tuple, delta bool) (value.Tuple, bool) {
	if delta {
		for _, t := range e.delta {
			if value.CompareTuple(t, key) == 0 {
				return t, true
			}
		}
		return nil, false
	}
	i := sort.Search(len(e.all), func(i int) bool { return value.CompareTuple(e.all[i], key) >= 0 })
	if i < len(e.all) && value.CompareTuple(e.all[i], key) == 0 {
		return e.all[i], true
	}
	return nil, false
}

// PrefixIter returns, in sorted order, every tuple in all whose leading
// elements equal prefix.
func (e *Epoch) PrefixIter(prefix value.Tuple) []value.Tuple {
	lo, hi := prefixRange(e.all, prefix)
	return e.all[lo:hi]
}

// DeltaPrefixIter is PrefixIter restricted to the delta view.
func (e *Epoch) DeltaPrefixIter(prefix value.Tuple) []value.Tuple {
	var out []value.Tuple
	for _, t := range e.delta {
		if t.HasPrefix(prefix) {
			out = append(out, t)
		}
	}
	return out
}

// RangeIter returns every tuple t in all with lo <= t <= hi under
// value.CompareTuple.
func (e *Epoch) RangeIter(lo, hi value.Tuple) []value.Tuple {
	start := sort.Search(len(e.all), func(i int) bool { return value.CompareTuple(e.all[i], lo) >= 0 })
	end := sort.Search(len(e.all), func(i int) bool { return value.CompareTuple(e.all[i], hi) > 0 })
	if start > end {
		start = end
	}
	return e.all[start:end]
}

// DeltaRangeIter is RangeIter restricted to the delta view.
func (e *Epoch) DeltaRangeIter(lo, hi value.Tuple) []value.Tuple {
	var out []value.Tuple
	for _, t := range e.delta {
		if value.CompareTuple(t, lo) >= 0 && value.CompareTuple(t, hi) <= 0 {
			out = append(out, t)
		}
	}
	return out
}

// prefixRange finds the contiguous [lo, hi) range of sorted tuples
// sharing the given leading elements. This relies on value.CompareTuple
// ordering a strict prefix before anything that extends it, so every
// tuple matching prefix forms one contiguous block immediately at or
// after the lower bound of CompareTuple(t, prefix) >= 0.
func prefixRange(sorted []value.Tuple, prefix value.Tuple) (lo, hi int) {
	lo = sort.Search(len(sorted), func(i int) bool {
		return value.CompareTuple(sorted[i], prefix) >= 0
	})
	hi = lo
	for hi < len(sorted) && sorted[hi].HasPrefix(prefix) {
		hi++
	}
	return lo, hi
}
