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

// Package exec is the iterator-execution half of the split the teacher
// keeps between sql/plan (tree shape) and sql/rowexec (row iteration):
// it turns a compiled ra.Node tree into a pull-based RowIter, choosing a
// join strategy per operator at build time (spec §4.4).
package exec

import (
	"io"

	"github.com/dolthub/doltlog/value"
)

// RowIter is the pull-based row iterator every operator builds. Next
// returns io.EOF once exhausted, matching the teacher's sql.RowIter
// convention (confirmed across sql/rowexec/*_test.go).
type RowIter interface {
	Next() (value.Tuple, error)
	Close() error
}

// sliceIter iterates a fixed, already-materialized slice of rows.
type sliceIter struct {
	rows []value.Tuple
	pos  int
}

func newSliceIter(rows []value.Tuple) *sliceIter { return &sliceIter{rows: rows} }

func (it *sliceIter) Next() (value.Tuple, error) {
	if it.pos >= len(it.rows) {
		return nil, io.EOF
	}
	row := it.rows[it.pos]
	it.pos++
	return row, nil
}

func (it *sliceIter) Close() error { return nil }

// projectPositions returns the positions to keep from bindings given an
// eliminate set, in bindings order -- the common "what survives this
// operator's own elimination" computation shared by every build* func.
func projectPositions(bindings []string, eliminate map[string]bool) []int {
	out := make([]int, 0, len(bindings))
	for i, name := range bindings {
		if !eliminate[name] {
			out = append(out, i)
		}
	}
	return out
}

// projectIter wraps an inner iterator, projecting each row onto a fixed
// set of positions.
type projectIter struct {
	inner     RowIter
	positions []int
}

func newProjectIter(inner RowIter, positions []int) RowIter {
	return &projectIter{inner: inner, positions: positions}
}

func (it *projectIter) Next() (value.Tuple, error) {
	row, err := it.inner.Next()
	if err != nil {
		return nil, err
	}
	return row.Project(it.positions), nil
}

func (it *projectIter) Close() error { return it.inner.Close() }

// filterPredIter drops rows that do not satisfy every compiled
// predicate, then projects the survivors.
type filterPredIter struct {
	inner      RowIter
	predicates []predicate
	positions  []int
}

type predicate func(value.Tuple) (bool, error)

func newFilterPredIter(inner RowIter, predicates []predicate, positions []int) RowIter {
	return &filterPredIter{inner: inner, predicates: predicates, positions: positions}
}

func (it *filterPredIter) Next() (value.Tuple, error) {
	for {
		row, err := it.inner.Next()
		if err != nil {
			return nil, err
		}
		ok, err := it.test(row)
		if err != nil {
			return nil, err
		}
		if ok {
			return row.Project(it.positions), nil
		}
	}
}

func (it *filterPredIter) test(row value.Tuple) (bool, error) {
	for _, p := range it.predicates {
		ok, err := p(row)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (it *filterPredIter) Close() error { return it.inner.Close() }

func drain(it RowIter, limit int) ([]value.Tuple, error) {
	var out []value.Tuple
	for limit <= 0 || len(out) < limit {
		row, err := it.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}
