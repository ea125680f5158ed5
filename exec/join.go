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

package exec

import (
	"io"
	"strings"

	"github.com/dolthub/doltlog/expr"
	"github.com/dolthub/doltlog/ra"
	"github.com/dolthub/doltlog/value"
)

// keyOf renders the projected join key as a map key. Values compare by
// Equal/Compare, not Go equality, so the key is built from each value's
// canonical String() form rather than the Value struct itself.
func keyOf(row value.Tuple, positions []int) string {
	var b strings.Builder
	for _, p := range positions {
		b.WriteString(row[p].String())
		b.WriteByte('\x00')
	}
	return b.String()
}

// buildInnerJoin picks an execution strategy for n at build time (spec
// §4.4): the unit join and cartesian special cases, a point-lookup /
// prefix-scan strategy when the right side is a keyed storage operator
// and its join keys form a prefix, and a materialized hash join
// otherwise.
func buildInnerJoin(n *ra.InnerJoin, ctx *Context) (RowIter, error) {
	if fixed, ok := n.Left.(*ra.InlineFixed); ok && fixed.IsUnit() && len(n.Join.LeftKeys) == 0 {
		right, err := Build(n.Right, ctx)
		if err != nil {
			return nil, err
		}
		positions := projectPositions(n.Produced, n.EliminateSet())
		return newProjectIter(right, positions), nil
	}

	if len(n.Join.LeftKeys) == 0 {
		return buildCartesian(n, ctx)
	}

	if source, ok, err := tryKeyedLookupSource(n.Right, ctx, n.Join.RightKeys); err != nil {
		return nil, err
	} else if ok && ra.IsPrefix(n.Join.RightKeys) {
		return buildPrefixJoin(n, ctx, source)
	}

	return buildHashJoin(n, ctx)
}

// buildCartesian is the degenerate InnerJoin with no key pairs: every
// left row is paired with every right row (spec §4.4).
func buildCartesian(n *ra.InnerJoin, ctx *Context) (RowIter, error) {
	leftRows, err := drainNode(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	rightRows, err := drainNode(n.Right, ctx)
	if err != nil {
		return nil, err
	}
	positions := projectPositions(n.Produced, n.EliminateSet())
	var out []value.Tuple
	for _, l := range leftRows {
		for _, r := range rightRows {
			combined := append(append(value.Tuple(nil), l...), r...)
			out = append(out, combined.Project(positions))
		}
	}
	return newSliceIter(out), nil
}

// buildHashJoin materializes the right side into buckets keyed by
// Join.RightKeys, then probes one bucket per left row (spec §4.4).
func buildHashJoin(n *ra.InnerJoin, ctx *Context) (RowIter, error) {
	rightRows, err := drainNode(n.Right, ctx)
	if err != nil {
		return nil, err
	}
	buckets := map[string][]value.Tuple{}
	for _, r := range rightRows {
		k := keyOf(r, n.Join.RightKeys)
		buckets[k] = append(buckets[k], r)
	}
	leftIter, err := Build(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	positions := projectPositions(n.Produced, n.EliminateSet())
	var out []value.Tuple
	for {
		l, err := leftIter.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			leftIter.Close()
			return nil, err
		}
		k := keyOf(l, n.Join.LeftKeys)
		for _, r := range buckets[k] {
			combined := append(append(value.Tuple(nil), l...), r...)
			out = append(out, combined.Project(positions))
		}
	}
	leftIter.Close()
	return newSliceIter(out), nil
}

// buildPrefixJoin drives the right side with a direct prefix scan per
// left row instead of materializing it in full (spec §4.4 point lookup
// / prefix scan strategy).
func buildPrefixJoin(n *ra.InnerJoin, ctx *Context, source prefixSource) (RowIter, error) {
	leftIter, err := Build(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	positions := projectPositions(n.Produced, n.EliminateSet())
	var out []value.Tuple
	for {
		l, err := leftIter.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			leftIter.Close()
			return nil, err
		}
		prefix := l.Project(n.Join.LeftKeys)
		rightRows, err := source(prefix)
		if err != nil {
			leftIter.Close()
			return nil, err
		}
		for _, r := range rightRows {
			combined := append(append(value.Tuple(nil), l...), r...)
			out = append(out, combined.Project(positions))
		}
	}
	leftIter.Close()
	return newSliceIter(out), nil
}

// buildNegJoin picks between a prefix-scan-as-filter strategy (when the
// right side is a keyed storage operator whose keys form a prefix) and a
// materialized set-membership test otherwise (spec §4.4).
func buildNegJoin(n *ra.NegJoin, ctx *Context) (RowIter, error) {
	leftIter, err := Build(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	positions := projectPositions(n.Produced, n.EliminateSet())

	if source, ok, err := tryKeyedLookupSource(n.Right, ctx, n.Join.RightKeys); err != nil {
		leftIter.Close()
		return nil, err
	} else if ok && ra.IsPrefix(n.Join.RightKeys) {
		var out []value.Tuple
		for {
			l, err := leftIter.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				leftIter.Close()
				return nil, err
			}
			prefix := l.Project(n.Join.LeftKeys)
			matches, err := source(prefix)
			if err != nil {
				leftIter.Close()
				return nil, err
			}
			if len(matches) == 0 {
				out = append(out, l.Project(positions))
			}
		}
		leftIter.Close()
		return newSliceIter(out), nil
	}

	rightRows, err := drainNode(n.Right, ctx)
	if err != nil {
		leftIter.Close()
		return nil, err
	}
	seen := map[string]bool{}
	for _, r := range rightRows {
		seen[keyOf(r, n.Join.RightKeys)] = true
	}
	var out []value.Tuple
	for {
		l, err := leftIter.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			leftIter.Close()
			return nil, err
		}
		if !seen[keyOf(l, n.Join.LeftKeys)] {
			out = append(out, l.Project(positions))
		}
	}
	leftIter.Close()
	return newSliceIter(out), nil
}

// prefixSource runs a scoped prefix lookup against the keyed operator
// backing a join's right side.
type prefixSource func(prefix value.Tuple) ([]value.Tuple, error)

// tryKeyedLookupSource recognizes a right operand this package can
// drive with a direct keyed lookup (Stored, TempStore) instead of a
// full materialization, picking the point-lookup strategy over the
// prefix-scan one when rightKeys cover the operand's entire row (spec
// §4.4: the two must be separately observable, not collapsed into one
// path). StoredWithValidity falls through to full materialization:
// time-travel semantics require grouping by the non-validity prefix
// before trimming to validAt, which a raw byte-range scan cannot do in
// isolation.
func tryKeyedLookupSource(n ra.Node, ctx *Context, rightKeys []int) (prefixSource, bool, error) {
	switch t := n.(type) {
	case *ra.Stored:
		if len(rightKeys) == len(t.Handle.KeyColumns) {
			return func(key value.Tuple) ([]value.Tuple, error) {
				rows, err := storedPointRow(t.Handle, ctx, key)
				if err != nil {
					return nil, err
				}
				return filterCompiled(rows, t.Compiled, ctx)
			}, true, nil
		}
		return func(prefix value.Tuple) ([]value.Tuple, error) {
			rows, err := storedPrefixRows(t.Handle, ctx, prefix)
			if err != nil {
				return nil, err
			}
			return filterCompiled(rows, t.Compiled, ctx)
		}, true, nil
	case *ra.TempStore:
		if len(rightKeys) == len(t.Produced) {
			return func(key value.Tuple) ([]value.Tuple, error) {
				rows := tempStorePointRow(t, ctx, key)
				return filterCompiled(rows, t.Compiled, ctx)
			}, true, nil
		}
		return func(prefix value.Tuple) ([]value.Tuple, error) {
			rows := tempStorePrefixRows(t, ctx, prefix)
			return filterCompiled(rows, t.Compiled, ctx)
		}, true, nil
	case *ra.StoredWithValidity:
		return nil, false, nil
	default:
		return nil, false, nil
	}
}

func filterCompiled(rows []value.Tuple, compiled []expr.Program, ctx *Context) ([]value.Tuple, error) {
	if len(compiled) == 0 {
		return rows, nil
	}
	preds := compilePredicates(compiled, ctx)
	var out []value.Tuple
	for _, r := range rows {
		ok := true
		for _, p := range preds {
			pass, err := p(r)
			if err != nil {
				return nil, err
			}
			if !pass {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func drainNode(n ra.Node, ctx *Context) ([]value.Tuple, error) {
	it, err := Build(n, ctx)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	return drain(it, 0)
}
