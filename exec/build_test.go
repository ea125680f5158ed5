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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/doltlog/expr"
	"github.com/dolthub/doltlog/ra"
	"github.com/dolthub/doltlog/value"
)

func tup(xs ...int64) value.Tuple {
	t := make(value.Tuple, len(xs))
	for i, x := range xs {
		t[i] = value.Int(x)
	}
	return t
}

func drainAll(t *testing.T, it RowIter) []value.Tuple {
	t.Helper()
	var out []value.Tuple
	for {
		row, err := it.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		out = append(out, row)
	}
	return out
}

func newCtx() *Context {
	return &Context{Scratch: expr.NewScratch()}
}

func TestBuildInlineFixedProjectsEliminatedColumns(t *testing.T) {
	n := ra.NewInlineFixed([]string{"x", "y"}, []value.Tuple{tup(1, 2), tup(3, 4)})
	ra.EliminateTempVars(n, map[string]bool{"x": true})
	require.NoError(t, ra.BindIndices(n))

	it, err := Build(n, newCtx())
	require.NoError(t, err)
	rows := drainAll(t, it)
	require.Equal(t, []value.Tuple{tup(1), tup(3)}, rows)
}

func TestBuildFilterKeepsMatchingRows(t *testing.T) {
	src := ra.NewInlineFixed([]string{"x", "y"}, []value.Tuple{tup(1, 2), tup(3, 4), tup(5, 6)})

	gt := expr.NewCall("op_gt", expr.NewBinding("x"), constInt(2))
	f := ra.NewFilter(src, []expr.Expr{gt})
	ra.EliminateTempVars(f, map[string]bool{"x": true, "y": true})
	require.NoError(t, ra.BindIndices(f))

	it, err := Build(f, newCtx())
	require.NoError(t, err)
	rows := drainAll(t, it)
	require.Equal(t, []value.Tuple{tup(3, 4), tup(5, 6)}, rows)
}

func TestBuildInnerJoinHashStrategy(t *testing.T) {
	left := ra.NewInlineFixed([]string{"a", "b"}, []value.Tuple{tup(1, 10), tup(2, 20)})
	right := ra.NewInlineFixed([]string{"c", "d"}, []value.Tuple{tup(1, 100), tup(2, 200), tup(3, 300)})
	join := ra.NewInnerJoin(left, right, ra.Joiner{LeftKeys: []int{0}, RightKeys: []int{0}})
	ra.EliminateTempVars(join, map[string]bool{"a": true, "b": true, "d": true})
	require.NoError(t, ra.BindIndices(join))

	it, err := Build(join, newCtx())
	require.NoError(t, err)
	rows := drainAll(t, it)
	require.ElementsMatch(t, []value.Tuple{tup(1, 10, 100), tup(2, 20, 200)}, rows)
}

func TestBuildNegJoinExcludesMatches(t *testing.T) {
	left := ra.NewInlineFixed([]string{"a"}, []value.Tuple{tup(1), tup(2), tup(3)})
	right := ra.NewInlineFixed([]string{"b"}, []value.Tuple{tup(2)})
	join := ra.NewNegJoin(left, right, ra.Joiner{LeftKeys: []int{0}, RightKeys: []int{0}})
	ra.EliminateTempVars(join, map[string]bool{"a": true})
	require.NoError(t, ra.BindIndices(join))

	it, err := Build(join, newCtx())
	require.NoError(t, err)
	rows := drainAll(t, it)
	require.ElementsMatch(t, []value.Tuple{tup(1), tup(3)}, rows)
}

func constInt(i int64) expr.Expr {
	return &expr.Const{Value: value.Int(i)}
}
