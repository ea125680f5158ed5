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

package ra

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/doltlog/expr"
	"github.com/dolthub/doltlog/value"
)

func TestEliminateTempVarsDropsUnusedFilterInput(t *testing.T) {
	inline := NewInlineFixed([]string{"x", "y"}, []value.Tuple{{value.Int(1), value.Int(2)}})
	filter := NewFilter(inline, []expr.Expr{expr.NewCall("op_gt", expr.NewBinding("y"), &expr.Const{Value: value.Int(0)})})

	EliminateTempVars(filter, map[string]bool{"x": true})

	require.NoError(t, BindIndices(filter))
	require.Equal(t, []string{"x"}, filter.BindingsAfterEliminate())
	require.False(t, inline.EliminateSet()["y"], "y is still needed by the filter's own predicate")
	require.True(t, filter.EliminateSet()["y"], "y is dropped once it leaves the filter")
}

func TestEliminateTempVarsUnificationKeepsReferencedBinding(t *testing.T) {
	inline := NewInlineFixed([]string{"x"}, []value.Tuple{{value.Int(1)}})
	unif := NewUnification(inline, "double", expr.NewCall("op_mul", expr.NewBinding("x"), &expr.Const{Value: value.Int(2)}), false)

	EliminateTempVars(unif, map[string]bool{"double": true})
	require.NoError(t, BindIndices(unif))

	require.Equal(t, []string{"double"}, unif.BindingsAfterEliminate())
	require.False(t, inline.EliminateSet()["x"], "x still referenced by the unification's own value expression")
}

func TestIsPrefix(t *testing.T) {
	require.True(t, IsPrefix([]int{0, 1}))
	require.True(t, IsPrefix(nil))
	require.False(t, IsPrefix([]int{1}))
	require.False(t, IsPrefix([]int{0, 0}))
}
