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

package expr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/doltlog/value"
)

func mustCompile(t *testing.T, e Expr, index map[string]int) Program {
	t.Helper()
	require.NoError(t, FillBindingIndices(e, index))
	prog, err := Compile(e)
	require.NoError(t, err)
	return prog
}

// TestArithmeticFolding exercises spec §8 scenario S1: "?[a] := a = 1 +
// 2 * 3" should fold to 7.
func TestArithmeticFolding(t *testing.T) {
	e := NewCall("op_add",
		&Const{Value: value.Int(1)},
		NewCall("op_mul", &Const{Value: value.Int(2)}, &Const{Value: value.Int(3)}))
	prog := mustCompile(t, e, nil)
	s := NewScratch()
	got, err := Eval(prog, nil, s)
	require.NoError(t, err)
	i, ok := got.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(7), i)
}

func TestBindingResolution(t *testing.T) {
	b := NewBinding("x")
	index := map[string]int{"x": 1}
	prog := mustCompile(t, b, index)
	s := NewScratch()
	got, err := Eval(prog, value.Tuple{value.Int(10), value.Int(20)}, s)
	require.NoError(t, err)
	i, _ := got.AsInt()
	require.Equal(t, int64(20), i)
}

func TestUnresolvedBindingFails(t *testing.T) {
	b := NewBinding("y")
	err := FillBindingIndices(b, map[string]int{"x": 0})
	require.Error(t, err)
}

func TestAndShortCircuits(t *testing.T) {
	calls := 0
	require.NoError(t, Register(&Op{Name: "count_call", MinArity: 0, Fn: func(args []value.Value) (value.Value, error) {
		calls++
		return value.Bool(true), nil
	}}))
	e := NewAnd(&Const{Value: value.Bool(false)}, NewCall("count_call"))
	prog := mustCompile(t, e, nil)
	s := NewScratch()
	got, err := Eval(prog, nil, s)
	require.NoError(t, err)
	b, _ := got.AsBool()
	require.False(t, b)
	require.Equal(t, 0, calls, "second And argument must not be evaluated once the first is false")
}

func TestOrShortCircuits(t *testing.T) {
	calls := 0
	require.NoError(t, Register(&Op{Name: "count_call2", MinArity: 0, Fn: func(args []value.Value) (value.Value, error) {
		calls++
		return value.Bool(false), nil
	}}))
	e := NewOr(&Const{Value: value.Bool(true)}, NewCall("count_call2"))
	prog := mustCompile(t, e, nil)
	s := NewScratch()
	got, err := Eval(prog, nil, s)
	require.NoError(t, err)
	b, _ := got.AsBool()
	require.True(t, b)
	require.Equal(t, 0, calls)
}

func TestIfBranches(t *testing.T) {
	e := NewIf(&Const{Value: value.Bool(true)}, &Const{Value: value.Int(1)}, &Const{Value: value.Int(2)})
	prog := mustCompile(t, e, nil)
	s := NewScratch()
	got, err := Eval(prog, nil, s)
	require.NoError(t, err)
	i, _ := got.AsInt()
	require.Equal(t, int64(1), i)
}

func TestEvalPredRejectsNonBool(t *testing.T) {
	e := &Const{Value: value.Int(1)}
	prog := mustCompile(t, e, nil)
	s := NewScratch()
	_, err := EvalPred(prog, nil, s, value.Span{})
	require.Error(t, err)
}

func TestOpGetMissingKeyIsFatal(t *testing.T) {
	_, err := opGet([]value.Value{value.List([]value.Value{value.Int(1)}), value.Int(5)})
	require.Error(t, err)
}

func TestOpMaybeGetMissingKeyReturnsNull(t *testing.T) {
	v, err := opMaybeGet([]value.Value{value.List([]value.Value{value.Int(1)}), value.Int(5)})
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestComputeBoundsEquality(t *testing.T) {
	// k = 42
	filter := NewCall("op_eq", NewBinding("k"), &Const{Value: value.Int(42)})
	bounds := ComputeBounds([]Expr{filter}, []string{"k"})
	b := bounds["k"]
	require.True(t, value.Equal(b.Lower, value.Int(42)))
	require.True(t, value.Equal(b.Upper, value.Int(42)))
}

func TestComputeBoundsRange(t *testing.T) {
	filters := []Expr{
		NewCall("op_gt", NewBinding("k"), &Const{Value: value.Int(10)}),
		NewCall("op_le", NewBinding("k"), &Const{Value: value.Int(20)}),
	}
	bounds := ComputeBounds(filters, []string{"k"})
	b := bounds["k"]
	require.True(t, value.Equal(b.Lower, value.Int(10)))
	require.True(t, value.Equal(b.Upper, value.Int(20)))
}

func TestComputeBoundsUnconstrainedDefaults(t *testing.T) {
	bounds := ComputeBounds(nil, []string{"k"})
	b := bounds["k"]
	require.True(t, value.Equal(b.Lower, value.Null))
	require.True(t, value.Equal(b.Upper, value.Bottom))
}

func TestComputeBoundsIgnoresNonMonotonic(t *testing.T) {
	filter := NewCall("op_eq", NewCall("op_add", NewBinding("k"), &Const{Value: value.Int(1)}), &Const{Value: value.Int(5)})
	bounds := ComputeBounds([]Expr{filter}, []string{"k"})
	b := bounds["k"]
	require.True(t, value.Equal(b.Lower, value.Null))
	require.True(t, value.Equal(b.Upper, value.Bottom))
}
