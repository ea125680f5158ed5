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
	"sync"

	"github.com/dolthub/doltlog/coreerr"
	"github.com/dolthub/doltlog/value"
)

// Op describes one built-in scalar operator: a name, a minimum arity, a
// variadic flag, and a handler. Built-ins are described as records and
// assembled into a static table at initialization (spec §9 "Operator
// registration"); the expression compiler looks them up by name. The
// extended numeric/string/UUID/time function library is out of scope
// here (spec §1) -- this table only carries the handful of operators
// needed to drive expression evaluation and the end-to-end scenarios of
// spec §8 (arithmetic, comparison, boolean connectives, op_get/
// op_maybe_get). Embedders register additional operators the same way.
type Op struct {
	Name     string
	MinArity int
	Variadic bool
	Fn       func(args []value.Value) (value.Value, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*Op{}
	builtinSet = map[string]bool{}
)

// Register adds op to the process-wide operator table. Shadowing a
// built-in is forbidden, matching the fixed-rule registry's rule in
// spec §9.
func Register(op *Op) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if builtinSet[op.Name] {
		return coreerr.ErrStoredRelationConflict.New(op.Name)
	}
	registry[op.Name] = op
	return nil
}

// Lookup finds a registered operator by name.
func Lookup(name string) (*Op, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	op, ok := registry[name]
	return op, ok
}

func init() {
	for _, op := range builtins() {
		builtinSet[op.Name] = true
		registry[op.Name] = op
	}
}

func define(name string, minArity int, variadic bool, fn func([]value.Value) (value.Value, error)) *Op {
	return &Op{Name: name, MinArity: minArity, Variadic: variadic, Fn: fn}
}

func builtins() []*Op {
	return []*Op{
		define("op_add", 0, true, opAdd),
		define("op_sub", 2, false, opSub),
		define("op_mul", 0, true, opMul),
		define("op_div", 2, false, opDiv),
		define("op_minus", 1, false, opMinus),
		define("op_eq", 2, false, opEq),
		define("op_neq", 2, false, opNeq),
		define("op_lt", 2, false, opCmp(func(c int) bool { return c < 0 })),
		define("op_le", 2, false, opCmp(func(c int) bool { return c <= 0 })),
		define("op_gt", 2, false, opCmp(func(c int) bool { return c > 0 })),
		define("op_ge", 2, false, opCmp(func(c int) bool { return c >= 0 })),
		define("op_and", 0, true, opAnd),
		define("op_or", 0, true, opOr),
		define("op_not", 1, false, opNot),
		define("op_get", 2, false, opGet),
		define("op_maybe_get", 2, false, opMaybeGet),
		define("op_list", 0, true, opList),
		define("op_coalesce", 0, true, opCoalesce),
		define("op_is_in", 2, false, opIsIn),
	}
}

func numArgs(args []value.Value, name string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, ok := a.AsNumeric()
		if !ok {
			return nil, coreerr.ErrTypeMismatch.New(name, "Number", a.Kind().String())
		}
		out[i] = f
	}
	return out, nil
}

func allInt(args []value.Value) ([]int64, bool) {
	out := make([]int64, len(args))
	for i, a := range args {
		iv, ok := a.AsInt()
		if !ok {
			return nil, false
		}
		out[i] = iv
	}
	return out, true
}

func opAdd(args []value.Value) (value.Value, error) {
	if is, ok := allInt(args); ok {
		var sum int64
		for _, i := range is {
			sum += i
		}
		return value.Int(sum), nil
	}
	fs, err := numArgs(args, "op_add")
	if err != nil {
		return value.Value{}, err
	}
	var sum float64
	for _, f := range fs {
		sum += f
	}
	return value.Float(sum), nil
}

func opMul(args []value.Value) (value.Value, error) {
	if is, ok := allInt(args); ok {
		prod := int64(1)
		for _, i := range is {
			prod *= i
		}
		return value.Int(prod), nil
	}
	fs, err := numArgs(args, "op_mul")
	if err != nil {
		return value.Value{}, err
	}
	prod := 1.0
	for _, f := range fs {
		prod *= f
	}
	return value.Float(prod), nil
}

func opSub(args []value.Value) (value.Value, error) {
	if is, ok := allInt(args); ok {
		return value.Int(is[0] - is[1]), nil
	}
	fs, err := numArgs(args, "op_sub")
	if err != nil {
		return value.Value{}, err
	}
	return value.Float(fs[0] - fs[1]), nil
}

func opDiv(args []value.Value) (value.Value, error) {
	fs, err := numArgs(args, "op_div")
	if err != nil {
		return value.Value{}, err
	}
	return value.Float(fs[0] / fs[1]), nil
}

func opMinus(args []value.Value) (value.Value, error) {
	if i, ok := args[0].AsInt(); ok {
		return value.Int(-i), nil
	}
	f, ok := args[0].AsFloat()
	if !ok {
		return value.Value{}, coreerr.ErrTypeMismatch.New("op_minus", "Number", args[0].Kind().String())
	}
	return value.Float(-f), nil
}

func opEq(args []value.Value) (value.Value, error) {
	if c, ok := value.CompareNumeric(args[0], args[1]); ok {
		return value.Bool(c == 0), nil
	}
	return value.Bool(value.Equal(args[0], args[1])), nil
}

func opNeq(args []value.Value) (value.Value, error) {
	v, err := opEq(args)
	if err != nil {
		return value.Value{}, err
	}
	b, _ := v.AsBool()
	return value.Bool(!b), nil
}

func opCmp(pred func(int) bool) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		if c, ok := value.CompareNumeric(args[0], args[1]); ok {
			return value.Bool(pred(c)), nil
		}
		if args[0].Kind() != args[1].Kind() {
			return value.Value{}, coreerr.ErrTypeMismatch.New("comparison", args[0].Kind().String(), args[1].Kind().String())
		}
		return value.Bool(pred(value.Compare(args[0], args[1]))), nil
	}
}

func opAnd(args []value.Value) (value.Value, error) {
	for _, a := range args {
		b, ok := a.AsBool()
		if !ok {
			return value.Value{}, coreerr.ErrTypeMismatch.New("op_and", "Bool", a.Kind().String())
		}
		if !b {
			return value.Bool(false), nil
		}
	}
	return value.Bool(true), nil
}

func opOr(args []value.Value) (value.Value, error) {
	for _, a := range args {
		b, ok := a.AsBool()
		if !ok {
			return value.Value{}, coreerr.ErrTypeMismatch.New("op_or", "Bool", a.Kind().String())
		}
		if b {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

func opNot(args []value.Value) (value.Value, error) {
	b, ok := args[0].AsBool()
	if !ok {
		return value.Value{}, coreerr.ErrTypeMismatch.New("op_not", "Bool", args[0].Kind().String())
	}
	return value.Bool(!b), nil
}

// opGet indexes a List by an Int position; missing keys are fatal (spec
// §7: "Missing keys in op_get are fatal").
func opGet(args []value.Value) (value.Value, error) {
	coll, ok := args[0].AsColl()
	if !ok {
		return value.Value{}, coreerr.ErrTypeMismatch.New("op_get", "List", args[0].Kind().String())
	}
	idx, ok := args[1].AsInt()
	if !ok || idx < 0 || int(idx) >= len(coll) {
		return value.Value{}, coreerr.ErrMissingKey.New(args[1].String())
	}
	return coll[idx], nil
}

// opMaybeGet is op_get but returns Null instead of failing on a missing
// key (spec §7).
func opMaybeGet(args []value.Value) (value.Value, error) {
	v, err := opGet(args)
	if err != nil {
		return value.Null, nil
	}
	return v, nil
}

func opList(args []value.Value) (value.Value, error) {
	cp := make([]value.Value, len(args))
	copy(cp, args)
	return value.List(cp), nil
}

func opCoalesce(args []value.Value) (value.Value, error) {
	for _, a := range args {
		if !a.IsNull() {
			return a, nil
		}
	}
	return value.Null, nil
}

func opIsIn(args []value.Value) (value.Value, error) {
	coll, ok := args[1].AsColl()
	if !ok {
		return value.Value{}, coreerr.ErrTypeMismatch.New("op_is_in", "List/Set", args[1].Kind().String())
	}
	for _, c := range coll {
		if value.Equal(args[0], c) {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}
