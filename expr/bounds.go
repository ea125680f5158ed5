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

import "github.com/dolthub/doltlog/value"

// Bound is the tightest (lower, upper) pair a binding is known to fall
// within, both inclusive. Unconstrained dimensions default to
// (Null, Bottom), the minimum and maximum of the total order (spec
// §4.1).
type Bound struct {
	Lower, Upper value.Value
}

func unconstrained() Bound { return Bound{Lower: value.Null, Upper: value.Bottom} }

// ComputeBounds derives, for each name in free, the tightest bound
// implied by the conjunction of filters. Filters must already be
// decomposed into individual conjuncts (spec §4.3: "Conjunctions are
// decomposed before dispatch"). A comparison contributes a bound only
// when one side is a Const and the other is exactly a Binding for a
// free name, optionally wrapped in a monotonic unary (only op_minus is
// recognized as monotonic-and-invertible here); anything else is left
// for the caller to keep as a post-filter predicate -- bound derivation
// never fails, it just produces fewer/looser bounds (spec §7: "Range-
// bound computation failures are not fatal: they degrade to an
// unbounded scan").
func ComputeBounds(filters []Expr, free []string) map[string]Bound {
	out := make(map[string]Bound, len(free))
	for _, name := range free {
		out[name] = unconstrained()
	}
	for _, f := range filters {
		call, ok := f.(*Call)
		if !ok {
			continue
		}
		name, negated, constSide, constOnLeft, ok := matchComparisonOperand(call)
		if !ok || !contains(free, name) {
			continue
		}
		applyComparison(out, name, call.OpName, constSide, negated, constOnLeft)
	}
	return out
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// matchComparisonOperand inspects a binary comparison call and, if
// exactly one side is a Binding (optionally wrapped in op_minus) and the
// other a Const, returns the binding name, whether it was wrapped in a
// sign-inverting unary, the constant value, and which side the constant
// was on.
func matchComparisonOperand(call *Call) (name string, negated bool, constVal value.Value, constOnLeft bool, ok bool) {
	if len(call.Args) != 2 {
		return "", false, value.Value{}, false, false
	}
	switch call.OpName {
	case "op_eq", "op_lt", "op_le", "op_gt", "op_ge":
	default:
		return "", false, value.Value{}, false, false
	}
	left, leftIsBinding, leftNeg := asMonotonicBinding(call.Args[0])
	right, rightIsBinding, rightNeg := asMonotonicBinding(call.Args[1])
	leftConst, leftIsConst := call.Args[0].(*Const)
	rightConst, rightIsConst := call.Args[1].(*Const)

	switch {
	case leftIsBinding && rightIsConst:
		return left, leftNeg, rightConst.Value, false, true
	case rightIsBinding && leftIsConst:
		return right, rightNeg, leftConst.Value, true, true
	default:
		return "", false, value.Value{}, false, false
	}
}

func asMonotonicBinding(e Expr) (name string, ok bool, negated bool) {
	switch v := e.(type) {
	case *Binding:
		return v.Name, true, false
	case *Call:
		if v.OpName == "op_minus" && len(v.Args) == 1 {
			if b, ok2 := v.Args[0].(*Binding); ok2 {
				return b.Name, true, true
			}
		}
	}
	return "", false, false
}

// applyComparison narrows bounds[name] given one resolved comparison.
// direction is normalized so that the logic below always reasons as if
// the binding appears on the left: "binding OP const".
func applyComparison(bounds map[string]Bound, name, opName string, constVal value.Value, negated bool, constWasOnLeft bool) {
	effectiveOp := opName
	if constWasOnLeft {
		effectiveOp = flip(opName)
	}
	if negated {
		// x == -b  <=>  -x == b, and negation reverses <, >.
		constVal = negateValue(constVal)
		effectiveOp = flip(effectiveOp)
	}
	b := bounds[name]
	switch effectiveOp {
	case "op_eq":
		b.Lower, b.Upper = tighterLower(b.Lower, constVal), tighterUpper(b.Upper, constVal)
	case "op_lt", "op_le":
		b.Upper = tighterUpper(b.Upper, constVal)
	case "op_gt", "op_ge":
		b.Lower = tighterLower(b.Lower, constVal)
	}
	bounds[name] = b
}

func flip(op string) string {
	switch op {
	case "op_lt":
		return "op_gt"
	case "op_le":
		return "op_ge"
	case "op_gt":
		return "op_lt"
	case "op_ge":
		return "op_le"
	default:
		return op
	}
}

func negateValue(v value.Value) value.Value {
	if i, ok := v.AsInt(); ok {
		return value.Int(-i)
	}
	if f, ok := v.AsFloat(); ok {
		return value.Float(-f)
	}
	return v
}

func tighterLower(cur, candidate value.Value) value.Value {
	if value.Compare(candidate, cur) > 0 {
		return candidate
	}
	return cur
}

func tighterUpper(cur, candidate value.Value) value.Value {
	if value.Compare(candidate, cur) < 0 {
		return candidate
	}
	return cur
}
