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

import "github.com/dolthub/doltlog/expr"

// EliminateTempVars is the top-down pass of spec §4.3: "an operator adds
// to its eliminate-set every binding it produces that is not in the
// caller's used set unioned with bindings needed by its own
// expressions; it then recurses with the augmented set." used is the
// set of binding names the caller needs out of n's post-elimination
// output.
func EliminateTempVars(n Node, used map[string]bool) {
	switch t := n.(type) {
	case *InlineFixed, *TempStore, *Stored, *StoredWithValidity:
		applyEliminate(n, used)

	case *Reorder:
		applyEliminate(n, used)
		childUsed := map[string]bool{}
		for _, name := range t.Produced {
			childUsed[name] = true
		}
		EliminateTempVars(t.Inner, childUsed)

	case *Filter:
		own := referencedNames(t.Predicates...)
		applyEliminate(n, used)
		EliminateTempVars(t.Parent, unionSets(used, own))

	case *Unification:
		own := referencedNames(t.Value)
		applyEliminate(n, used)
		childUsed := map[string]bool{}
		for name := range used {
			if name != t.Binding {
				childUsed[name] = true
			}
		}
		for name := range own {
			childUsed[name] = true
		}
		EliminateTempVars(t.Parent, childUsed)

	case *IndexSearch:
		own := map[string]bool{t.QueryColumn: true}
		if t.Filter != nil {
			for name := range referencedNames(t.Filter) {
				own[name] = true
			}
		}
		applyEliminate(n, used)
		newCols := map[string]bool{}
		for _, b := range t.ExtraBindings {
			newCols[b] = true
		}
		childUsed := map[string]bool{}
		for name := range used {
			if !newCols[name] {
				childUsed[name] = true
			}
		}
		for name := range own {
			childUsed[name] = true
		}
		EliminateTempVars(t.Parent, childUsed)

	case *InnerJoin:
		applyEliminate(n, used)
		leftNames := setOf(t.Left.BindingsAfterEliminate())
		rightNames := setOf(t.Right.BindingsAfterEliminate())
		leftUsed, rightUsed := map[string]bool{}, map[string]bool{}
		for name := range used {
			if leftNames[name] {
				leftUsed[name] = true
			}
			if rightNames[name] {
				rightUsed[name] = true
			}
		}
		addKeyNames(leftUsed, t.Left.BindingsAfterEliminate(), t.Join.LeftKeys)
		addKeyNames(rightUsed, t.Right.BindingsAfterEliminate(), t.Join.RightKeys)
		EliminateTempVars(t.Left, leftUsed)
		EliminateTempVars(t.Right, rightUsed)

	case *NegJoin:
		applyEliminate(n, used)
		leftUsed := map[string]bool{}
		for name := range used {
			leftUsed[name] = true
		}
		addKeyNames(leftUsed, t.Left.BindingsAfterEliminate(), t.Join.LeftKeys)
		rightUsed := map[string]bool{}
		addKeyNames(rightUsed, t.Right.BindingsAfterEliminate(), t.Join.RightKeys)
		EliminateTempVars(t.Left, leftUsed)
		EliminateTempVars(t.Right, rightUsed)
	}
}

func applyEliminate(n Node, used map[string]bool) {
	base := baseOf(n)
	for _, name := range base.Produced {
		if !used[name] {
			base.Eliminate[name] = true
		}
	}
}

// baseOf extracts the *Base embedded in a concrete node so the shared
// pass can mutate it without a type switch per call site.
func baseOf(n Node) *Base {
	switch t := n.(type) {
	case *InlineFixed:
		return &t.Base
	case *TempStore:
		return &t.Base
	case *Stored:
		return &t.Base
	case *StoredWithValidity:
		return &t.Base
	case *Reorder:
		return &t.Base
	case *Filter:
		return &t.Base
	case *Unification:
		return &t.Base
	case *IndexSearch:
		return &t.Base
	case *InnerJoin:
		return &t.Base
	case *NegJoin:
		return &t.Base
	default:
		panic("ra: unknown node type")
	}
}

func referencedNames(exprs ...expr.Expr) map[string]bool {
	out := map[string]bool{}
	for _, e := range exprs {
		for name := range expr.Bindings(e) {
			out[name] = true
		}
	}
	return out
}

func unionSets(a, b map[string]bool) map[string]bool {
	out := map[string]bool{}
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

func setOf(names []string) map[string]bool {
	out := map[string]bool{}
	for _, n := range names {
		out[n] = true
	}
	return out
}

func addKeyNames(dst map[string]bool, bindings []string, keys []int) {
	for _, k := range keys {
		if k >= 0 && k < len(bindings) {
			dst[bindings[k]] = true
		}
	}
}
