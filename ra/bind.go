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

// BindIndices is the index-binding pass of spec §4.3: for each operator,
// build the binding-name to position map of the row it sees at
// execution time, and compile every embedded expression against that
// map. After this pass, every node's expressions are purely positional
// and EliminateTempVars must already have run so Eliminate sets are
// final.
func BindIndices(n Node) error {
	for _, child := range n.Children() {
		if err := BindIndices(child); err != nil {
			return err
		}
	}

	switch t := n.(type) {
	case *InlineFixed, *Reorder, *IndexSearch, *InnerJoin, *NegJoin:
		// InlineFixed has no expressions. Reorder's Order is already
		// positional (computed at construction). InnerJoin/NegJoin key
		// lists are positional against their children's after-eliminate
		// bindings, fixed at construction. IndexSearch's filter is
		// compiled right here by bindIndexSearch, against the node's
		// before-eliminate bindings.
		if idx, ok := t.(*IndexSearch); ok {
			return bindIndexSearch(idx)
		}

	case *TempStore:
		index := indexMap(t.Produced)
		compiled := make([]expr.Program, len(t.Filters))
		for i, f := range t.Filters {
			prog, err := expr.CompileFiltered(f, index)
			if err != nil {
				return err
			}
			compiled[i] = prog
		}
		t.Compiled = compiled

	case *Stored:
		index := indexMap(t.Produced)
		compiled := make([]expr.Program, len(t.Filters))
		for i, f := range t.Filters {
			prog, err := expr.CompileFiltered(f, index)
			if err != nil {
				return err
			}
			compiled[i] = prog
		}
		t.Compiled = compiled

	case *StoredWithValidity:
		index := indexMap(t.Produced)
		compiled := make([]expr.Program, len(t.Filters))
		for i, f := range t.Filters {
			prog, err := expr.CompileFiltered(f, index)
			if err != nil {
				return err
			}
			compiled[i] = prog
		}
		t.Compiled = compiled

	case *Filter:
		index := indexMap(t.Parent.BindingsAfterEliminate())
		compiled := make([]expr.Program, len(t.Predicates))
		for i, p := range t.Predicates {
			prog, err := expr.CompileFiltered(p, index)
			if err != nil {
				return err
			}
			compiled[i] = prog
		}
		t.Compiled = compiled

	case *Unification:
		index := indexMap(t.Parent.BindingsAfterEliminate())
		prog, err := expr.CompileFiltered(t.Value, index)
		if err != nil {
			return err
		}
		t.Compiled = prog
	}
	return nil
}

func bindIndexSearch(n *IndexSearch) error {
	if n.Filter == nil {
		return nil
	}
	index := indexMap(n.BindingsBeforeEliminate())
	prog, err := expr.CompileFiltered(n.Filter, index)
	if err != nil {
		return err
	}
	n.Compiled = prog
	return nil
}

func indexMap(bindings []string) map[string]int {
	out := make(map[string]int, len(bindings))
	for i, name := range bindings {
		out[name] = i
	}
	return out
}
