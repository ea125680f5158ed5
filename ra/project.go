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
	"fmt"

	"github.com/dolthub/doltlog/expr"
)

// Reorder permutes or selects output columns (spec §4.3 item 5).
// Cosmetic marks a reorder introduced purely to align two operators'
// binding vectors rather than a user-visible column permutation
// (SPEC_FULL §4 item 1); both execute identically, the flag only
// affects explain output.
type Reorder struct {
	Base
	Inner    Node
	Order    []int // position in Inner's after-eliminate output, per output column
	Cosmetic bool
}

func NewReorder(inner Node, newOrder []string) *Reorder {
	innerBindings := inner.BindingsAfterEliminate()
	positions := make([]int, len(newOrder))
	for i, name := range newOrder {
		positions[i] = positionOf(innerBindings, name)
	}
	return &Reorder{Base: NewBase(newOrder), Inner: inner, Order: positions}
}

func (n *Reorder) Children() []Node { return []Node{n.Inner} }

func (n *Reorder) Explain(indent string) string {
	s := fmt.Sprintf("%sReorder(%v, cosmetic=%t)\n", indent, n.Produced, n.Cosmetic)
	return s + n.Inner.Explain(indent+"  ")
}

// Filter is a post-filter with compiled predicates (spec §4.3 item 6).
type Filter struct {
	Base
	Parent     Node
	Predicates []expr.Expr
	Compiled   []expr.Program
}

func NewFilter(parent Node, predicates []expr.Expr) *Filter {
	return &Filter{Base: NewBase(parent.BindingsAfterEliminate()), Parent: parent, Predicates: predicates}
}

func (n *Filter) Children() []Node { return []Node{n.Parent} }

func (n *Filter) Explain(indent string) string {
	s := fmt.Sprintf("%sFilter(%d predicate(s))\n", indent, len(n.Predicates))
	return s + n.Parent.Explain(indent+"  ")
}

// Unification appends a new column (spec §4.3 item 7). When Multi is
// false the new column is Value(tuple); when Multi is true, Value must
// produce a List and the operator flat-maps, one output row per
// element.
type Unification struct {
	Base
	Parent   Node
	Binding  string
	Value    expr.Expr
	Multi    bool
	Compiled expr.Program
}

func NewUnification(parent Node, binding string, value expr.Expr, multi bool) *Unification {
	produced := append(append([]string(nil), parent.BindingsAfterEliminate()...), binding)
	return &Unification{Base: NewBase(produced), Parent: parent, Binding: binding, Value: value, Multi: multi}
}

func (n *Unification) Children() []Node { return []Node{n.Parent} }

func (n *Unification) Explain(indent string) string {
	kind := "single"
	if n.Multi {
		kind = "multi"
	}
	s := fmt.Sprintf("%sUnification(%s := %s, %s)\n", indent, n.Binding, n.Value, kind)
	return s + n.Parent.Explain(indent+"  ")
}
