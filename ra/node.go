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

// Package ra is the relational-algebra intermediate representation:
// a tree of physical operators with push-down filters and eliminated
// bindings (spec §4.3). It is the IR half of the split the teacher uses
// between sql/plan (tree shape) and sql/rowexec (execution) -- actual
// row iteration lives in package exec.
package ra

// Node is one physical operator in the compiled RA tree. Every operator
// exposes its binding vector both before and after elimination, and the
// set of bindings it drops (spec §4.3).
type Node interface {
	// BindingsBeforeEliminate is the full set of columns this operator
	// produces, in output order, before any are projected away.
	BindingsBeforeEliminate() []string
	// BindingsAfterEliminate is what this operator's parent actually
	// sees: BindingsBeforeEliminate minus the eliminate set.
	BindingsAfterEliminate() []string
	// EliminateSet names the bindings dropped after this node's step.
	EliminateSet() map[string]bool
	// Children returns this node's operand nodes, for tree walks.
	Children() []Node
	// Explain renders this node and its subtree for the query-plan
	// explain output (spec §8 scenario S4: strategy must be observable).
	Explain(indent string) string
}

// Base is embedded by every concrete operator to implement the
// bindings/eliminate bookkeeping common to all of them.
type Base struct {
	Produced  []string
	Eliminate map[string]bool
}

func NewBase(produced []string) Base {
	return Base{Produced: produced, Eliminate: map[string]bool{}}
}

func (b *Base) BindingsBeforeEliminate() []string { return b.Produced }

func (b *Base) BindingsAfterEliminate() []string {
	out := make([]string, 0, len(b.Produced))
	for _, n := range b.Produced {
		if !b.Eliminate[n] {
			out = append(out, n)
		}
	}
	return out
}

func (b *Base) EliminateSet() map[string]bool { return b.Eliminate }

// positionOf returns the index of name within bindings, or -1.
func positionOf(bindings []string, name string) int {
	for i, b := range bindings {
		if b == name {
			return i
		}
	}
	return -1
}
