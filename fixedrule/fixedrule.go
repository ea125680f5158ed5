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

// Package fixedrule is the contract and process-wide registry for fixed
// rules: algorithms (shortest path, connected components, PageRank, ...)
// invoked from a query like any other relation, but implemented in Go
// rather than compiled from the rule language (spec §6, §9).
package fixedrule

import (
	"sync"

	"github.com/dolthub/doltlog/coreerr"
	"github.com/dolthub/doltlog/store"
	"github.com/dolthub/doltlog/value"
)

// Options is the name/value option bag a fixed-rule invocation is
// parameterized with (spec §6: "a fixed rule's arity is itself a
// function of its options").
type Options map[string]value.Value

// Poison is polled by long-running fixed rules so a cancelled or timed
// out query can unwind promptly (spec §5).
type Poison interface {
	Poisoned() bool
}

// Rule is the contract a fixed rule implements. Arity reports the
// output column count for a given option set (since some rules, like
// PageRank, change shape based on options); Run drains its input
// relations and writes result tuples into out.
type Rule interface {
	Arity(opts Options) (int, error)
	Run(inputs []*store.Epoch, opts Options, out *store.Epoch, poison Poison) error
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Rule{}
	builtinSet = map[string]bool{}
)

// Register adds name to the process-wide registry. Shadowing a built-in
// fixed rule is rejected, mirroring expr.Register's protection of
// built-in operators (spec §9).
func Register(name string, rule Rule) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if builtinSet[name] {
		return coreerr.ErrStoredRelationConflict.New(name)
	}
	registry[name] = rule
	return nil
}

func Lookup(name string) (Rule, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	r, ok := registry[name]
	return r, ok
}

func registerBuiltin(name string, rule Rule) {
	builtinSet[name] = true
	registry[name] = rule
}

func init() {
	registerBuiltin("ConnectedComponents", connectedComponentsRule{})
	registerBuiltin("ShortestPathDijkstra", shortestPathRule{})
}
