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

package fixedrule

import (
	"github.com/dolthub/doltlog/coreerr"
	"github.com/dolthub/doltlog/store"
	"github.com/dolthub/doltlog/value"
)

// connectedComponentsRule is the minimal built-in fixed rule: given one
// input relation of (from, to) edges, it emits (node, representative)
// for every node, where representative is the lexicographically least
// node in its connected component.
type connectedComponentsRule struct{}

func (connectedComponentsRule) Arity(Options) (int, error) { return 2, nil }

func (connectedComponentsRule) Run(inputs []*store.Epoch, opts Options, out *store.Epoch, poison Poison) error {
	if len(inputs) != 1 {
		return coreerr.ErrArityViolation.New("ConnectedComponents", 1, len(inputs))
	}
	parent := map[string]value.Value{}
	find := func(k string) string {
		for {
			p, ok := parent[k]
			if !ok {
				return k
			}
			pk := p.String()
			if pk == k {
				return k
			}
			k = pk
		}
	}
	union := func(a, b value.Value) {
		ra, rb := find(a.String()), find(b.String())
		if ra == rb {
			return
		}
		if ra < rb {
			parent[rb] = a
		} else {
			parent[ra] = b
		}
	}
	seen := map[string]value.Value{}
	for _, t := range inputs[0].AllIter() {
		if poison != nil && poison.Poisoned() {
			return coreerr.ErrProcessKilled.New()
		}
		if len(t) < 2 {
			continue
		}
		seen[t[0].String()] = t[0]
		seen[t[1].String()] = t[1]
		if _, ok := parent[t[0].String()]; !ok {
			parent[t[0].String()] = t[0]
		}
		if _, ok := parent[t[1].String()]; !ok {
			parent[t[1].String()] = t[1]
		}
		union(t[0], t[1])
	}
	for k, node := range seen {
		rootKey := find(k)
		root := seen[rootKey]
		out.Insert(value.Tuple{node, root})
	}
	return nil
}

// shortestPathRule is a single-source Dijkstra over one input relation
// of (from, to, weight) edges, parameterized by the "starting" option.
type shortestPathRule struct{}

func (shortestPathRule) Arity(Options) (int, error) { return 2, nil }

func (shortestPathRule) Run(inputs []*store.Epoch, opts Options, out *store.Epoch, poison Poison) error {
	if len(inputs) != 1 {
		return coreerr.ErrArityViolation.New("ShortestPathDijkstra", 1, len(inputs))
	}
	start, ok := opts["starting"]
	if !ok {
		return coreerr.ErrNamedFieldNotFound.New("ShortestPathDijkstra", "starting")
	}

	type edge struct {
		to     value.Value
		weight float64
	}
	adjacency := map[string][]edge{}
	nodeByKey := map[string]value.Value{}
	for _, t := range inputs[0].AllIter() {
		if len(t) < 3 {
			continue
		}
		w, ok := t[2].AsNumeric()
		if !ok {
			return coreerr.ErrTypeMismatch.New("edge weight", "Number", t[2].Kind().String())
		}
		fk, tk := t[0].String(), t[1].String()
		nodeByKey[fk] = t[0]
		nodeByKey[tk] = t[1]
		adjacency[fk] = append(adjacency[fk], edge{to: t[1], weight: w})
	}

	dist := map[string]float64{start.String(): 0}
	nodeByKey[start.String()] = start
	visited := map[string]bool{}

	for {
		if poison != nil && poison.Poisoned() {
			return coreerr.ErrProcessKilled.New()
		}
		cur, curDist, found := pickUnvisitedMin(dist, visited)
		if !found {
			break
		}
		visited[cur] = true
		for _, e := range adjacency[cur] {
			nk := e.to.String()
			nd := curDist + e.weight
			if old, ok := dist[nk]; !ok || nd < old {
				dist[nk] = nd
			}
		}
	}
	for k, d := range dist {
		out.Insert(value.Tuple{nodeByKey[k], value.Float(d)})
	}
	return nil
}

func pickUnvisitedMin(dist map[string]float64, visited map[string]bool) (string, float64, bool) {
	best := ""
	bestDist := 0.0
	found := false
	for k, d := range dist {
		if visited[k] {
			continue
		}
		if !found || d < bestDist {
			best, bestDist, found = k, d, true
		}
	}
	return best, bestDist, found
}
