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

package exec

import (
	"github.com/dolthub/doltlog/coreerr"
	"github.com/dolthub/doltlog/expr"
	"github.com/dolthub/doltlog/ra"
	"github.com/dolthub/doltlog/value"
)

type indexSearchIter struct {
	parent    RowIter
	n         *ra.IndexSearch
	ctx       *Context
	svc       IndexService
	queryIdx  int
	positions []int
	pending   []value.Tuple
}

func buildIndexSearch(n *ra.IndexSearch, parent RowIter, ctx *Context) (RowIter, error) {
	svc, ok := ctx.Indexes[n.IndexName]
	if !ok {
		return nil, coreerr.ErrStoredRelationNotFound.New(n.IndexName)
	}
	return &indexSearchIter{
		parent:    parent,
		n:         n,
		ctx:       ctx,
		svc:       svc,
		queryIdx:  positionOfName(n.Parent.BindingsAfterEliminate(), n.QueryColumn),
		positions: projectPositions(n.Produced, n.EliminateSet()),
	}, nil
}

func (it *indexSearchIter) Next() (value.Tuple, error) {
	for {
		if len(it.pending) > 0 {
			row := it.pending[0]
			it.pending = it.pending[1:]
			return row, nil
		}
		row, err := it.parent.Next()
		if err != nil {
			return nil, err
		}
		query := row[it.queryIdx]
		hits, err := it.svc.Search(it.n.IndexName, query)
		if err != nil {
			return nil, err
		}
		for _, h := range hits {
			full := append(append(value.Tuple(nil), row...), h.Columns...)
			if it.n.Compiled != nil {
				ok, err := expr.EvalPred(it.n.Compiled, full, it.ctx.Scratch, value.Span{})
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
			}
			it.pending = append(it.pending, full.Project(it.positions))
		}
	}
}

func (it *indexSearchIter) Close() error { return it.parent.Close() }

func positionOfName(bindings []string, name string) int {
	for i, n := range bindings {
		if n == name {
			return i
		}
	}
	return -1
}
