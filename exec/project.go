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

func buildReorder(n *ra.Reorder, inner RowIter) RowIter {
	positions := projectPositions(n.Produced, n.EliminateSet())
	reordered := newProjectIter(inner, n.Order)
	return newProjectIter(reordered, positions)
}

func buildFilter(n *ra.Filter, parent RowIter, ctx *Context) RowIter {
	positions := projectPositions(n.Produced, n.EliminateSet())
	preds := compilePredicates(n.Compiled, ctx)
	return newFilterPredIter(parent, preds, positions)
}

type unificationIter struct {
	parent    RowIter
	n         *ra.Unification
	ctx       *Context
	positions []int
	pending   []value.Tuple
}

func buildUnification(n *ra.Unification, parent RowIter, ctx *Context) RowIter {
	return &unificationIter{
		parent:    parent,
		n:         n,
		ctx:       ctx,
		positions: projectPositions(n.Produced, n.EliminateSet()),
	}
}

func (it *unificationIter) Next() (value.Tuple, error) {
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
		result, err := expr.Eval(it.n.Compiled, row, it.ctx.Scratch)
		if err != nil {
			return nil, err
		}
		if it.n.Multi {
			items, ok := result.AsColl()
			if !ok {
				return nil, coreerr.ErrBadSpreadUnification.New(it.n.Binding)
			}
			for _, v := range items {
				full := append(append(value.Tuple(nil), row...), v)
				it.pending = append(it.pending, full.Project(it.positions))
			}
			continue
		}
		full := append(append(value.Tuple(nil), row...), result)
		return full.Project(it.positions), nil
	}
}

func (it *unificationIter) Close() error { return it.parent.Close() }
