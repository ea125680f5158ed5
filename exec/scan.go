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
	"github.com/dolthub/doltlog/expr"
	"github.com/dolthub/doltlog/ra"
	"github.com/dolthub/doltlog/storage"
	"github.com/dolthub/doltlog/value"
)

func compilePredicates(progs []expr.Program, ctx *Context) []predicate {
	out := make([]predicate, len(progs))
	for i, prog := range progs {
		prog := prog
		out[i] = func(row value.Tuple) (bool, error) {
			return expr.EvalPred(prog, row, ctx.Scratch, value.Span{})
		}
	}
	return out
}

func buildInlineFixed(n *ra.InlineFixed) RowIter {
	positions := projectPositions(n.Produced, n.EliminateSet())
	return newProjectIter(newSliceIter(n.Data), positions)
}

func buildTempStore(n *ra.TempStore, ctx *Context) RowIter {
	rows := tempStoreRows(n, ctx)
	positions := projectPositions(n.Produced, n.EliminateSet())
	preds := compilePredicates(n.Compiled, ctx)
	return newFilterPredIter(newSliceIter(rows), preds, positions)
}

func tempStoreRows(n *ra.TempStore, ctx *Context) []value.Tuple {
	e := ctx.epoch(n.StorageKey)
	if ctx.DeltaRule == n.StorageKey {
		return e.DeltaIter()
	}
	return e.AllIter()
}

// tempStorePrefixRows is used by the join engine's prefix-scan strategy
// when the keyed side of a join is a TempStore.
func tempStorePrefixRows(n *ra.TempStore, ctx *Context, prefix value.Tuple) []value.Tuple {
	e := ctx.epoch(n.StorageKey)
	if ctx.DeltaRule == n.StorageKey {
		return e.DeltaPrefixIter(prefix)
	}
	return e.PrefixIter(prefix)
}

// tempStorePointRow is the join engine's point-lookup strategy for a
// TempStore right operand: used instead of tempStorePrefixRows when the
// join keys cover the operand's entire row, not just a leading prefix
// (spec §4.4), so the lookup is O(log n) rather than a range scan.
func tempStorePointRow(n *ra.TempStore, ctx *Context, key value.Tuple) []value.Tuple {
	e := ctx.epoch(n.StorageKey)
	if t, ok := e.Get(key, ctx.DeltaRule == n.StorageKey); ok {
		return []value.Tuple{t}
	}
	return nil
}

func buildStored(n *ra.Stored, ctx *Context) (RowIter, error) {
	rows, err := storedRows(n.Handle, ctx)
	if err != nil {
		return nil, err
	}
	positions := projectPositions(n.Produced, n.EliminateSet())
	preds := compilePredicates(n.Compiled, ctx)
	return newFilterPredIter(newSliceIter(rows), preds, positions), nil
}

func storedRows(handle *storage.Relation, ctx *Context) ([]value.Tuple, error) {
	lo, hi := value.RelationKeyRange(handle.ID)
	return scanRange(handle, ctx, lo, hi)
}

// storedPrefixRows is the join engine's prefix-scan strategy: it scans
// only the byte range covering tuples beginning with
// prefix, instead of the whole relation (spec §4.4).
func storedPrefixRows(handle *storage.Relation, ctx *Context, prefix value.Tuple) ([]value.Tuple, error) {
	full, err := value.EncodeKey(handle.ID, prefix)
	if err != nil {
		return nil, err
	}
	hi := incrementBytes(full)
	return scanRange(handle, ctx, full, hi)
}

// storedPointRow is the join engine's point-lookup strategy for a
// Stored right operand: a direct storage.Txn.Get instead of a
// storedPrefixRows range scan, used when the join keys cover the
// relation's entire key (spec §4.4) -- the two distinct strategies
// scenario S4 requires be separately observable.
func storedPointRow(handle *storage.Relation, ctx *Context, key value.Tuple) ([]value.Tuple, error) {
	encoded, err := value.EncodeKey(handle.ID, key)
	if err != nil {
		return nil, err
	}
	_, found, err := ctx.Txn.Get(encoded)
	if err != nil {
		return nil, storage.Wrap(err, "get "+handle.Name)
	}
	if !found {
		return nil, nil
	}
	return []value.Tuple{key}, nil
}

func incrementBytes(b []byte) []byte {
	out := append([]byte(nil), b...)
	for i := len(out) - 1; i >= 0; i-- {
		out[i]++
		if out[i] != 0 {
			return out
		}
	}
	return append(out, 0)
}

func scanRange(handle *storage.Relation, ctx *Context, lo, hi []byte) ([]value.Tuple, error) {
	it, err := ctx.Txn.RangeScan(lo, hi)
	if err != nil {
		return nil, storage.Wrap(err, "scan "+handle.Name)
	}
	defer it.Close()
	var out []value.Tuple
	for {
		kv, ok, err := it.Next()
		if err != nil {
			return nil, storage.Wrap(err, "scan "+handle.Name)
		}
		if !ok {
			break
		}
		_, row, err := value.DecodeKey(kv.Key, handle.Arity())
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func buildStoredWithValidity(n *ra.StoredWithValidity, ctx *Context) (RowIter, error) {
	rows, err := storedRows(n.Handle, ctx)
	if err != nil {
		return nil, err
	}
	validityIdx := n.Handle.ValidityColumnIndex()
	latest := latestPerPrefix(rows, validityIdx, n.ValidAt)
	positions := projectPositions(n.Produced, n.EliminateSet())
	preds := compilePredicates(n.Compiled, ctx)
	return newFilterPredIter(newSliceIter(latest), preds, positions), nil
}

// latestPerPrefix implements the time-travel scan of spec §4.3 item 4:
// rows are already sorted by key, so every distinct key prefix (all
// columns but the trailing Validity column) forms a contiguous run; the
// kept row is the one with the greatest Validity value <= validAt.
func latestPerPrefix(rows []value.Tuple, validityIdx int, validAt value.Value) []value.Tuple {
	if validityIdx < 0 || len(rows) == 0 {
		return rows
	}
	var out []value.Tuple
	i := 0
	for i < len(rows) {
		prefix := rows[i][:validityIdx]
		j := i
		var best value.Tuple
		for j < len(rows) && rows[j][:validityIdx].HasPrefix(prefix) {
			if value.Compare(rows[j][validityIdx], validAt) <= 0 {
				if best == nil || value.Compare(rows[j][validityIdx], best[validityIdx]) > 0 {
					best = rows[j]
				}
			}
			j++
		}
		if best != nil {
			out = append(out, best)
		}
		i = j
	}
	return out
}
