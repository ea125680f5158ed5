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

package output

import (
	"sort"

	"github.com/dolthub/doltlog/coreerr"
	"github.com/dolthub/doltlog/storage"
	"github.com/dolthub/doltlog/value"
)

// Result is what the pipeline hands back to the embedder: the final row
// set (after sort/offset/limit) plus any trigger scripts the mutation
// step fired, for the embedder's own script driver to run, if any (spec
// §9 Open Questions: triggers share the mutating query's snapshot but
// the imperative script driver itself is out of scope here).
type Result struct {
	Rows           []value.Tuple
	FiredTriggers  []string
}

// Apply runs the sort -> offset -> limit -> assertion -> mutation
// pipeline of spec §4.7 over rows, whose columns are named by bindings.
func Apply(rows []value.Tuple, bindings []string, opts Options, txn storage.Txn) (Result, error) {
	rows = applySort(rows, bindings, opts.Sorters)
	rows = applyOffset(rows, opts.Offset)
	rows = applyLimit(rows, opts.Limit)

	if err := applyAssertion(rows, opts.Assertion); err != nil {
		return Result{}, err
	}

	fired, err := applyMutation(rows, opts.StoreRelation, txn)
	if err != nil {
		return Result{}, err
	}

	result := Result{FiredTriggers: fired}
	if opts.StoreRelation == nil || opts.StoreRelation.Returning == ReturningRows {
		result.Rows = rows
	}
	return result, nil
}

func applySort(rows []value.Tuple, bindings []string, sorters []Sorter) []value.Tuple {
	if len(sorters) == 0 {
		return rows
	}
	positions := make([]int, len(sorters))
	for i, s := range sorters {
		positions[i] = indexOf(bindings, s.Binding)
	}
	out := append([]value.Tuple(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		for k, s := range sorters {
			p := positions[k]
			if p < 0 {
				continue
			}
			c := value.Compare(out[i][p], out[j][p])
			if c == 0 {
				continue
			}
			if s.Direction == Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return out
}

func applyOffset(rows []value.Tuple, offset *int) []value.Tuple {
	if offset == nil || *offset <= 0 {
		return rows
	}
	if *offset >= len(rows) {
		return nil
	}
	return rows[*offset:]
}

func applyLimit(rows []value.Tuple, limit *int) []value.Tuple {
	if limit == nil || *limit < 0 || *limit >= len(rows) {
		return rows
	}
	return rows[:*limit]
}

func applyAssertion(rows []value.Tuple, assertion Assertion) error {
	switch assertion {
	case AssertNone:
		if len(rows) != 0 {
			return coreerr.ErrAssertionFailed.New("AssertNone", len(rows))
		}
	case AssertSome:
		if len(rows) == 0 {
			return coreerr.ErrAssertionFailed.New("AssertSome", len(rows))
		}
	}
	return nil
}

func applyMutation(rows []value.Tuple, m *StoreRelation, txn storage.Txn) ([]string, error) {
	if m == nil {
		return nil, nil
	}
	handle := m.Handle

	switch m.Op {
	case OpCreate, OpReplace:
		lo, hi := value.RelationKeyRange(handle.ID)
		if err := txn.DelRangeFromPersisted(lo, hi); err != nil {
			return nil, storage.Wrap(err, "replace "+handle.Name)
		}
		fallthrough
	case OpPut:
		for _, row := range rows {
			key, err := value.EncodeKey(handle.ID, row)
			if err != nil {
				return nil, err
			}
			if err := txn.Put(key, nil); err != nil {
				return nil, storage.Wrap(err, "put "+handle.Name)
			}
		}
		return fireFor(handle, m.Op), nil

	case OpInsert:
		for _, row := range rows {
			key, err := value.EncodeKey(handle.ID, row)
			if err != nil {
				return nil, err
			}
			if _, found, err := txn.Get(key); err != nil {
				return nil, storage.Wrap(err, "insert "+handle.Name)
			} else if found {
				return nil, coreerr.ErrKeyConflict.New(row.String())
			}
			if err := txn.Put(key, nil); err != nil {
				return nil, storage.Wrap(err, "insert "+handle.Name)
			}
		}
		return fireFor(handle, m.Op), nil

	case OpUpdate:
		for _, row := range rows {
			key, err := value.EncodeKey(handle.ID, row)
			if err != nil {
				return nil, err
			}
			if _, found, err := txn.Get(key); err != nil {
				return nil, storage.Wrap(err, "update "+handle.Name)
			} else if !found {
				return nil, coreerr.ErrMissingKey.New(row.String())
			}
			if err := txn.Put(key, nil); err != nil {
				return nil, storage.Wrap(err, "update "+handle.Name)
			}
		}
		return fireFor(handle, m.Op), nil

	case OpRm, OpDelete:
		for _, row := range rows {
			key, err := value.EncodeKey(handle.ID, row)
			if err != nil {
				return nil, err
			}
			if err := txn.Del(key); err != nil {
				return nil, storage.Wrap(err, "rm "+handle.Name)
			}
		}
		return fireFor(handle, m.Op), nil

	case OpEnsure, OpEnsureNot:
		for _, row := range rows {
			key, err := value.EncodeKey(handle.ID, row)
			if err != nil {
				return nil, err
			}
			_, found, err := txn.Get(key)
			if err != nil {
				return nil, storage.Wrap(err, "ensure "+handle.Name)
			}
			if m.Op == OpEnsure && !found {
				return nil, coreerr.ErrAssertionFailed.New("Ensure", 0)
			}
			if m.Op == OpEnsureNot && found {
				return nil, coreerr.ErrAssertionFailed.New("EnsureNot", 1)
			}
		}
		return nil, nil

	default:
		return nil, nil
	}
}

func fireFor(handle *storage.Relation, op MutationOp) []string {
	switch op {
	case OpPut, OpInsert, OpUpdate, OpCreate, OpReplace:
		return handle.PutTriggers.Fire("put")
	case OpRm, OpDelete:
		return handle.RmTriggers.Fire("rm")
	default:
		return nil
	}
}

func indexOf(bindings []string, name string) int {
	for i, b := range bindings {
		if b == name {
			return i
		}
	}
	return -1
}
