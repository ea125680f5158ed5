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
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/doltlog/storage"
	"github.com/dolthub/doltlog/value"
)

// memTxn is a minimal in-memory storage.Txn double for exercising the
// mutation step of the pipeline without a real storage backend.
type memTxn struct {
	rows map[string][]byte
}

func newMemTxn() *memTxn { return &memTxn{rows: map[string][]byte{}} }

func (m *memTxn) Get(key []byte) ([]byte, bool, error) {
	v, ok := m.rows[string(key)]
	return v, ok, nil
}

func (m *memTxn) Put(key, value []byte) error {
	m.rows[string(key)] = value
	return nil
}

func (m *memTxn) Del(key []byte) error {
	delete(m.rows, string(key))
	return nil
}

func (m *memTxn) RangeScan(lo, hi []byte) (storage.KVIter, error) {
	var keys []string
	for k := range m.rows {
		b := []byte(k)
		if bytes.Compare(b, lo) >= 0 && bytes.Compare(b, hi) < 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return &memKVIter{txn: m, keys: keys}, nil
}

func (m *memTxn) DelRangeFromPersisted(lo, hi []byte) error {
	for k := range m.rows {
		b := []byte(k)
		if bytes.Compare(b, lo) >= 0 && bytes.Compare(b, hi) < 0 {
			delete(m.rows, k)
		}
	}
	return nil
}

func (m *memTxn) Commit() error { return nil }
func (m *memTxn) Abort() error  { return nil }

type memKVIter struct {
	txn  *memTxn
	keys []string
	pos  int
}

func (it *memKVIter) Next() (storage.KV, bool, error) {
	if it.pos >= len(it.keys) {
		return storage.KV{}, false, nil
	}
	k := it.keys[it.pos]
	it.pos++
	return storage.KV{Key: []byte(k), Value: it.txn.rows[k]}, true, nil
}

func (it *memKVIter) Close() error { return nil }

func row(xs ...int64) value.Tuple {
	t := make(value.Tuple, len(xs))
	for i, x := range xs {
		t[i] = value.Int(x)
	}
	return t
}

func TestApplySortOffsetLimit(t *testing.T) {
	rows := []value.Tuple{row(3), row(1), row(2)}
	limit := 2
	result, err := Apply(rows, []string{"x"}, Options{
		Sorters: []Sorter{{Binding: "x", Direction: Asc}},
		Limit:   &limit,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, []value.Tuple{row(1), row(2)}, result.Rows)
}

func TestApplyOffsetPastEndReturnsEmpty(t *testing.T) {
	rows := []value.Tuple{row(1), row(2)}
	offset := 5
	result, err := Apply(rows, []string{"x"}, Options{Offset: &offset}, nil)
	require.NoError(t, err)
	require.Empty(t, result.Rows)
}

func TestApplyAssertNoneFailsOnNonEmpty(t *testing.T) {
	rows := []value.Tuple{row(1)}
	_, err := Apply(rows, []string{"x"}, Options{Assertion: AssertNone}, nil)
	require.Error(t, err)
}

func TestApplyAssertSomeFailsOnEmpty(t *testing.T) {
	_, err := Apply(nil, []string{"x"}, Options{Assertion: AssertSome}, nil)
	require.Error(t, err)
}

func TestApplyMutationInsertWritesRows(t *testing.T) {
	handle := &storage.Relation{Name: "widgets", ID: 7, KeyColumns: []storage.ColumnDef{{Name: "x"}}}
	txn := newMemTxn()
	rows := []value.Tuple{row(1), row(2)}

	result, err := Apply(rows, []string{"x"}, Options{
		StoreRelation: &StoreRelation{Handle: handle, Op: OpInsert, Returning: ReturningRows},
	}, txn)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)

	for _, r := range rows {
		key, err := value.EncodeKey(handle.ID, r)
		require.NoError(t, err)
		_, found, err := txn.Get(key)
		require.NoError(t, err)
		require.True(t, found)
	}
}

func TestApplyMutationEnsureNotFailsWhenPresent(t *testing.T) {
	handle := &storage.Relation{Name: "widgets", ID: 7, KeyColumns: []storage.ColumnDef{{Name: "x"}}}
	txn := newMemTxn()
	key, err := value.EncodeKey(handle.ID, row(1))
	require.NoError(t, err)
	require.NoError(t, txn.Put(key, nil))

	_, err = Apply([]value.Tuple{row(1)}, []string{"x"}, Options{
		StoreRelation: &StoreRelation{Handle: handle, Op: OpEnsureNot},
	}, txn)
	require.Error(t, err)
}

func TestApplyMutationInsertFailsOnConflict(t *testing.T) {
	handle := &storage.Relation{Name: "widgets", ID: 7, KeyColumns: []storage.ColumnDef{{Name: "x"}}}
	txn := newMemTxn()
	key, err := value.EncodeKey(handle.ID, row(1))
	require.NoError(t, err)
	require.NoError(t, txn.Put(key, nil))

	_, err = Apply([]value.Tuple{row(1)}, []string{"x"}, Options{
		StoreRelation: &StoreRelation{Handle: handle, Op: OpInsert},
	}, txn)
	require.Error(t, err)
}

func TestApplyMutationUpdateFailsOnMissing(t *testing.T) {
	handle := &storage.Relation{Name: "widgets", ID: 7, KeyColumns: []storage.ColumnDef{{Name: "x"}}}
	txn := newMemTxn()

	_, err := Apply([]value.Tuple{row(1)}, []string{"x"}, Options{
		StoreRelation: &StoreRelation{Handle: handle, Op: OpUpdate},
	}, txn)
	require.Error(t, err)
}

func TestApplyMutationUpdateSucceedsWhenPresent(t *testing.T) {
	handle := &storage.Relation{Name: "widgets", ID: 7, KeyColumns: []storage.ColumnDef{{Name: "x"}}}
	txn := newMemTxn()
	key, err := value.EncodeKey(handle.ID, row(1))
	require.NoError(t, err)
	require.NoError(t, txn.Put(key, nil))

	_, err = Apply([]value.Tuple{row(1)}, []string{"x"}, Options{
		StoreRelation: &StoreRelation{Handle: handle, Op: OpUpdate},
	}, txn)
	require.NoError(t, err)
}

func TestApplyMutationPutIsUnconditionalUpsert(t *testing.T) {
	handle := &storage.Relation{Name: "widgets", ID: 7, KeyColumns: []storage.ColumnDef{{Name: "x"}}}
	txn := newMemTxn()
	key, err := value.EncodeKey(handle.ID, row(1))
	require.NoError(t, err)
	require.NoError(t, txn.Put(key, nil))

	// Put must succeed whether or not the key already exists.
	_, err = Apply([]value.Tuple{row(1), row(2)}, []string{"x"}, Options{
		StoreRelation: &StoreRelation{Handle: handle, Op: OpPut},
	}, txn)
	require.NoError(t, err)
}

func TestApplyMutationNotReturningOmitsRows(t *testing.T) {
	handle := &storage.Relation{Name: "widgets", ID: 7, KeyColumns: []storage.ColumnDef{{Name: "x"}}}
	txn := newMemTxn()
	result, err := Apply([]value.Tuple{row(1)}, []string{"x"}, Options{
		StoreRelation: &StoreRelation{Handle: handle, Op: OpInsert, Returning: NotReturning},
	}, txn)
	require.NoError(t, err)
	require.Nil(t, result.Rows)
}
