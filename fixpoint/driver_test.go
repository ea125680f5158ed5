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

package fixpoint

import (
	"bytes"
	"io"
	"sort"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/dolthub/doltlog/exec"
	"github.com/dolthub/doltlog/program"
	"github.com/dolthub/doltlog/ra"
	"github.com/dolthub/doltlog/storage"
	"github.com/dolthub/doltlog/value"
)

// memTxn is a minimal in-memory storage.Txn double, mirroring the one
// used by package output and the root engine tests.
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

func (m *memTxn) DelRangeFromPersisted(lo, hi []byte) error { return nil }
func (m *memTxn) Commit() error                             { return nil }
func (m *memTxn) Abort() error                               { return nil }

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

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func tup(vs ...value.Value) value.Tuple { return value.Tuple(vs) }

// TestRunStratumMeetAggregationCollapsesToMinimum reproduces the edges
// {(a,b,5),(a,b,3),(a,b,7)} -> shortest(a,b,cost) scenario: a rule-set
// whose last head column is a min aggregator must collapse all three
// derivations sharing key columns (a,b) down to the single row with the
// lowest cost (spec §4.6).
func TestRunStratumMeetAggregationCollapsesToMinimum(t *testing.T) {
	edge := &storage.Relation{
		Name:       "edge",
		ID:         1,
		KeyColumns: []storage.ColumnDef{{Name: "x"}, {Name: "y"}, {Name: "cost"}},
		Access:     storage.Normal,
	}
	txn := newMemTxn()
	rows := []value.Tuple{
		tup(value.String("a"), value.String("b"), value.Int(5)),
		tup(value.String("a"), value.String("b"), value.Int(3)),
		tup(value.String("a"), value.String("b"), value.Int(7)),
	}
	for _, row := range rows {
		key, err := value.EncodeKey(edge.ID, row)
		require.NoError(t, err)
		require.NoError(t, txn.Put(key, nil))
	}

	body, err := ra.NewStored([]string{"x", "y", "cost"}, edge, nil)
	require.NoError(t, err)
	ra.EliminateTempVars(body, map[string]bool{"x": true, "y": true, "cost": true})
	require.NoError(t, ra.BindIndices(body))

	shortest := program.Symbol{Name: "shortest"}
	ruleSet := program.RuleSet{
		Rules: []program.CompiledRule{{
			HeadBindings: []string{"x", "y", "cost"},
			Aggregators:  []program.Aggregator{{}, {}, {Name: "min", Meet: true}},
			Body:         body,
		}},
	}
	require.NoError(t, ruleSet.Validate("shortest"))
	require.True(t, ruleSet.IsMeet())

	prog := program.NewCompiledProgram()
	prog.Add(shortest, ruleSet)

	driver := &Driver{
		Program: prog,
		Strata:  []program.Stratum{{Symbols: []program.Symbol{shortest}}},
		Ctx:     &exec.Context{Txn: txn},
		Log:     quietLogger(),
	}
	stores, err := driver.Run()
	require.NoError(t, err)

	got := stores[shortest.Key()].AllIter()
	require.Equal(t, []value.Tuple{
		tup(value.String("a"), value.String("b"), value.Int(3)),
	}, got)
}

// TestRunStratumGeneralAggregationCounts exercises a general (non-meet)
// aggregator, which must see every contributing row at once rather than
// tightening incrementally (spec §4.6).
func TestRunStratumGeneralAggregationCounts(t *testing.T) {
	edge := &storage.Relation{
		Name:       "edge",
		ID:         2,
		KeyColumns: []storage.ColumnDef{{Name: "x"}, {Name: "y"}},
		Access:     storage.Normal,
	}
	txn := newMemTxn()
	rows := []value.Tuple{
		tup(value.String("a"), value.String("b")),
		tup(value.String("a"), value.String("c")),
		tup(value.String("z"), value.String("y")),
	}
	for _, row := range rows {
		key, err := value.EncodeKey(edge.ID, row)
		require.NoError(t, err)
		require.NoError(t, txn.Put(key, nil))
	}

	body, err := ra.NewStored([]string{"x", "y"}, edge, nil)
	require.NoError(t, err)
	ra.EliminateTempVars(body, map[string]bool{"x": true, "y": true})
	require.NoError(t, ra.BindIndices(body))

	outDegree := program.Symbol{Name: "out_degree"}
	ruleSet := program.RuleSet{
		Rules: []program.CompiledRule{{
			HeadBindings: []string{"x", "n"},
			Aggregators:  []program.Aggregator{{}, {Name: "count"}},
			Body:         body,
		}},
	}
	require.NoError(t, ruleSet.Validate("out_degree"))
	require.False(t, ruleSet.IsMeet())

	prog := program.NewCompiledProgram()
	prog.Add(outDegree, ruleSet)

	driver := &Driver{
		Program: prog,
		Strata:  []program.Stratum{{Symbols: []program.Symbol{outDegree}}},
		Ctx:     &exec.Context{Txn: txn},
		Log:     quietLogger(),
	}
	stores, err := driver.Run()
	require.NoError(t, err)

	got := stores[outDegree.Key()].AllIter()
	require.Equal(t, []value.Tuple{
		tup(value.String("a"), value.Int(2)),
		tup(value.String("z"), value.Int(1)),
	}, got)
}

// TestDriverRunHonorsPoisonBetweenStrata checks that a pre-poisoned
// Driver fails its first stratum rather than silently evaluating it.
func TestDriverRunHonorsPoisonBetweenStrata(t *testing.T) {
	sym := program.Symbol{Name: "never"}
	ruleSet := program.RuleSet{Rules: []program.CompiledRule{{
		HeadBindings: []string{"x"},
		Body:         ra.NewInlineFixed([]string{"x"}, []value.Tuple{tup(value.Int(1))}),
	}}}
	prog := program.NewCompiledProgram()
	prog.Add(sym, ruleSet)

	poison := &Poison{}
	poison.Kill()

	driver := &Driver{
		Program: prog,
		Strata:  []program.Stratum{{Symbols: []program.Symbol{sym}}},
		Ctx:     &exec.Context{},
		Log:     quietLogger(),
		Poison:  poison,
	}
	_, err := driver.Run()
	require.Error(t, err)
}
