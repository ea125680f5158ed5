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
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/doltlog/storage"
)

func strategyOf(t *testing.T, explain string) string {
	t.Helper()
	i := strings.Index(explain, "strategy=")
	require.GreaterOrEqual(t, i, 0, "no strategy= in %q", explain)
	rest := explain[i+len("strategy="):]
	if j := strings.IndexAny(rest, ")\n"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

func edgeRelation() *storage.Relation {
	return &storage.Relation{
		Name:       "edge",
		ID:         1,
		KeyColumns: []storage.ColumnDef{{Name: "x"}, {Name: "y"}},
		Access:     storage.Normal,
	}
}

func TestInnerJoinExplainUnitStrategy(t *testing.T) {
	left := Unit()
	right, err := NewStored([]string{"x", "y"}, edgeRelation(), nil)
	require.NoError(t, err)
	join := NewInnerJoin(left, right, Joiner{})
	require.Equal(t, "unit", strategyOf(t, join.Explain("")))
}

func TestInnerJoinExplainCartesianStrategy(t *testing.T) {
	left := NewInlineFixed([]string{"a"}, nil)
	right := NewInlineFixed([]string{"b"}, nil)
	join := NewInnerJoin(left, right, Joiner{})
	require.Equal(t, "cartesian", strategyOf(t, join.Explain("")))
}

func TestInnerJoinExplainHashJoinStrategy(t *testing.T) {
	left := NewInlineFixed([]string{"a"}, nil)
	right := NewInlineFixed([]string{"b"}, nil)
	join := NewInnerJoin(left, right, Joiner{LeftKeys: []int{0}, RightKeys: []int{0}})
	require.Equal(t, "hash-join", strategyOf(t, join.Explain("")))
}

func TestInnerJoinExplainPointLookupStrategy(t *testing.T) {
	left := NewInlineFixed([]string{"x", "y"}, nil)
	right, err := NewStored([]string{"x", "y"}, edgeRelation(), nil)
	require.NoError(t, err)
	join := NewInnerJoin(left, right, Joiner{LeftKeys: []int{0, 1}, RightKeys: []int{0, 1}})
	require.Equal(t, "point-lookup", strategyOf(t, join.Explain("")))
}

func TestInnerJoinExplainPrefixScanStrategy(t *testing.T) {
	left := NewInlineFixed([]string{"x"}, nil)
	right, err := NewStored([]string{"x", "y"}, edgeRelation(), nil)
	require.NoError(t, err)
	join := NewInnerJoin(left, right, Joiner{LeftKeys: []int{0}, RightKeys: []int{0}})
	require.Equal(t, "prefix-scan", strategyOf(t, join.Explain("")))
}

func TestInnerJoinExplainHashJoinWhenRightKeysNotAPrefix(t *testing.T) {
	left := NewInlineFixed([]string{"y"}, nil)
	right, err := NewStored([]string{"x", "y"}, edgeRelation(), nil)
	require.NoError(t, err)
	join := NewInnerJoin(left, right, Joiner{LeftKeys: []int{0}, RightKeys: []int{1}})
	require.Equal(t, "hash-join", strategyOf(t, join.Explain("")))
}

func TestNegJoinExplainMaterializedSetStrategy(t *testing.T) {
	left := NewInlineFixed([]string{"a"}, nil)
	right := NewInlineFixed([]string{"b"}, nil)
	join := NewNegJoin(left, right, Joiner{LeftKeys: []int{0}, RightKeys: []int{0}})
	require.Equal(t, "materialized-set", strategyOf(t, join.Explain("")))
}

func TestNegJoinExplainPointLookupFilterStrategy(t *testing.T) {
	left := NewInlineFixed([]string{"x", "y"}, nil)
	right, err := NewStored([]string{"x", "y"}, edgeRelation(), nil)
	require.NoError(t, err)
	join := NewNegJoin(left, right, Joiner{LeftKeys: []int{0, 1}, RightKeys: []int{0, 1}})
	require.Equal(t, "point-lookup-filter", strategyOf(t, join.Explain("")))
}

func TestNegJoinExplainPrefixScanFilterStrategy(t *testing.T) {
	left := NewInlineFixed([]string{"x"}, nil)
	right, err := NewStored([]string{"x", "y"}, edgeRelation(), nil)
	require.NoError(t, err)
	join := NewNegJoin(left, right, Joiner{LeftKeys: []int{0}, RightKeys: []int{0}})
	require.Equal(t, "prefix-scan-filter", strategyOf(t, join.Explain("")))
}

func TestNegJoinExplainMaterializedSetForTempStoreNonPrefixKeys(t *testing.T) {
	left := NewInlineFixed([]string{"a"}, nil)
	right := NewTempStore([]string{"a", "b"}, "some_symbol/1", nil)
	join := NewNegJoin(left, right, Joiner{LeftKeys: []int{0}, RightKeys: []int{1}})
	require.Equal(t, "materialized-set", strategyOf(t, join.Explain("")))
}
