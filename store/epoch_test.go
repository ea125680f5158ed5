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

package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/doltlog/value"
)

func tup(xs ...int64) value.Tuple {
	t := make(value.Tuple, len(xs))
	for i, x := range xs {
		t[i] = value.Int(x)
	}
	return t
}

func TestInsertDedupAndDelta(t *testing.T) {
	e := New()
	require.True(t, e.Insert(tup(1, 2)))
	require.False(t, e.Insert(tup(1, 2)))
	require.True(t, e.Insert(tup(1, 3)))
	require.Len(t, e.DeltaIter(), 2)
	require.Len(t, e.AllIter(), 2)
}

func TestSwapEpochClearsDelta(t *testing.T) {
	e := New()
	e.Insert(tup(1))
	e.SwapEpoch()
	require.Empty(t, e.DeltaIter())
	require.Len(t, e.AllIter(), 1)
	e.Insert(tup(2))
	require.Len(t, e.DeltaIter(), 1)
	require.Len(t, e.AllIter(), 2)
}

func TestPrefixIter(t *testing.T) {
	e := New()
	e.Insert(tup(1, 1))
	e.Insert(tup(1, 2))
	e.Insert(tup(2, 1))
	got := e.PrefixIter(tup(1))
	require.Len(t, got, 2)
	for _, g := range got {
		require.True(t, g.HasPrefix(tup(1)))
	}
}

func TestRangeIter(t *testing.T) {
	e := New()
	for i := int64(0); i < 10; i++ {
		e.Insert(tup(i))
	}
	got := e.RangeIter(tup(3), tup(6))
	require.Len(t, got, 4)
	require.Equal(t, tup(3), got[0])
	require.Equal(t, tup(6), got[3])
}

func TestAllIterSorted(t *testing.T) {
	e := New()
	e.Insert(tup(3))
	e.Insert(tup(1))
	e.Insert(tup(2))
	all := e.AllIter()
	require.Equal(t, []value.Tuple{tup(1), tup(2), tup(3)}, all)
}
