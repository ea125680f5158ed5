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

package value

import (
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeKeyRoundTrip(t *testing.T) {
	tuple := Tuple{Int(-7), String("hello"), Bool(true), Float(3.5)}
	buf, err := EncodeKey(42, tuple)
	require.NoError(t, err)

	relID, decoded, err := DecodeKey(buf, len(tuple))
	require.NoError(t, err)
	require.Equal(t, uint64(42), relID)
	require.Equal(t, tuple, decoded)
}

func TestEncodeKeyPreservesOrder(t *testing.T) {
	tuples := []Tuple{
		{Int(-100)},
		{Int(-1)},
		{Int(0)},
		{Int(1)},
		{Int(100)},
	}
	encoded := make([][]byte, len(tuples))
	for i, tup := range tuples {
		b, err := EncodeKey(1, tup)
		require.NoError(t, err)
		encoded[i] = b
	}
	require.True(t, sort.SliceIsSorted(encoded, func(i, j int) bool {
		return bytes.Compare(encoded[i], encoded[j]) < 0
	}))
}

func TestEncodeKeyPreservesOrderForStrings(t *testing.T) {
	tuples := []Tuple{
		{String("")},
		{String("a")},
		{String("aa")},
		{String("aaa")},
		{String("b")},
		{String("ba")},
	}
	encoded := make([][]byte, len(tuples))
	for i, tup := range tuples {
		b, err := EncodeKey(1, tup)
		require.NoError(t, err)
		encoded[i] = b
	}
	require.True(t, sort.SliceIsSorted(encoded, func(i, j int) bool {
		return bytes.Compare(encoded[i], encoded[j]) < 0
	}))

	// "aa" < "b" under Compare (value order) even though "b" is the
	// shorter string; a length-prefixed encoding would sort "b" first.
	aa, err := EncodeKey(1, Tuple{String("aa")})
	require.NoError(t, err)
	b, err := EncodeKey(1, Tuple{String("b")})
	require.NoError(t, err)
	require.Less(t, Compare(String("aa"), String("b")), 0)
	require.True(t, bytes.Compare(aa, b) < 0)
}

func TestEncodeKeyPreservesOrderForStringsContainingNulByte(t *testing.T) {
	lo, err := EncodeKey(1, Tuple{String("a\x00")})
	require.NoError(t, err)
	hi, err := EncodeKey(1, Tuple{String("a\x00b")})
	require.NoError(t, err)
	require.Less(t, Compare(String("a\x00"), String("a\x00b")), 0)
	require.True(t, bytes.Compare(lo, hi) < 0)

	relID, decoded, err := DecodeKey(lo, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(1), relID)
	require.Equal(t, Tuple{String("a\x00")}, decoded)
}

func TestEncodeKeyPreservesOrderForLists(t *testing.T) {
	short := Tuple{List([]Value{Int(1)})}
	long := Tuple{List([]Value{Int(1), Int(2)})}
	shortBytes, err := EncodeKey(1, short)
	require.NoError(t, err)
	longBytes, err := EncodeKey(1, long)
	require.NoError(t, err)

	require.Less(t, CompareTuple(short, long), 0)
	require.True(t, bytes.Compare(shortBytes, longBytes) < 0)
}

func TestRelationKeyRangeIsHalfOpenAndContiguous(t *testing.T) {
	lo, hi := RelationKeyRange(7)
	key, err := EncodeKey(7, Tuple{String("x")})
	require.NoError(t, err)
	require.True(t, bytes.Compare(lo, key) <= 0)
	require.True(t, bytes.Compare(key, hi) < 0)

	otherKey, err := EncodeKey(8, Tuple{String("x")})
	require.NoError(t, err)
	require.True(t, bytes.Compare(hi, otherKey) <= 0)
}

func TestParseNumericLiteral(t *testing.T) {
	v, err := ParseNumericLiteral("42")
	require.NoError(t, err)
	i, ok := v.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(42), i)

	v, err = ParseNumericLiteral("3.5")
	require.NoError(t, err)
	f, ok := v.AsFloat()
	require.True(t, ok)
	require.Equal(t, 3.5, f)
}
