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

// Package value implements the engine's tagged value domain and total
// order, per spec §3 (Value, Tuple) and §4.2 (key encoding).
package value

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Kind identifies which case of the tagged Value variant is populated.
// Case rank order is the order in which cases are listed below; Null is
// the minimum non-Bottom case and Bottom is the maximum case, as required
// by spec §3.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindBytes
	KindUUID
	KindRegex
	KindList
	KindSet
	KindVector
	KindBottom
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindBytes:
		return "Bytes"
	case KindUUID:
		return "UUID"
	case KindRegex:
		return "Regex"
	case KindList:
		return "List"
	case KindSet:
		return "Set"
	case KindVector:
		return "Vector"
	case KindBottom:
		return "Bottom"
	default:
		return "Unknown"
	}
}

// NumKind distinguishes the two Number sub-cases. An Int and a Float
// holding the same magnitude have distinct identity (spec §3).
type NumKind uint8

const (
	NumInt NumKind = iota
	NumFloat
)

// Value is a tagged variant over the domain described in spec §3. It is
// represented as a flat struct rather than an interface so that scalar
// cases (Null, Bool, Number) never allocate, matching the "tagged sum,
// not dynamic dispatch" guidance of spec §9.
type Value struct {
	kind Kind

	b bool

	numKind NumKind
	i       int64
	f       float64

	s     string // String payload, or the source pattern for Regex
	bytes []byte
	uid   uuid.UUID
	regex *regexp.Regexp

	// List, Set and Vector share the coll/floats slices; which is valid
	// is determined by kind.
	coll   []Value
	floats []float64
}

// Null is the singleton minimum non-Bottom value.
var Null = Value{kind: KindNull}

// Bottom is the singleton maximum value.
var Bottom = Value{kind: KindBottom}

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Int(i int64) Value { return Value{kind: KindNumber, numKind: NumInt, i: i} }

func Float(f float64) Value { return Value{kind: KindNumber, numKind: NumFloat, f: f} }

func String(s string) Value { return Value{kind: KindString, s: s} }

func Bytes(b []byte) Value { return Value{kind: KindBytes, bytes: b} }

func UUID(u uuid.UUID) Value { return Value{kind: KindUUID, uid: u} }

// Regex wraps a compiled regular expression. Two Regex values compare by
// their source pattern text.
func Regex(pattern string, re *regexp.Regexp) Value {
	return Value{kind: KindRegex, s: pattern, regex: re}
}

// List builds an ordered-sequence Value. The slice is retained, not
// copied; callers must not mutate it afterwards.
func List(items []Value) Value { return Value{kind: KindList, coll: items} }

// Set builds an ordered-set Value: items are sorted by Compare and
// deduplicated at construction time so that two Sets with the same
// members always compare and encode identically.
func Set(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	sort.Slice(cp, func(i, j int) bool { return Compare(cp[i], cp[j]) < 0 })
	out := cp[:0]
	for i, v := range cp {
		if i == 0 || Compare(out[len(out)-1], v) != 0 {
			out = append(out, v)
		}
	}
	return Value{kind: KindSet, coll: out}
}

// Vector builds a fixed-length float array value.
func Vector(fs []float64) Value { return Value{kind: KindVector, floats: fs} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsBottom() bool { return v.kind == KindBottom }

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) NumKind() (NumKind, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.numKind, true
}

// AsInt returns the Int64 payload. ok is false unless Kind is Number and
// NumKind is NumInt.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindNumber || v.numKind != NumInt {
		return 0, false
	}
	return v.i, true
}

// AsFloat returns the Float64 payload. ok is false unless Kind is Number
// and NumKind is NumFloat.
func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindNumber || v.numKind != NumFloat {
		return 0, false
	}
	return v.f, true
}

// AsNumeric widens either Number sub-case to a float64, for use by
// explicit arithmetic/comparison operators that compare across Int and
// Float (spec §3, §7: "numeric cross-type comparison is defined only for
// explicit arithmetic comparison operators").
func (v Value) AsNumeric() (float64, bool) {
	switch {
	case v.kind != KindNumber:
		return 0, false
	case v.numKind == NumInt:
		return float64(v.i), true
	default:
		return v.f, true
	}
}

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return v.bytes, true
}

func (v Value) AsUUID() (uuid.UUID, bool) {
	if v.kind != KindUUID {
		return uuid.UUID{}, false
	}
	return v.uid, true
}

func (v Value) AsRegex() (*regexp.Regexp, bool) {
	if v.kind != KindRegex {
		return nil, false
	}
	return v.regex, true
}

// AsColl returns the backing slice for List or Set values.
func (v Value) AsColl() ([]Value, bool) {
	if v.kind != KindList && v.kind != KindSet {
		return nil, false
	}
	return v.coll, true
}

func (v Value) AsVector() ([]float64, bool) {
	if v.kind != KindVector {
		return nil, false
	}
	return v.floats, true
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBottom:
		return "⊥"
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindNumber:
		if v.numKind == NumInt {
			return fmt.Sprintf("%d", v.i)
		}
		return fmt.Sprintf("%g", v.f)
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindBytes:
		return fmt.Sprintf("b%x", v.bytes)
	case KindUUID:
		return v.uid.String()
	case KindRegex:
		return "/" + v.s + "/"
	case KindList:
		parts := make([]string, len(v.coll))
		for i, e := range v.coll {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindSet:
		parts := make([]string, len(v.coll))
		for i, e := range v.coll {
			parts[i] = e.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindVector:
		parts := make([]string, len(v.floats))
		for i, f := range v.floats {
			parts[i] = fmt.Sprintf("%g", f)
		}
		return "<" + strings.Join(parts, ", ") + ">"
	default:
		return "?"
	}
}

// floatTotalOrderKey maps a float64 to a uint64 such that ascending
// uint64 order matches the IEEE 754-2008 totalOrder predicate. This
// resolves spec §9's Open Question in favor of IEEE total order for
// storage/sort, reserving numeric cross-type comparison for explicit
// arithmetic comparison operators (Compare vs CompareNumeric below).
func floatTotalOrderKey(f float64) uint64 {
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		return ^bits
	}
	return bits | (1 << 63)
}

// Compare implements the total order of spec §3: first by case rank
// (Kind, with Number further split by NumKind so Int and Float never
// compare equal or cross-compare), then by contents.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindNull, KindBottom:
		return 0
	case KindBool:
		if a.b == b.b {
			return 0
		}
		if !a.b {
			return -1
		}
		return 1
	case KindNumber:
		if a.numKind != b.numKind {
			if a.numKind < b.numKind {
				return -1
			}
			return 1
		}
		if a.numKind == NumInt {
			switch {
			case a.i < b.i:
				return -1
			case a.i > b.i:
				return 1
			default:
				return 0
			}
		}
		ka, kb := floatTotalOrderKey(a.f), floatTotalOrderKey(b.f)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		default:
			return 0
		}
	case KindString:
		return strings.Compare(a.s, b.s)
	case KindBytes:
		return compareBytes(a.bytes, b.bytes)
	case KindUUID:
		return compareBytes(a.uid[:], b.uid[:])
	case KindRegex:
		return strings.Compare(a.s, b.s)
	case KindList, KindSet:
		return compareColl(a.coll, b.coll)
	case KindVector:
		return compareFloats(a.floats, b.floats)
	default:
		return 0
	}
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func compareColl(a, b []Value) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func compareFloats(a, b []float64) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ka, kb := floatTotalOrderKey(a[i]), floatTotalOrderKey(b[i])
		if ka != kb {
			if ka < kb {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// Equal reports whether a and b are identical under the total order.
func Equal(a, b Value) bool { return Compare(a, b) == 0 }

// CompareNumeric compares two Number values by value, widening Int to
// Float as needed, for use by explicit arithmetic comparison operators
// (op_eq, op_lt, ...) as opposed to the case-ranked total order used for
// storage and sorting (spec §3, §7).
func CompareNumeric(a, b Value) (int, bool) {
	af, aok := a.AsNumeric()
	bf, bok := b.AsNumeric()
	if !aok || !bok {
		return 0, false
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	default:
		return 0, true
	}
}
