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

import "strings"

// Tuple is an ordered sequence of Value, the unit of storage and of
// every iterator (spec §3).
type Tuple []Value

// CompareTuple orders two tuples lexicographically on their elements, as
// required by spec §3. A shorter tuple that is a strict prefix of a
// longer one sorts first.
func CompareTuple(a, b Tuple) int {
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

// HasPrefix reports whether t begins with exactly the values in prefix.
func (t Tuple) HasPrefix(prefix Tuple) bool {
	if len(prefix) > len(t) {
		return false
	}
	for i, v := range prefix {
		if !Equal(t[i], v) {
			return false
		}
	}
	return true
}

// Project returns a new tuple containing the elements at the given
// positions, in order. Used by Reorder and by elimination.
func (t Tuple) Project(positions []int) Tuple {
	out := make(Tuple, len(positions))
	for i, p := range positions {
		out[i] = t[p]
	}
	return out
}

func (t Tuple) Clone() Tuple {
	out := make(Tuple, len(t))
	copy(out, t)
	return out
}

func (t Tuple) String() string {
	parts := make([]string, len(t))
	for i, v := range t {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Span is a source-code location, attached to Symbols and to errors so
// the core can return structured diagnostics without formatting them
// itself (spec §6 "Error shape").
type Span struct {
	Start int
	End   int
}

// Symbol is a binding name with a source span (spec §3). Names beginning
// with '*' or '~' are generator-produced temporaries; '?' is the
// reserved entry-rule name; names starting with '_' are reserved.
type Symbol struct {
	Name string
	Span Span
}

func (s Symbol) IsTemporary() bool {
	return strings.HasPrefix(s.Name, "*") || strings.HasPrefix(s.Name, "~")
}

func (s Symbol) IsEntry() bool { return s.Name == "?" }

func (s Symbol) IsReserved() bool { return strings.HasPrefix(s.Name, "_") }

func (s Symbol) String() string { return s.Name }
