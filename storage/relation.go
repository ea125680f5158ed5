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

package storage

// AccessLevel gates which operations a relation permits (spec §3).
type AccessLevel int

const (
	Hidden AccessLevel = iota
	ReadOnly
	Protected
	Normal
)

func (a AccessLevel) String() string {
	switch a {
	case Hidden:
		return "Hidden"
	case ReadOnly:
		return "ReadOnly"
	case Protected:
		return "Protected"
	case Normal:
		return "Normal"
	default:
		return "Unknown"
	}
}

// ColumnDef is one key or value column of a persistent relation: a name,
// a type tag (left as a string here -- the core's scalar type system is
// out of scope beyond the Value domain of spec §3), and an optional
// default-generator expression, represented opaquely since expression
// construction belongs to the caller.
type ColumnDef struct {
	Name          string
	Type          string
	DefaultExpr   interface{}
	HasDefault    bool
}

// Triggers holds the scripts registered against one mutation kind. The
// imperative script driver that interprets them is out of scope (spec
// §9 Open Questions); the core only invokes Fire so that an embedder can
// observe the same snapshot as the mutating query.
type Triggers struct {
	scripts []string
}

func (t *Triggers) Register(script string) { t.scripts = append(t.scripts, script) }

func (t *Triggers) Fire(event string) []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.scripts...)
}

// Relation is a persistent relation handle (spec §3): identified by a
// user name and an internal numeric id, carrying key/value column
// lists, an access level, and put/rm/replace trigger sets. Lifecycle is
// owned by the storage layer; the core holds a borrow for the duration
// of a transaction.
type Relation struct {
	Name        string
	ID          uint64
	KeyColumns  []ColumnDef
	ValueColumns []ColumnDef
	Access      AccessLevel

	PutTriggers     Triggers
	RmTriggers      Triggers
	ReplaceTriggers Triggers
}

func (r *Relation) Arity() int { return len(r.KeyColumns) + len(r.ValueColumns) }

// ColumnNames returns every column name, key columns first.
func (r *Relation) ColumnNames() []string {
	out := make([]string, 0, r.Arity())
	for _, c := range r.KeyColumns {
		out = append(out, c.Name)
	}
	for _, c := range r.ValueColumns {
		out = append(out, c.Name)
	}
	return out
}

// FieldIndex returns the position of a named field, or -1 if absent.
func (r *Relation) FieldIndex(name string) int {
	for i, n := range r.ColumnNames() {
		if n == name {
			return i
		}
	}
	return -1
}

// ValidityColumnIndex returns the index of the last key column when its
// type is "Validity", or -1 otherwise. Used by StoredWithValidity to
// validate at compile time (spec §4.3 item 4).
func (r *Relation) ValidityColumnIndex() int {
	if len(r.KeyColumns) == 0 {
		return -1
	}
	last := r.KeyColumns[len(r.KeyColumns)-1]
	if last.Type != "Validity" {
		return -1
	}
	return len(r.KeyColumns) - 1
}
