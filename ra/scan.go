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
	"fmt"

	"github.com/dolthub/doltlog/coreerr"
	"github.com/dolthub/doltlog/expr"
	"github.com/dolthub/doltlog/storage"
	"github.com/dolthub/doltlog/value"
)

// InlineFixed is an in-memory table literal (spec §4.3 item 1). Zero
// bindings with one empty tuple is the unit relation, used as a join
// identity.
type InlineFixed struct {
	Base
	Data []value.Tuple
}

func NewInlineFixed(bindings []string, data []value.Tuple) *InlineFixed {
	return &InlineFixed{Base: NewBase(bindings), Data: data}
}

// Unit is the zero-arity, one-row identity relation used by Unit Join
// (spec §4.4).
func Unit() *InlineFixed {
	return NewInlineFixed(nil, []value.Tuple{{}})
}

func (n *InlineFixed) IsUnit() bool {
	return len(n.Produced) == 0 && len(n.Data) == 1 && len(n.Data[0]) == 0
}

func (n *InlineFixed) Children() []Node { return nil }

func (n *InlineFixed) Explain(indent string) string {
	return fmt.Sprintf("%sInlineFixed(rows=%d, bindings=%v)\n", indent, len(n.Data), n.Produced)
}

// TempStore reads from an epoch store (spec §4.3 item 2). Under the
// fixpoint driver, when DeltaRule equals StorageKey, the delta view is
// read; otherwise the full view.
type TempStore struct {
	Base
	StorageKey string
	Filters    []expr.Expr
	Compiled   []expr.Program
}

func NewTempStore(bindings []string, storageKey string, filters []expr.Expr) *TempStore {
	return &TempStore{Base: NewBase(bindings), StorageKey: storageKey, Filters: filters}
}

func (n *TempStore) Children() []Node { return nil }

func (n *TempStore) Explain(indent string) string {
	return fmt.Sprintf("%sTempStore(%s, bindings=%v)\n", indent, n.StorageKey, n.Produced)
}

// Stored reads from a persistent relation via the storage transaction
// (spec §4.3 item 3). Access level is checked here, at construction
// time, per SPEC_FULL §4 item 4.
type Stored struct {
	Base
	Handle   *storage.Relation
	Filters  []expr.Expr
	Compiled []expr.Program
}

func NewStored(bindings []string, handle *storage.Relation, filters []expr.Expr) (*Stored, error) {
	if handle.Access == storage.Hidden {
		return nil, coreerr.ErrInsufficientAccessLevel.New(handle.Name, storage.ReadOnly.String(), storage.Hidden.String())
	}
	return &Stored{Base: NewBase(bindings), Handle: handle, Filters: filters}, nil
}

func (n *Stored) Children() []Node { return nil }

func (n *Stored) Explain(indent string) string {
	return fmt.Sprintf("%sStored(%s, bindings=%v)\n", indent, n.Handle.Name, n.Produced)
}

// StoredWithValidity is a time-travel scan (spec §4.3 item 4): for each
// distinct key prefix, it returns the most recent row whose Validity
// key column is <= ValidAt.
type StoredWithValidity struct {
	Base
	Handle   *storage.Relation
	Filters  []expr.Expr
	Compiled []expr.Program
	ValidAt  value.Value
}

func NewStoredWithValidity(bindings []string, handle *storage.Relation, filters []expr.Expr, validAt value.Value) (*StoredWithValidity, error) {
	if handle.ValidityColumnIndex() < 0 {
		return nil, coreerr.ErrInvalidTimeTravelScanning.New(handle.Name)
	}
	return &StoredWithValidity{Base: NewBase(bindings), Handle: handle, Filters: filters, ValidAt: validAt}, nil
}

func (n *StoredWithValidity) Children() []Node { return nil }

func (n *StoredWithValidity) Explain(indent string) string {
	return fmt.Sprintf("%sStoredWithValidity(%s @ %s, bindings=%v)\n", indent, n.Handle.Name, n.ValidAt, n.Produced)
}
