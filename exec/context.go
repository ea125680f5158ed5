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

package exec

import (
	"github.com/dolthub/doltlog/expr"
	"github.com/dolthub/doltlog/storage"
	"github.com/dolthub/doltlog/store"
	"github.com/dolthub/doltlog/value"
)

// IndexService is the narrow contract exec needs from an index backend
// (spec §4.3 item 8). Package indexsvc provides a service contract and a
// pilosa-backed adapter for the Lsh case, which engine.go adapts to this
// interface; exec only calls through this interface so the core stays
// opaque to what backs a given index, per spec.
type IndexService interface {
	Search(indexName string, query value.Value) ([]Hit, error)
}

// Hit is one index result row: the index's natural hit columns followed
// by any requested extra bindings (distance, score, field, ...), in the
// order ra.NewIndexSearch's hitBindings/extraBindings were given.
type Hit struct {
	Columns value.Tuple
}

// Context carries everything a Build call needs that is not already
// baked into the ra.Node tree: the storage transaction backing Stored
// and StoredWithValidity scans, the epoch stores backing TempStore
// scans, which storage key (if any) is in delta mode this round, the
// index services keyed by index name, and the scratch space expression
// evaluation reuses across rows (spec §4.1).
type Context struct {
	Txn        storage.Txn
	TempStores map[string]*store.Epoch
	DeltaRule  string
	Indexes    map[string]IndexService
	Scratch    *expr.Scratch
}

func (c *Context) epoch(storageKey string) *store.Epoch {
	if c.TempStores == nil {
		return store.New()
	}
	if e, ok := c.TempStores[storageKey]; ok {
		return e
	}
	return store.New()
}
