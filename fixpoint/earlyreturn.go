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
	"github.com/dolthub/doltlog/program"
	"github.com/dolthub/doltlog/store"
)

// EarlyReturn is the driver's early-termination check (spec §4.5); it
// holds no rows itself, only a target symbol and a row limit. When the
// output options set a row limit and request no sort, the driver may stop
// iterating the entry rule's stratum as soon as its store holds Limit
// rows, instead of running every rule in that stratum to a full fixed
// point. It only ever short-circuits the stratum containing Symbol --
// earlier strata still need their own full fixed point, since their
// results feed later strata and an incomplete earlier store could
// change what the entry rule derives.
type EarlyReturn struct {
	Symbol program.Symbol
	Limit  int
}

// Hit reports whether Symbol's epoch in stores already holds at least
// Limit rows.
func (r *EarlyReturn) Hit(stores map[string]*store.Epoch) bool {
	if r == nil || r.Limit <= 0 {
		return false
	}
	e, ok := stores[r.Symbol.Key()]
	return ok && e.Len() >= r.Limit
}
