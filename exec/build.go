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
	"fmt"

	"github.com/dolthub/doltlog/ra"
)

// Build compiles a ra.Node subtree into a RowIter, recursing into
// children before choosing this node's own execution strategy (spec
// §4.4: join strategy selection happens here, at build time, not inside
// the iterator's Next()).
func Build(n ra.Node, ctx *Context) (RowIter, error) {
	switch t := n.(type) {
	case *ra.InlineFixed:
		return buildInlineFixed(t), nil

	case *ra.TempStore:
		return buildTempStore(t, ctx), nil

	case *ra.Stored:
		return buildStored(t, ctx)

	case *ra.StoredWithValidity:
		return buildStoredWithValidity(t, ctx)

	case *ra.Reorder:
		inner, err := Build(t.Inner, ctx)
		if err != nil {
			return nil, err
		}
		return buildReorder(t, inner), nil

	case *ra.Filter:
		parent, err := Build(t.Parent, ctx)
		if err != nil {
			return nil, err
		}
		return buildFilter(t, parent, ctx), nil

	case *ra.Unification:
		parent, err := Build(t.Parent, ctx)
		if err != nil {
			return nil, err
		}
		return buildUnification(t, parent, ctx), nil

	case *ra.IndexSearch:
		parent, err := Build(t.Parent, ctx)
		if err != nil {
			return nil, err
		}
		return buildIndexSearch(t, parent, ctx)

	case *ra.InnerJoin:
		return buildInnerJoin(t, ctx)

	case *ra.NegJoin:
		return buildNegJoin(t, ctx)

	default:
		return nil, fmt.Errorf("exec: unknown ra.Node type %T", n)
	}
}
