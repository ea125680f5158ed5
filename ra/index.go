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

	"github.com/dolthub/doltlog/expr"
)

// IndexKind distinguishes the three specialized index backends the core
// treats opaquely (spec §4.3 item 8). Their implementations live behind
// package indexsvc.
type IndexKind int

const (
	HnswIndex IndexKind = iota
	FtsIndex
	LshIndex
)

func (k IndexKind) String() string {
	switch k {
	case HnswIndex:
		return "HnswSearch"
	case FtsIndex:
		return "FtsSearch"
	case LshIndex:
		return "LshSearch"
	default:
		return "UnknownIndexSearch"
	}
}

// IndexSearch consumes a query column from its parent row, calls the
// named index service, and emits one output row per hit with the
// index's natural columns plus optional extra bindings (distance,
// field, score, ...). An optional filter is evaluated on the index hit
// before emission (spec §4.3 item 8).
type IndexSearch struct {
	Base
	Parent        Node
	Kind          IndexKind
	IndexName     string
	QueryColumn   string
	ExtraBindings []string
	Filter        expr.Expr
	Compiled      expr.Program
}

func NewIndexSearch(parent Node, kind IndexKind, indexName, queryColumn string, hitBindings, extraBindings []string, filter expr.Expr) *IndexSearch {
	produced := append(append([]string(nil), parent.BindingsAfterEliminate()...), hitBindings...)
	produced = append(produced, extraBindings...)
	return &IndexSearch{
		Base: NewBase(produced), Parent: parent, Kind: kind, IndexName: indexName,
		QueryColumn: queryColumn, ExtraBindings: extraBindings, Filter: filter,
	}
}

func (n *IndexSearch) Children() []Node { return []Node{n.Parent} }

func (n *IndexSearch) Explain(indent string) string {
	s := fmt.Sprintf("%s%s(%s, query=%s)\n", indent, n.Kind, n.IndexName, n.QueryColumn)
	return s + n.Parent.Explain(indent+"  ")
}
