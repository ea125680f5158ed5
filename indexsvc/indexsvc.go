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

// Package indexsvc is the opaque Hnsw/Fts/Lsh index-service contract
// exec calls through (spec §4.3 item 8) and one concrete adapter, over
// a pilosa bitmap index, for the Lsh case. The core never imports this
// package directly; an embedder wires a Service into exec.Context.
package indexsvc

import "github.com/dolthub/doltlog/value"

// Hit mirrors exec.Hit; it is redeclared here rather than imported to
// keep this package free of a dependency on package exec (neither
// package imports the other; engine.go converts between the two).
type Hit struct {
	Columns value.Tuple
}

// Service is the contract package exec requires of an index backend.
type Service interface {
	Search(indexName string, query value.Value) ([]Hit, error)
}
