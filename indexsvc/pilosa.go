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

package indexsvc

import (
	"fmt"

	pilosa "github.com/pilosa/go-pilosa"

	"github.com/dolthub/doltlog/coreerr"
	"github.com/dolthub/doltlog/value"
)

// PilosaIndex backs one Lsh index with a pilosa field: bucketed hash
// values are set-membership rows, and Search returns every column
// (record id) set in the bucket the query value hashes to, matching the
// teacher's sql/index/pilosa driver's bitmap-per-bucket layout.
type PilosaIndex struct {
	client *pilosa.Client
	index  *pilosa.Index
	field  *pilosa.Field
	bucket func(value.Value) uint64
}

// NewPilosaIndex opens (creating if absent) a pilosa index/field pair at
// uri and returns a Service backed by it. bucket maps a query value to
// the pilosa row id its LSH bucket was assigned during indexing.
func NewPilosaIndex(uri, indexName, fieldName string, bucket func(value.Value) uint64) (*PilosaIndex, error) {
	client, err := pilosa.NewClient(uri)
	if err != nil {
		return nil, coreerr.ErrStorage.New(err.Error())
	}
	schema, err := client.Schema()
	if err != nil {
		return nil, coreerr.ErrStorage.New(err.Error())
	}
	idx := schema.Index(indexName)
	field := idx.Field(fieldName)
	if err := client.SyncSchema(schema); err != nil {
		return nil, coreerr.ErrStorage.New(err.Error())
	}
	return &PilosaIndex{client: client, index: idx, field: field, bucket: bucket}, nil
}

func (p *PilosaIndex) Search(indexName string, query value.Value) ([]Hit, error) {
	if indexName != p.index.Name() {
		return nil, coreerr.ErrStoredRelationNotFound.New(indexName)
	}
	row := p.bucket(query)
	resp, err := p.client.Query(p.field.Row(row))
	if err != nil {
		return nil, coreerr.ErrStorage.New(err.Error())
	}
	result := resp.Result()
	if result == nil {
		return nil, nil
	}
	cols := result.Row().Columns
	hits := make([]Hit, len(cols))
	for i, c := range cols {
		hits[i] = Hit{Columns: value.Tuple{value.Int(int64(c))}}
	}
	return hits, nil
}

// Put adds recordID to the bucket the indexed value hashes to (called
// by the embedder as rows are written, outside the query path).
func (p *PilosaIndex) Put(recordID uint64, v value.Value) error {
	row := p.bucket(v)
	_, err := p.client.Query(p.field.Set(row, recordID))
	if err != nil {
		return coreerr.ErrStorage.New(err.Error())
	}
	return nil
}

func (p *PilosaIndex) String() string {
	return fmt.Sprintf("PilosaIndex(%s/%s)", p.index.Name(), p.field.Name())
}
