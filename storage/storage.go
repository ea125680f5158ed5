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

// Package storage declares the narrow contract the core requires of a
// key-value storage engine and its transaction primitives (spec §6).
// Key-value storage engines themselves are out of scope (spec §1); this
// package only states the interface the core programs against.
package storage

import "github.com/pkg/errors"

// KV is one key/value pair as returned by a range scan, in the
// tuple-order-preserving encoding of value.EncodeKey.
type KV struct {
	Key   []byte
	Value []byte
}

// KVIter is a lazy sequence of key/value pairs in ascending byte order.
type KVIter interface {
	// Next returns the next pair, or ok=false at end of the range.
	Next() (kv KV, ok bool, err error)
	Close() error
}

// Txn is the storage transaction contract required by spec §6. All
// methods operate on the tuple-order-preserving byte encoding from
// value.EncodeKey; the storage layer does not otherwise interpret keys.
type Txn interface {
	Get(key []byte) (value []byte, found bool, err error)
	Put(key, value []byte) error
	Del(key []byte) error
	// RangeScan returns a lazy sequence over the half-open range
	// [lo, hi) in ascending byte order.
	RangeScan(lo, hi []byte) (KVIter, error)
	// DelRangeFromPersisted is issued only during commit cleanup (spec
	// §5 "Mutation cleanups... applied atomically as the last step
	// before commit").
	DelRangeFromPersisted(lo, hi []byte) error
	// Commit and Abort are one-shot: each consumes the transaction.
	Commit() error
	Abort() error
}

// Wrap annotates an opaque storage-layer error with context (spec §7
// "Storage error (opaque, passed through from the storage contract)"),
// using github.com/pkg/errors the way the teacher's pre-go-errors.v1
// code paths do. The result is a plain wrapped error, not a
// coreerr.ErrStorage kind; Cause recovers the original error.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, context)
}

// Cause unwraps an error produced by Wrap back to the underlying
// storage-layer error.
func Cause(err error) error {
	return errors.Cause(err)
}
