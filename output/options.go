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

// Package output is the sort/offset/limit/assertion/mutation/returning
// pipeline applied to a query's final row set (spec §4.7).
package output

import "github.com/dolthub/doltlog/storage"

// SortDirection is one sorter's direction.
type SortDirection int

const (
	Asc SortDirection = iota
	Desc
)

// Sorter is one entry of the "sorters" option: a binding name and a
// direction (spec §9 "Input to the core").
type Sorter struct {
	Binding   string
	Direction SortDirection
}

// MutationOp is the kind of mutation store_relation requests.
type MutationOp int

const (
	OpCreate MutationOp = iota
	OpReplace
	OpPut
	OpInsert
	OpUpdate
	OpRm
	OpDelete
	OpEnsure
	OpEnsureNot
)

// Returning selects whether a mutation returns the mutated rows.
type Returning int

const (
	NotReturning Returning = iota
	ReturningRows
)

// StoreRelation is the optional mutation request of spec §9.
type StoreRelation struct {
	Handle    *storage.Relation
	Op        MutationOp
	Returning Returning
}

// Assertion is the optional post-execution row-count check of spec §9
// ("Assertion failure (AssertNone/AssertSome violated)").
type Assertion int

const (
	NoAssertion Assertion = iota
	AssertNone
	AssertSome
)

// Options is the output-options record spec §9 describes as part of
// "Input to the core".
type Options struct {
	Limit          *int
	Offset         *int
	TimeoutSeconds *float64
	SleepSeconds   *float64
	Sorters        []Sorter
	StoreRelation  *StoreRelation
	Assertion      Assertion
}
