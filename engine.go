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

// Package doltlog ties together value/expr/ra/exec/store/program/
// fixpoint/storage/fixedrule/indexsvc/output into the single entry
// point an embedder calls to run a compiled program (spec §5, §6).
package doltlog

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dolthub/doltlog/coreerr"
	"github.com/dolthub/doltlog/exec"
	"github.com/dolthub/doltlog/expr"
	"github.com/dolthub/doltlog/fixpoint"
	"github.com/dolthub/doltlog/indexsvc"
	"github.com/dolthub/doltlog/output"
	"github.com/dolthub/doltlog/program"
	"github.com/dolthub/doltlog/storage"
	"github.com/dolthub/doltlog/store"
	"github.com/dolthub/doltlog/value"
)

// Engine runs compiled programs against a storage transaction. It holds
// no mutable state of its own; every call to Execute is independent,
// matching the teacher's own stateless top-level Engine shape.
type Engine struct {
	Log *logrus.Logger
}

// NewEngine returns an Engine logging to logrus's standard logger.
func NewEngine() *Engine {
	return &Engine{Log: logrus.StandardLogger()}
}

// Query bundles everything Execute needs to run one compiled program:
// the program itself, its strata in evaluation order, which symbol's
// final store is the query's own result relation, the storage
// transaction backing Stored/StoredWithValidity scans, and the index
// services available to IndexSearch nodes (spec §4.3 item 8).
type Query struct {
	Program *program.CompiledProgram
	Strata  []program.Stratum
	Result  program.Symbol
	Txn     storage.Txn
	Indexes map[string]indexsvc.Service
}

// Result is what Execute returns: the result relation's bindings (in
// head-column order), its rows after the output pipeline has run, and
// any trigger names a mutation fired.
type Result struct {
	Bindings      []string
	Rows          []value.Tuple
	FiredTriggers []string
}

// Execute runs q to a fixed point stratum by stratum, then applies the
// output pipeline (sort/offset/limit/assertion/mutation/returning) to
// the designated result relation's final row set (spec §4.7, §9).
func (e *Engine) Execute(q Query, opts output.Options) (Result, error) {
	log := e.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	rs, ok := q.Program.Lookup(q.Result)
	if !ok {
		return Result{}, coreerr.ErrStoredRelationNotFound.New(q.Result.Name)
	}
	bindings, err := headBindings(q.Result.Name, rs)
	if err != nil {
		return Result{}, err
	}

	poison := &fixpoint.Poison{}
	stop := armTimeout(opts.TimeoutSeconds, poison)
	defer stop()

	if opts.SleepSeconds != nil && *opts.SleepSeconds > 0 {
		time.Sleep(time.Duration(*opts.SleepSeconds * float64(time.Second)))
	}

	ctx := &exec.Context{
		Txn:        q.Txn,
		TempStores: map[string]*store.Epoch{},
		Indexes:    adaptIndexes(q.Indexes),
		Scratch:    expr.NewScratch(),
	}

	driver := &fixpoint.Driver{
		Program:     q.Program,
		Strata:      q.Strata,
		Ctx:         ctx,
		Log:         log,
		Poison:      poison,
		EarlyReturn: earlyReturn(q.Result, opts),
	}

	log.WithField("result", q.Result.Key()).Debug("executing query")
	stores, err := driver.Run()
	if err != nil {
		return Result{}, err
	}

	epoch, ok := stores[q.Result.Key()]
	if !ok {
		return Result{}, coreerr.ErrStoredRelationNotFound.New(q.Result.Name)
	}
	rows := append([]value.Tuple(nil), epoch.AllIter()...)

	out, err := output.Apply(rows, bindings, opts, q.Txn)
	if err != nil {
		return Result{}, err
	}
	return Result{Bindings: bindings, Rows: out.Rows, FiredTriggers: out.FiredTriggers}, nil
}

// headBindings recovers the result relation's head-column names. Every
// rule in a non-fixed-rule RuleSet shares the same arity (checked by
// RuleSet.Validate), so this returns the first rule's head bindings, and
// an empty rule list is an error. A fixed-rule invocation instead names
// its output columns through the registered fixedrule.Rule itself; for
// one, this reports no named columns.
func headBindings(name string, rs program.RuleSet) ([]string, error) {
	if rs.IsFixedRule() {
		return nil, nil
	}
	if len(rs.Rules) == 0 {
		return nil, coreerr.ErrStoredRelationNotFound.New(name)
	}
	return rs.Rules[0].HeadBindings, nil
}

// earlyReturn builds the driver's early-termination check for a limit
// with no sort (spec §4.5): sorting needs the whole result set in hand
// before it can pick the first/last Limit rows, so the early-return
// buffer only applies when no Sorters are requested.
func earlyReturn(result program.Symbol, opts output.Options) *fixpoint.EarlyReturn {
	if opts.Limit == nil || *opts.Limit < 0 || len(opts.Sorters) > 0 {
		return nil
	}
	return &fixpoint.EarlyReturn{Symbol: result, Limit: *opts.Limit}
}

// armTimeout starts a goroutine that kills poison after seconds have
// elapsed, returning a stop func to cancel it once Execute returns
// (spec §5 "a query may be cancelled by timeout or external signal").
func armTimeout(seconds *float64, poison *fixpoint.Poison) func() {
	if seconds == nil || *seconds <= 0 {
		return func() {}
	}
	timer := time.AfterFunc(time.Duration(*seconds*float64(time.Second)), poison.Kill)
	return func() { timer.Stop() }
}

// indexAdapter bridges indexsvc.Service to exec.IndexService. Neither
// package imports the other, so the conversion between their Hit types
// lives here.
type indexAdapter struct {
	svc indexsvc.Service
}

func (a indexAdapter) Search(indexName string, query value.Value) ([]exec.Hit, error) {
	hits, err := a.svc.Search(indexName, query)
	if err != nil {
		return nil, err
	}
	out := make([]exec.Hit, len(hits))
	for i, h := range hits {
		out[i] = exec.Hit{Columns: h.Columns}
	}
	return out, nil
}

func adaptIndexes(in map[string]indexsvc.Service) map[string]exec.IndexService {
	if in == nil {
		return nil
	}
	out := make(map[string]exec.IndexService, len(in))
	for name, svc := range in {
		out[name] = indexAdapter{svc: svc}
	}
	return out
}
