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

// Package fixpoint is the stratified semi-naive evaluation driver (spec
// §4.5, §4.6): it evaluates one stratum at a time, iterating each to a
// fixed point before freezing its result and moving to the next.
package fixpoint

import (
	"io"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/dolthub/doltlog/coreerr"
	"github.com/dolthub/doltlog/exec"
	"github.com/dolthub/doltlog/fixedrule"
	"github.com/dolthub/doltlog/program"
	"github.com/dolthub/doltlog/store"
	"github.com/dolthub/doltlog/value"
)

// Poison is a cooperatively-checked cancellation flag, shared with
// package fixedrule's own Poison contract (spec §5).
type Poison struct {
	flag int32
}

func (p *Poison) Kill()          { atomic.StoreInt32(&p.flag, 1) }
func (p *Poison) Poisoned() bool { return atomic.LoadInt32(&p.flag) == 1 }

// Driver evaluates a compiled program stratum by stratum.
type Driver struct {
	Program     *program.CompiledProgram
	Strata      []program.Stratum
	Ctx         *exec.Context
	Log         *logrus.Logger
	Poison      *Poison
	EarlyReturn *EarlyReturn
}

// Run evaluates every stratum in order, returning the frozen store map
// keyed by Symbol.Key() (spec §4.5 "a stratum's final all view is placed
// into the external store map under its magic symbol").
func (d *Driver) Run() (map[string]*store.Epoch, error) {
	if d.Ctx.TempStores == nil {
		d.Ctx.TempStores = map[string]*store.Epoch{}
	}
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	for si, stratum := range d.Strata {
		log.WithField("stratum", si).WithField("rules", len(stratum.Symbols)).Debug("evaluating stratum")
		for _, sym := range stratum.Symbols {
			if _, ok := d.Ctx.TempStores[sym.Key()]; !ok {
				d.Ctx.TempStores[sym.Key()] = store.New()
			}
		}

		if err := d.runStratum(stratum, log); err != nil {
			return nil, err
		}
	}
	return d.Ctx.TempStores, nil
}

// runStratum iterates a stratum's rule-sets to a fixed point. Each
// round re-derives every rule's body with DeltaRule pointed at that
// rule-set's own symbol, so a directly self-recursive rule reads the
// delta view of the symbol it recurses on rather than a full rescan
// (spec §4.5). A symbol whose rule-set carries Aggregators -- meet
// (min/max/choice) or general (count/sum/collect) alike -- is instead
// fully reduced every round by evalAggregated, since a
// changed contributor can change the reduced value of an existing
// group, not just add a new one (spec §4.6).
func (d *Driver) runStratum(stratum program.Stratum, log *logrus.Logger) error {
	for round := 0; ; round++ {
		if d.Poison != nil && d.Poison.Poisoned() {
			return coreerr.ErrProcessKilled.New()
		}
		changed := false
		for _, sym := range stratum.Symbols {
			rs, ok := d.Program.Lookup(sym)
			if !ok {
				return coreerr.ErrStoredRelationNotFound.New(sym.Name)
			}
			n, err := d.evalOnce(sym, rs)
			if err != nil {
				return err
			}
			if n > 0 {
				changed = true
			}
		}
		log.WithField("round", round).WithField("changed", changed).Trace("semi-naive round")
		if !changed {
			break
		}
		if d.EarlyReturn.Hit(d.Ctx.TempStores) && stratumContains(stratum, d.EarlyReturn.Symbol) {
			log.WithField("round", round).Debug("early return: limit reached without a sort")
			break
		}
		for _, sym := range stratum.Symbols {
			d.Ctx.TempStores[sym.Key()].SwapEpoch()
		}
	}
	return nil
}

func stratumContains(stratum program.Stratum, sym program.Symbol) bool {
	for _, s := range stratum.Symbols {
		if s.Equal(sym) {
			return true
		}
	}
	return false
}

// evalOnce runs every disjunct of one rule-set once and inserts any
// newly derived rows into its epoch, returning how many were new. For
// an aggregated rule-set it returns 1 when the reduced contents changed
// and 0 otherwise.
func (d *Driver) evalOnce(sym program.Symbol, rs program.RuleSet) (int, error) {
	out := d.Ctx.TempStores[sym.Key()]

	if rs.IsFixedRule() {
		inv := rs.FixedRule
		rule, ok := fixedrule.Lookup(inv.RuleName)
		if !ok {
			return 0, coreerr.ErrStoredRelationNotFound.New(inv.RuleName)
		}
		inputs := make([]*store.Epoch, len(inv.Inputs))
		for i, s := range inv.Inputs {
			inputs[i] = d.Ctx.TempStores[s.Key()]
		}
		before := out.Len()
		var poison fixedrule.Poison
		if d.Poison != nil {
			poison = d.Poison
		}
		if err := rule.Run(inputs, inv.Options, out, poison); err != nil {
			return 0, err
		}
		return out.Len() - before, nil
	}

	prevDelta := d.Ctx.DeltaRule
	d.Ctx.DeltaRule = sym.Key()
	defer func() { d.Ctx.DeltaRule = prevDelta }()

	if len(rs.Rules) > 0 && len(rs.Rules[0].Aggregators) > 0 {
		return d.evalAggregated(rs, out)
	}

	total := 0
	for _, rule := range rs.Rules {
		it, err := exec.Build(rule.Body, d.Ctx)
		if err != nil {
			return 0, err
		}
		for {
			row, err := it.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				it.Close()
				return 0, err
			}
			if out.Insert(row) {
				total++
			}
		}
		it.Close()
	}
	return total, nil
}

// evalAggregated runs every disjunct of an aggregated rule-set and
// collapses their rows to one row per key-column group (spec §4.6).
// Unlike plain insertion, this replaces the epoch's whole "all" view
// each round. A meet rule-set (min/max/choice) pools the new rows with
// the epoch's current contents, since a meet aggregator only ever
// tightens a stored value. A general aggregator (count/sum/collect)
// folds only the rows its body derives in this round, so a previously
// reduced row is never counted into its own group again.
func (d *Driver) evalAggregated(rs program.RuleSet, out *store.Epoch) (int, error) {
	var pooled []value.Tuple
	if rs.IsMeet() {
		pooled = append(pooled, out.AllIter()...)
	}
	for _, rule := range rs.Rules {
		it, err := exec.Build(rule.Body, d.Ctx)
		if err != nil {
			return 0, err
		}
		for {
			row, err := it.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				it.Close()
				return 0, err
			}
			pooled = append(pooled, row)
		}
		it.Close()
	}

	reduced, err := rs.Rules[0].Reduce(pooled)
	if err != nil {
		return 0, err
	}
	if out.ReplaceAll(reduced) {
		return 1, nil
	}
	return 0, nil
}
