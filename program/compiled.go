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

package program

import (
	"github.com/dolthub/doltlog/coreerr"
	"github.com/dolthub/doltlog/fixedrule"
	"github.com/dolthub/doltlog/ra"
)

// Aggregator identifies the per-column reducer a compiled rule applies
// when more than one body derivation produces the same key columns
// (spec §4.6). Meet aggregators (Min, Max, earliest-wins Choice) admit
// semi-naive evaluation directly; general aggregators (Count, Sum,
// Collect) require their dependencies fully evaluated first.
type Aggregator struct {
	Name string
	Meet bool
}

// CompiledRule is one disjunct of a rule set: a head binding list, an
// optional per-column aggregator vector (nil for non-aggregating rules),
// and a compiled RA body (spec §3 "Compiled program").
type CompiledRule struct {
	HeadBindings []string
	Aggregators  []Aggregator // len 0 or len(HeadBindings)
	Body         ra.Node
}

// FixedRuleInvocation names a registered fixedrule.Rule plus its typed
// inputs and options (spec §3 "a fixed-rule invocation with typed
// arguments and options").
type FixedRuleInvocation struct {
	RuleName string
	Inputs   []Symbol
	Options  fixedrule.Options
}

// RuleSet is either a non-empty list of CompiledRule sharing arity and
// aggregator structure, or a FixedRuleInvocation -- never both (spec §3
// invariant).
type RuleSet struct {
	Rules      []CompiledRule
	FixedRule  *FixedRuleInvocation
}

func (rs RuleSet) IsFixedRule() bool { return rs.FixedRule != nil }

// Validate checks the spec §3 invariant that every rule in a rule-set
// shares arity and identical aggregator column structure.
func (rs RuleSet) Validate(name string) error {
	if rs.IsFixedRule() {
		return nil
	}
	if len(rs.Rules) == 0 {
		return coreerr.ErrStoredRelationNotFound.New(name)
	}
	arity := len(rs.Rules[0].HeadBindings)
	aggs := rs.Rules[0].Aggregators
	for _, r := range rs.Rules[1:] {
		if len(r.HeadBindings) != arity {
			return coreerr.ErrArityViolation.New(name, arity, len(r.HeadBindings))
		}
		if len(r.Aggregators) != len(aggs) {
			return coreerr.ErrArityViolation.New(name, arity, len(r.HeadBindings))
		}
		for i, a := range r.Aggregators {
			if a != aggs[i] {
				return coreerr.ErrArityViolation.New(name, arity, len(r.HeadBindings))
			}
		}
	}
	return nil
}

// IsMeet reports whether every aggregator column in this rule-set is a
// meet aggregator, the condition under which semi-naive evaluation
// applies directly without waiting on dependencies (spec §4.6).
func (rs RuleSet) IsMeet() bool {
	if rs.IsFixedRule() || len(rs.Rules) == 0 {
		return true
	}
	for _, r := range rs.Rules {
		for _, a := range r.Aggregators {
			if a.Name != "" && !a.Meet {
				return false
			}
		}
	}
	return true
}

// CompiledProgram is the map from magic symbol to rule-set the fixpoint
// driver consumes (spec §3).
type CompiledProgram struct {
	RuleSets map[string]RuleSet // keyed by Symbol.Key()
	Symbols  map[string]Symbol  // Key() -> Symbol, for iteration/logging
}

func NewCompiledProgram() *CompiledProgram {
	return &CompiledProgram{RuleSets: map[string]RuleSet{}, Symbols: map[string]Symbol{}}
}

func (p *CompiledProgram) Add(sym Symbol, rs RuleSet) {
	p.RuleSets[sym.Key()] = rs
	p.Symbols[sym.Key()] = sym
}

func (p *CompiledProgram) Lookup(sym Symbol) (RuleSet, bool) {
	rs, ok := p.RuleSets[sym.Key()]
	return rs, ok
}

// Stratum is a set of rule symbols evaluated together to a fixed point
// after all earlier strata are frozen (spec GLOSSARY "Stratum").
type Stratum struct {
	Symbols []Symbol
}
