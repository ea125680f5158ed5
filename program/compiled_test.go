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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRuleSetValidateRejectsArityMismatch(t *testing.T) {
	rs := RuleSet{Rules: []CompiledRule{
		{HeadBindings: []string{"x", "y"}},
		{HeadBindings: []string{"x"}},
	}}
	require.Error(t, rs.Validate("mismatched"))
}

func TestRuleSetValidateRejectsAggregatorShapeMismatch(t *testing.T) {
	rs := RuleSet{Rules: []CompiledRule{
		{HeadBindings: []string{"x", "y"}, Aggregators: []Aggregator{{Name: "min", Meet: true}, {}}},
		{HeadBindings: []string{"x", "y"}},
	}}
	require.Error(t, rs.Validate("mixed"))
}

func TestRuleSetValidateAcceptsMatchingShapes(t *testing.T) {
	rs := RuleSet{Rules: []CompiledRule{
		{HeadBindings: []string{"x", "y"}},
		{HeadBindings: []string{"x", "y"}},
	}}
	require.NoError(t, rs.Validate("ok"))
}

func TestIsMeetFalseWhenAnyAggregatorIsGeneral(t *testing.T) {
	rs := RuleSet{Rules: []CompiledRule{
		{HeadBindings: []string{"x", "y"}, Aggregators: []Aggregator{{Name: "min", Meet: true}, {Name: "count", Meet: false}}},
	}}
	require.False(t, rs.IsMeet())
}

func TestIsMeetTrueForFixedRule(t *testing.T) {
	rs := RuleSet{FixedRule: &FixedRuleInvocation{RuleName: "ConnectedComponents"}}
	require.True(t, rs.IsFixedRule())
	require.True(t, rs.IsMeet())
}

func TestSymbolEqualityConsidersAdornmentAndRole(t *testing.T) {
	a := Symbol{Name: "p", Adornment: []bool{true, false}, Role: RoleMagicSeed}
	b := Symbol{Name: "p", Adornment: []bool{true, false}, Role: RoleMagicSeed}
	c := Symbol{Name: "p", Adornment: []bool{false, false}, Role: RoleMagicSeed}

	require.True(t, a.Equal(b))
	require.Equal(t, a.Key(), b.Key())
	require.False(t, a.Equal(c))
	require.NotEqual(t, a.Key(), c.Key())
}
