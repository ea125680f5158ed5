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
	"strings"

	"github.com/dolthub/doltlog/coreerr"
	"github.com/dolthub/doltlog/expr"
	"github.com/dolthub/doltlog/value"
)

// Reduce groups rows by this rule's key columns (the head positions
// whose Aggregator.Name is empty) and collapses each group to one row
// by applying the aggregated columns' reducers (spec §4.6). A rule with
// no Aggregators returns rows unchanged -- plain set semantics.
func (r CompiledRule) Reduce(rows []value.Tuple) ([]value.Tuple, error) {
	if len(r.Aggregators) == 0 {
		return rows, nil
	}

	var keyPos, aggPos []int
	for i, a := range r.Aggregators {
		if a.Name == "" {
			keyPos = append(keyPos, i)
		} else {
			aggPos = append(aggPos, i)
		}
	}

	order := make([]string, 0, len(rows))
	groups := map[string][]value.Tuple{}
	for _, row := range rows {
		k := groupKey(row, keyPos)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], row)
	}

	out := make([]value.Tuple, 0, len(order))
	for _, k := range order {
		reduced, err := reduceGroup(groups[k], r.Aggregators, keyPos, aggPos)
		if err != nil {
			return nil, err
		}
		out = append(out, reduced)
	}
	return out, nil
}

func groupKey(row value.Tuple, keyPos []int) string {
	var b strings.Builder
	for _, p := range keyPos {
		b.WriteString(row[p].String())
		b.WriteByte(0)
	}
	return b.String()
}

func reduceGroup(rows []value.Tuple, aggs []Aggregator, keyPos, aggPos []int) (value.Tuple, error) {
	out := make(value.Tuple, len(aggs))
	for _, p := range keyPos {
		out[p] = rows[0][p]
	}
	for _, p := range aggPos {
		v, err := applyAggregator(aggs[p].Name, rows, p)
		if err != nil {
			return nil, err
		}
		out[p] = v
	}
	return out, nil
}

// applyAggregator reduces column p of a group of rows under the named
// aggregator. Min/Max/Choice are meet aggregators (spec §4.6); Count/
// Sum/Collect are general aggregators requiring the full group at once.
// Sum is implemented via expr's registered op_add rather than
// duplicating its int/float promotion rules.
func applyAggregator(name string, rows []value.Tuple, p int) (value.Value, error) {
	switch name {
	case "min":
		best := rows[0][p]
		for _, r := range rows[1:] {
			if value.Compare(r[p], best) < 0 {
				best = r[p]
			}
		}
		return best, nil
	case "max":
		best := rows[0][p]
		for _, r := range rows[1:] {
			if value.Compare(r[p], best) > 0 {
				best = r[p]
			}
		}
		return best, nil
	case "choice":
		return rows[0][p], nil
	case "count":
		return value.Int(int64(len(rows))), nil
	case "sum":
		op, _ := expr.Lookup("op_add")
		args := make([]value.Value, len(rows))
		for i, r := range rows {
			args[i] = r[p]
		}
		return op.Fn(args)
	case "collect":
		items := make([]value.Value, len(rows))
		for i, r := range rows {
			items[i] = r[p]
		}
		return value.List(items), nil
	default:
		return value.Value{}, coreerr.ErrUnknownAggregator.New(name)
	}
}
