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

package expr

import (
	"github.com/dolthub/doltlog/coreerr"
	"github.com/dolthub/doltlog/value"
)

// EvalPred evaluates prog and requires the result to be Bool, raising a
// typed span-carrying error otherwise (spec §4.1, §7: "Predicates that
// produce a non-Bool raise a type error with the predicate's source
// span").
func EvalPred(prog Program, t value.Tuple, s *Scratch, span value.Span) (bool, error) {
	v, err := Eval(prog, t, s)
	if err != nil {
		return false, err
	}
	b, ok := v.AsBool()
	if !ok {
		return false, coreerr.Annotate(
			coreerr.ErrTypeMismatch.New("predicate", "Bool", v.Kind().String()),
			span.Start, span.End, "")
	}
	return b, nil
}

// CompileFiltered binds names to the given index map and compiles e in
// one step; a convenience used by RA nodes during the index-binding
// pass (spec §4.3).
func CompileFiltered(e Expr, index map[string]int) (Program, error) {
	if err := FillBindingIndices(e, index); err != nil {
		return nil, err
	}
	return Compile(e)
}
