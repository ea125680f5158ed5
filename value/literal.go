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

package value

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseNumericLiteral parses a numeric literal as it appears in program
// source text into a Number Value, tagged Int or Float. It uses
// shopspring/decimal so that a literal such as "9007199254740993" is not
// silently rounded by a float64 round-trip before the engine decides
// which Number sub-case it belongs to; only literals that actually
// contain a fractional part or exponent become Float.
func ParseNumericLiteral(text string) (Value, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return Value{}, err
	}
	if looksIntegral(text) && d.Exponent() >= 0 {
		return Int(d.IntPart()), nil
	}
	f, _ := d.Float64()
	return Float(f), nil
}

func looksIntegral(text string) bool {
	return !strings.ContainsAny(text, ".eE")
}
