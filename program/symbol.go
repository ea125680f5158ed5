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

// Package program holds the compiled-program types the fixpoint driver
// consumes: magic symbols, compiled rule sets, fixed-rule invocations,
// and strata (spec §3, §4.6).
package program

import (
	"fmt"
	"strings"
)

// Role distinguishes the four kinds of magic symbol (spec §3 "Magic
// symbol").
type Role int

const (
	RolePlain Role = iota
	RoleMagicSeed
	RoleInputToAdornedRule
	RoleSupplementaryIntermediate
)

func (r Role) String() string {
	switch r {
	case RolePlain:
		return "plain"
	case RoleMagicSeed:
		return "magic-seed"
	case RoleInputToAdornedRule:
		return "input-to-adorned-rule"
	case RoleSupplementaryIntermediate:
		return "supplementary-intermediate"
	default:
		return "unknown"
	}
}

// Symbol is a rule name tagged with an adornment vector (bound/free per
// argument position) and a role; two symbols are equal iff name, role,
// adornment, and role-specific index match (spec §3).
type Symbol struct {
	Name       string
	Adornment  []bool
	Role       Role
	RoleIndex  int // meaning depends on Role; e.g. which supplementary step
}

func (s Symbol) Equal(other Symbol) bool {
	if s.Name != other.Name || s.Role != other.Role || s.RoleIndex != other.RoleIndex {
		return false
	}
	if len(s.Adornment) != len(other.Adornment) {
		return false
	}
	for i := range s.Adornment {
		if s.Adornment[i] != other.Adornment[i] {
			return false
		}
	}
	return true
}

// Key renders a Symbol as a map key suitable for CompiledProgram, since
// Go maps cannot key on a slice-containing struct directly.
func (s Symbol) Key() string {
	bits := make([]string, len(s.Adornment))
	for i, b := range s.Adornment {
		if b {
			bits[i] = "b"
		} else {
			bits[i] = "f"
		}
	}
	return fmt.Sprintf("%s/%s/%d/%s", s.Name, s.Role, s.RoleIndex, strings.Join(bits, ""))
}

func (s Symbol) String() string { return s.Key() }
