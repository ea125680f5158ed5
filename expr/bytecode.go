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
	"fmt"

	"github.com/dolthub/doltlog/coreerr"
	"github.com/dolthub/doltlog/value"
)

// OpCode identifies a bytecode instruction, per spec §4.1: "load-const,
// load-binding, call-op, conditional-jump, return".
type OpCode uint8

const (
	OpLoadConst OpCode = iota
	OpLoadBinding
	OpCall
	// OpJumpIfFalseKeep jumps to Target if the top-of-stack Bool is
	// false, leaving it on the stack (used by And's short-circuit).
	OpJumpIfFalseKeep
	// OpJumpIfTrueKeep jumps to Target if the top-of-stack Bool is true,
	// leaving it on the stack (used by Or's short-circuit).
	OpJumpIfTrueKeep
	// OpJumpIfFalsePop pops the top-of-stack Bool and jumps to Target if
	// it was false (used by If).
	OpJumpIfFalsePop
	// OpJump jumps unconditionally to Target.
	OpJump
)

// Instr is one bytecode instruction. Only the fields relevant to Op are
// populated.
type Instr struct {
	Op     OpCode
	Const  value.Value
	Index  int
	Call   *Op
	Argc   int
	Target int
}

// Program is compiled, position-resolved bytecode for one Expr tree.
type Program []Instr

type compiler struct {
	prog []Instr
}

func (c *compiler) emit(i Instr) { c.prog = append(c.prog, i) }

// emitJump appends a jump instruction with a placeholder target and
// returns its index so the caller can patch Target once the jump
// destination is known.
func (c *compiler) emitJump(op OpCode) int {
	c.prog = append(c.prog, Instr{Op: op})
	return len(c.prog) - 1
}

// Compile lowers e to a stack-based bytecode program. e must already
// have had fillBindingIndices called (via FillBindingIndices) so every
// Binding carries a resolved numeric index (spec §4.1, §4.3
// "index-binding pass").
func Compile(e Expr) (Program, error) {
	c := &compiler{}
	if err := e.emit(c); err != nil {
		return nil, err
	}
	return Program(c.prog), nil
}

// Scratch is a caller-owned evaluation stack, reused across Eval calls
// so that evaluation performs zero allocation after warmup (spec §4.1).
type Scratch struct {
	stack []value.Value
}

func NewScratch() *Scratch { return &Scratch{} }

// Eval runs prog against t using s as scratch space, returning the
// resulting Value.
func Eval(prog Program, t value.Tuple, s *Scratch) (value.Value, error) {
	s.stack = s.stack[:0]
	for pc := 0; pc < len(prog); pc++ {
		instr := prog[pc]
		switch instr.Op {
		case OpLoadConst:
			s.stack = append(s.stack, instr.Const)
		case OpLoadBinding:
			if instr.Index < 0 || instr.Index >= len(t) {
				return value.Value{}, coreerr.ErrIndexOutOfBounds.New(instr.Index, len(t))
			}
			s.stack = append(s.stack, t[instr.Index])
		case OpCall:
			n := len(s.stack)
			args := s.stack[n-instr.Argc : n]
			out, err := instr.Call.Fn(args)
			if err != nil {
				return value.Value{}, err
			}
			s.stack = append(s.stack[:n-instr.Argc], out)
		case OpJumpIfFalseKeep:
			top := s.stack[len(s.stack)-1]
			b, ok := top.AsBool()
			if !ok {
				return value.Value{}, coreerr.ErrTypeMismatch.New("and", "Bool", top.Kind().String())
			}
			if !b {
				pc = instr.Target - 1
			}
		case OpJumpIfTrueKeep:
			top := s.stack[len(s.stack)-1]
			b, ok := top.AsBool()
			if !ok {
				return value.Value{}, coreerr.ErrTypeMismatch.New("or", "Bool", top.Kind().String())
			}
			if b {
				pc = instr.Target - 1
			}
		case OpJumpIfFalsePop:
			top := s.stack[len(s.stack)-1]
			s.stack = s.stack[:len(s.stack)-1]
			b, ok := top.AsBool()
			if !ok {
				return value.Value{}, coreerr.ErrTypeMismatch.New("if", "Bool", top.Kind().String())
			}
			if !b {
				pc = instr.Target - 1
			}
		case OpJump:
			pc = instr.Target - 1
		}
	}
	if len(s.stack) != 1 {
		return value.Value{}, fmt.Errorf("expr: malformed program left %d values on stack", len(s.stack))
	}
	return s.stack[0], nil
}
