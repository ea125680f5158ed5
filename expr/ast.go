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

// Package expr implements pure scalar expressions over a tuple-valued
// environment: constants, bindings, operator applications, boolean
// connectives and conditionals (spec §4.1).
package expr

import (
	"fmt"

	"github.com/dolthub/doltlog/coreerr"
	"github.com/dolthub/doltlog/value"
)

// Expr is a node in a scalar expression tree. Implementations are pure:
// evaluating the same Expr against the same tuple always produces the
// same Value.
type Expr interface {
	// bindings collects every Symbol name this subtree references.
	bindings(out map[string]bool)
	// fillBindingIndices rewrites Binding nodes to carry the numeric
	// index given by index[name], failing if a name is unresolved.
	fillBindingIndices(index map[string]int) error
	// emit appends this subtree's instructions to c.
	emit(c *compiler) error
	String() string
}

// Const is a literal value.
type Const struct {
	Value value.Value
}

func (c *Const) bindings(map[string]bool) {}

func (c *Const) fillBindingIndices(map[string]int) error { return nil }

func (c *Const) emit(comp *compiler) error {
	comp.emit(Instr{Op: OpLoadConst, Const: c.Value})
	return nil
}

func (c *Const) String() string { return c.Value.String() }

// Binding references a tuple position by name, resolved to a numeric
// index by fillBindingIndices.
type Binding struct {
	Name string
	idx  int
	set  bool
}

func NewBinding(name string) *Binding { return &Binding{Name: name} }

func (b *Binding) bindings(out map[string]bool) { out[b.Name] = true }

func (b *Binding) fillBindingIndices(index map[string]int) error {
	idx, ok := index[b.Name]
	if !ok {
		return coreerr.ErrBindingResolutionFailure.New(b.Name)
	}
	b.idx = idx
	b.set = true
	return nil
}

func (b *Binding) emit(c *compiler) error {
	if !b.set {
		return coreerr.ErrBindingResolutionFailure.New(b.Name)
	}
	c.emit(Instr{Op: OpLoadBinding, Index: b.idx})
	return nil
}

func (b *Binding) String() string { return b.Name }

// Index reports the resolved tuple position, or -1 if unresolved.
func (b *Binding) Index() int {
	if !b.set {
		return -1
	}
	return b.idx
}

// Call applies a named operator (fixed or variadic arity) to its
// argument expressions. The operator is looked up by name in the
// process-wide operator table (spec §9 "Operator registration").
type Call struct {
	OpName string
	Args   []Expr
}

func NewCall(opName string, args ...Expr) *Call { return &Call{OpName: opName, Args: args} }

func (c *Call) bindings(out map[string]bool) {
	for _, a := range c.Args {
		a.bindings(out)
	}
}

func (c *Call) fillBindingIndices(index map[string]int) error {
	for _, a := range c.Args {
		if err := a.fillBindingIndices(index); err != nil {
			return err
		}
	}
	return nil
}

func (c *Call) emit(comp *compiler) error {
	op, ok := Lookup(c.OpName)
	if !ok {
		return coreerr.ErrBindingResolutionFailure.New(c.OpName)
	}
	if !op.Variadic && len(c.Args) != op.MinArity {
		return coreerr.ErrArityViolation.New(c.OpName, op.MinArity, len(c.Args))
	}
	if op.Variadic && len(c.Args) < op.MinArity {
		return coreerr.ErrArityViolation.New(c.OpName, op.MinArity, len(c.Args))
	}
	for _, a := range c.Args {
		if err := a.emit(comp); err != nil {
			return err
		}
	}
	comp.emit(Instr{Op: OpCall, Call: op, Argc: len(c.Args)})
	return nil
}

func (c *Call) String() string {
	return fmt.Sprintf("%s(%v)", c.OpName, c.Args)
}

// And is n-ary conjunction with short-circuit evaluation: the first
// false/non-Bool-producing-false argument stops evaluation.
type And struct{ Args []Expr }

func NewAnd(args ...Expr) *And { return &And{Args: args} }

func (a *And) bindings(out map[string]bool) {
	for _, arg := range a.Args {
		arg.bindings(out)
	}
}

func (a *And) fillBindingIndices(index map[string]int) error {
	for _, arg := range a.Args {
		if err := arg.fillBindingIndices(index); err != nil {
			return err
		}
	}
	return nil
}

func (a *And) emit(c *compiler) error {
	if len(a.Args) == 0 {
		c.emit(Instr{Op: OpLoadConst, Const: value.Bool(true)})
		return nil
	}
	var endJumps []int
	for i, arg := range a.Args {
		if err := arg.emit(c); err != nil {
			return err
		}
		if i != len(a.Args)-1 {
			endJumps = append(endJumps, c.emitJump(OpJumpIfFalseKeep))
		}
	}
	end := len(c.prog)
	for _, j := range endJumps {
		c.prog[j].Target = end
	}
	return nil
}

func (a *And) String() string { return fmt.Sprintf("and(%v)", a.Args) }

// Or is n-ary disjunction with short-circuit evaluation.
type Or struct{ Args []Expr }

func NewOr(args ...Expr) *Or { return &Or{Args: args} }

func (o *Or) bindings(out map[string]bool) {
	for _, arg := range o.Args {
		arg.bindings(out)
	}
}

func (o *Or) fillBindingIndices(index map[string]int) error {
	for _, arg := range o.Args {
		if err := arg.fillBindingIndices(index); err != nil {
			return err
		}
	}
	return nil
}

func (o *Or) emit(c *compiler) error {
	if len(o.Args) == 0 {
		c.emit(Instr{Op: OpLoadConst, Const: value.Bool(false)})
		return nil
	}
	var endJumps []int
	for i, arg := range o.Args {
		if err := arg.emit(c); err != nil {
			return err
		}
		if i != len(o.Args)-1 {
			endJumps = append(endJumps, c.emitJump(OpJumpIfTrueKeep))
		}
	}
	end := len(c.prog)
	for _, j := range endJumps {
		c.prog[j].Target = end
	}
	return nil
}

func (o *Or) String() string { return fmt.Sprintf("or(%v)", o.Args) }

// If evaluates Cond as a Bool and takes Then or Else accordingly.
type If struct {
	Cond, Then, Else Expr
}

func NewIf(cond, then, els Expr) *If { return &If{Cond: cond, Then: then, Else: els} }

func (f *If) bindings(out map[string]bool) {
	f.Cond.bindings(out)
	f.Then.bindings(out)
	f.Else.bindings(out)
}

func (f *If) fillBindingIndices(index map[string]int) error {
	if err := f.Cond.fillBindingIndices(index); err != nil {
		return err
	}
	if err := f.Then.fillBindingIndices(index); err != nil {
		return err
	}
	return f.Else.fillBindingIndices(index)
}

func (f *If) emit(c *compiler) error {
	if err := f.Cond.emit(c); err != nil {
		return err
	}
	elseJump := c.emitJump(OpJumpIfFalsePop)
	if err := f.Then.emit(c); err != nil {
		return err
	}
	thenJump := c.emitJump(OpJump)
	c.prog[elseJump].Target = len(c.prog)
	if err := f.Else.emit(c); err != nil {
		return err
	}
	c.prog[thenJump].Target = len(c.prog)
	return nil
}

func (f *If) String() string { return fmt.Sprintf("if(%v, %v, %v)", f.Cond, f.Then, f.Else) }

// Bindings returns the set of names referenced anywhere in e.
func Bindings(e Expr) map[string]bool {
	out := map[string]bool{}
	e.bindings(out)
	return out
}

// FillBindingIndices rewrites every Binding in e to the numeric index
// given by index, failing if a name has no entry.
func FillBindingIndices(e Expr, index map[string]int) error {
	return e.fillBindingIndices(index)
}
