// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package tlo decodes compiled TL schemas (.tlo files) into an in-memory
// model of types, combinators and type expressions.
package tlo

import (
	"fmt"
	"strings"
)

// Flags is a canonical flag word. Schema versions that pack some bits
// differently are normalised by their Layout while parsing.
type Flags uint32

const (
	// Expression and type flags.
	FlagBare   Flags = 1 << 0
	FlagNoCons Flags = 1 << 1

	// Argument flags.
	FlagOptVar   Flags = 1 << 17
	FlagExcl     Flags = 1 << 18
	FlagOptField Flags = 1 << 20
	FlagNoVar    Flags = 1 << 21

	// FlagDefaultConstructor marks a type whose last constructor is used
	// when an incoming magic matches none of its constructors.
	FlagDefaultConstructor Flags = 1 << 25
)

func (f Flags) Has(bits Flags) bool {
	return f&bits == bits
}

type CombinatorKind int

const (
	Constructor CombinatorKind = iota
	Function
)

func (k CombinatorKind) String() string {
	switch k {
	case Constructor:
		return "constructor"
	case Function:
		return "function"
	}
	return fmt.Sprintf("CombinatorKind(%d)", int(k))
}

// Schema is a fully decoded .tlo file. It is immutable once Parse returns.
type Schema struct {
	Layout Layout
	Date   int32

	// Declaration order is preserved in all three slices.
	Types        []*Type
	Constructors []*Combinator
	Functions    []*Combinator

	// Cells lists the anonymous element records of array expressions in the
	// order they were parsed; Cell.ID is the index into this slice.
	Cells []*Cell

	typesByID     map[int32]*Type
	typesByName   map[string]*Type
	functionsByID map[int32]*Combinator
	functionNames map[string]*Combinator
}

// Type returns the type with the given id, or nil.
func (s *Schema) Type(id int32) *Type {
	return s.typesByID[id]
}

func (s *Schema) TypeByName(name string) *Type {
	return s.typesByName[name]
}

func (s *Schema) Function(id int32) *Combinator {
	return s.functionsByID[id]
}

func (s *Schema) FunctionByName(name string) *Combinator {
	return s.functionNames[name]
}

// Type is a named sum of constructors.
type Type struct {
	ID    int32
	Name  string
	Flags Flags
	Arity int32
	// ParamsType has bit i set when parameter i is Type-valued; clear bits
	// are nat-valued parameters.
	ParamsType   int64
	Constructors []*Combinator

	declaredConstructors int32
}

// IsTypeParam reports whether parameter i is Type-valued.
func (t *Type) IsTypeParam(i int) bool {
	return t.ParamsType&(1<<uint(i)) != 0
}

// DefaultConstructor returns the constructor used for unmatched magics, if
// the type declares one.
func (t *Type) DefaultConstructor() *Combinator {
	if !t.Flags.Has(FlagDefaultConstructor) || len(t.Constructors) == 0 {
		return nil
	}
	return t.Constructors[len(t.Constructors)-1]
}

// Combinator is either a constructor of a type or a free-standing function.
type Combinator struct {
	ID   int32
	Name string
	Kind CombinatorKind
	// TypeID is the owning type of a constructor, or the declared result
	// type of a function.
	TypeID int32
	Args   []*Arg
	Result Expr
	Flags  Flags
	// Builtin combinators have no argument list in the schema.
	Builtin bool
}

func (c *Combinator) IsFunction() bool {
	return c.Kind == Function
}

// ImplicitArgs returns the arguments bound as parameters rather than read
// from the wire, in declaration order.
func (c *Combinator) ImplicitArgs() []*Arg {
	var args []*Arg
	for _, a := range c.Args {
		if a.IsImplicit() {
			args = append(args, a)
		}
	}
	return args
}

// ExplicitArgs returns the arguments present on the wire.
func (c *Combinator) ExplicitArgs() []*Arg {
	var args []*Arg
	for _, a := range c.Args {
		if !a.IsImplicit() {
			args = append(args, a)
		}
	}
	return args
}

// Arg is a single field of a combinator or of an array cell.
type Arg struct {
	Name  string
	Flags Flags
	// VarNum is the variable this argument binds, or -1.
	VarNum int32
	// ExistVarNum and ExistVarBit locate the field-mask bit gating this
	// argument. Only meaningful when FlagOptField is set.
	ExistVarNum int32
	ExistVarBit int32
	Type        Expr
}

func (a *Arg) IsImplicit() bool {
	return a.Flags.Has(FlagOptVar)
}

func (a *Arg) IsOptional() bool {
	return a.Flags.Has(FlagOptField)
}

func (a *Arg) IsExclamation() bool {
	return a.Flags.Has(FlagExcl)
}

// Cell is the anonymous record repeated by an array expression.
type Cell struct {
	ID int
	// Owner is the id of the combinator whose argument list contains the
	// array expression.
	Owner int32
	Args  []*Arg
}

// Expr is a node of a type expression tree.
type Expr interface {
	isExpr()
}

// TypeVar references a Type-valued variable.
type TypeVar struct {
	VarNum int32
	Flags  Flags
}

// NatVar references a nat-valued variable, offset by Diff.
type NatVar struct {
	VarNum int32
	Diff   int32
}

type NatConst struct {
	Value int32
}

// TypeApp applies a type to its parameters.
type TypeApp struct {
	TypeID   int32
	Flags    Flags
	Children []Expr
}

func (e *TypeApp) Bare() bool {
	return e.Flags.Has(FlagBare)
}

// Array repeats Cell Multiplicity times.
type Array struct {
	Multiplicity Expr
	Cell         *Cell
}

func (*TypeVar) isExpr()  {}
func (*NatVar) isExpr()   {}
func (*NatConst) isExpr() {}
func (*TypeApp) isExpr()  {}
func (*Array) isExpr()    {}

// Namespace returns the part of a TL name before the first dot, or the
// empty string for names in the global namespace.
func Namespace(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}

// LocalName strips the namespace from a TL name.
func LocalName(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// WalkExpr calls fn for e and every expression nested in it, including the
// argument types of array cells, in pre-order.
func WalkExpr(e Expr, fn func(Expr)) {
	fn(e)
	switch e := e.(type) {
	case *TypeApp:
		for _, c := range e.Children {
			WalkExpr(c, fn)
		}
	case *Array:
		WalkExpr(e.Multiplicity, fn)
		for _, a := range e.Cell.Args {
			WalkExpr(a.Type, fn)
		}
	}
}
