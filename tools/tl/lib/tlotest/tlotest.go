// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package tlotest builds binary TL schemas for tests.
package tlotest

import (
	"testing"

	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlo"
	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlwire"
)

// Expr is a type expression under construction.
type Expr interface {
	isNat() bool
	encode(w *tlwire.Writer, l tlo.Layout)
}

type typeApp struct {
	id       int32
	flags    tlo.Flags
	children []Expr
}

type typeVar struct {
	v     int32
	flags tlo.Flags
}

type natVar struct {
	v, diff int32
}

type natConst struct {
	value int32
}

type array struct {
	mult Expr
	args []Arg
}

func (*typeApp) isNat() bool  { return false }
func (*typeVar) isNat() bool  { return false }
func (*natVar) isNat() bool   { return true }
func (*natConst) isNat() bool { return true }
func (*array) isNat() bool    { return false }

func (e *typeApp) encode(w *tlwire.Writer, l tlo.Layout) {
	w.WriteUint32(tlo.TagTypeExpr)
	w.WriteInt32(e.id)
	w.WriteUint32(uint32(e.flags))
	w.WriteInt32(int32(len(e.children)))
	for _, c := range e.children {
		if c.isNat() {
			w.WriteUint32(tlo.TagExprNat)
		} else {
			w.WriteUint32(tlo.TagExprType)
		}
		c.encode(w, l)
	}
}

func (e *typeVar) encode(w *tlwire.Writer, _ tlo.Layout) {
	w.WriteUint32(tlo.TagTypeVar)
	w.WriteInt32(e.v)
	w.WriteUint32(uint32(e.flags))
}

func (e *natVar) encode(w *tlwire.Writer, _ tlo.Layout) {
	w.WriteUint32(tlo.TagNatVar)
	w.WriteInt32(e.diff)
	w.WriteInt32(e.v)
}

func (e *natConst) encode(w *tlwire.Writer, _ tlo.Layout) {
	w.WriteUint32(tlo.TagNatConst)
	w.WriteInt32(e.value)
}

func (e *array) encode(w *tlwire.Writer, l tlo.Layout) {
	w.WriteUint32(tlo.TagArray)
	e.mult.encode(w, l)
	encodeArgs(w, l, e.args)
}

// T is a boxed application of type id to children.
func T(id int32, children ...Expr) Expr {
	return &typeApp{id: id, children: children}
}

// Bare is a bare application of type id to children.
func Bare(id int32, children ...Expr) Expr {
	return &typeApp{id: id, flags: tlo.FlagBare, children: children}
}

// TVar references type variable v.
func TVar(v int32) Expr {
	return &typeVar{v: v}
}

// NVar references nat variable v.
func NVar(v int32) Expr {
	return &natVar{v: v}
}

// NVarPlus references nat variable v offset by diff.
func NVarPlus(v, diff int32) Expr {
	return &natVar{v: v, diff: diff}
}

func Nat(value int32) Expr {
	return &natConst{value: value}
}

// Array repeats a cell made of args mult times.
func Array(mult Expr, args ...Arg) Expr {
	return &array{mult: mult, args: args}
}

// Arg is a combinator or cell argument under construction.
type Arg struct {
	Name        string
	Flags       tlo.Flags
	VarNum      int32
	ExistVarNum int32
	ExistVarBit int32
	Type        Expr
}

// Field is a plain wire field.
func Field(name string, typ Expr) Arg {
	return Arg{Name: name, VarNum: -1, Type: typ}
}

// Implicit is a {name:typ} parameter binding variable v.
func Implicit(name string, v int32, typ Expr) Arg {
	return Arg{Name: name, Flags: tlo.FlagOptVar, VarNum: v, Type: typ}
}

// Bound is a wire field whose value is also bound to variable v, such as a
// field mask or an array length.
func Bound(name string, v int32, typ Expr) Arg {
	return Arg{Name: name, VarNum: v, Type: typ}
}

// Cond is a field present only when bit of variable mask is set.
func Cond(name string, mask, bit int32, typ Expr) Arg {
	return Arg{Name: name, Flags: tlo.FlagOptField, VarNum: -1, ExistVarNum: mask, ExistVarBit: bit, Type: typ}
}

// Excl is a late-bound !X field for type variable v.
func Excl(name string, v int32) Arg {
	return Arg{Name: name, Flags: tlo.FlagExcl, VarNum: -1, Type: TVar(v)}
}

func encodeArgs(w *tlwire.Writer, l tlo.Layout, args []Arg) {
	w.WriteInt32(int32(len(args)))
	for _, a := range args {
		w.WriteUint32(tlo.TagArg)
		mustString(w, a.Name)
		w.WriteUint32(l.RawArgFlags(a.Flags))
		w.WriteInt32(a.VarNum)
		if a.Flags.Has(tlo.FlagOptField) {
			w.WriteInt32(a.ExistVarNum)
			w.WriteInt32(a.ExistVarBit)
		}
		a.Type.encode(w, l)
	}
}

func mustString(w *tlwire.Writer, s string) {
	if err := w.WriteString(s); err != nil {
		panic(err)
	}
}

type typeDecl struct {
	id         int32
	name       string
	flags      tlo.Flags
	arity      int32
	paramsType int64
	ctorCount  int32
	countSet   bool
}

type combinatorDecl struct {
	id      int32
	name    string
	typeID  int32
	args    []Arg
	result  Expr
	builtin bool
}

// Builder accumulates declarations and encodes them as a .tlo image.
type Builder struct {
	Marker uint32
	Date   int32

	types []*typeDecl
	ctors []*combinatorDecl
	funcs []*combinatorDecl
}

// New returns a builder for the v3 layout.
func New() *Builder {
	return &Builder{Marker: tlo.SchemaV3, Date: 1}
}

// Type declares a type. Parameter kinds are given by paramsType (bit set for
// Type-valued parameters).
func (b *Builder) Type(id int32, name string, flags tlo.Flags, arity int32, paramsType int64) *Builder {
	b.types = append(b.types, &typeDecl{id: id, name: name, flags: flags, arity: arity, paramsType: paramsType})
	return b
}

// DeclareConstructorCount overrides the constructor count written for the
// most recently declared type.
func (b *Builder) DeclareConstructorCount(n int32) *Builder {
	t := b.types[len(b.types)-1]
	t.ctorCount = n
	t.countSet = true
	return b
}

func (b *Builder) Constructor(id int32, name string, typeID int32, result Expr, args ...Arg) *Builder {
	b.ctors = append(b.ctors, &combinatorDecl{id: id, name: name, typeID: typeID, args: args, result: result})
	return b
}

// BuiltinConstructor declares a constructor without an argument list, such
// as int ? = Int.
func (b *Builder) BuiltinConstructor(id int32, name string, typeID int32) *Builder {
	b.ctors = append(b.ctors, &combinatorDecl{id: id, name: name, typeID: typeID, result: T(typeID), builtin: true})
	return b
}

func (b *Builder) Function(id int32, name string, resultType int32, result Expr, args ...Arg) *Builder {
	b.funcs = append(b.funcs, &combinatorDecl{id: id, name: name, typeID: resultType, args: args, result: result})
	return b
}

// Bytes encodes the schema.
func (b *Builder) Bytes() []byte {
	l, err := tlo.LayoutFor(b.Marker)
	if err != nil {
		// Unknown markers are written as-is so parse failures can be tested.
		l, _ = tlo.LayoutFor(tlo.SchemaV3)
	}
	w := tlwire.NewWriter()
	w.WriteUint32(b.Marker)
	w.WriteInt32(b.Date)

	w.WriteInt32(int32(len(b.types)))
	for _, t := range b.types {
		count := t.ctorCount
		if !t.countSet {
			for _, c := range b.ctors {
				if c.typeID == t.id {
					count++
				}
			}
		}
		w.WriteUint32(tlo.TagType)
		w.WriteInt32(t.id)
		mustString(w, t.name)
		w.WriteInt32(count)
		w.WriteUint32(uint32(t.flags))
		w.WriteInt32(t.arity)
		w.WriteInt64(t.paramsType)
	}
	for _, table := range [][]*combinatorDecl{b.ctors, b.funcs} {
		w.WriteInt32(int32(len(table)))
		for _, c := range table {
			w.WriteUint32(tlo.TagCombinator)
			w.WriteInt32(c.id)
			mustString(w, c.name)
			w.WriteInt32(c.typeID)
			if c.builtin {
				w.WriteUint32(tlo.TagCombinatorLeftBuiltin)
			} else {
				w.WriteUint32(tlo.TagCombinatorLeft)
				encodeArgs(w, l, c.args)
			}
			w.WriteUint32(tlo.TagCombinatorRight)
			c.result.encode(w, l)
			w.WriteUint32(0)
		}
	}
	return append([]byte(nil), w.Bytes()...)
}

// Parse encodes and decodes the schema, failing the test on error.
func (b *Builder) Parse(t testing.TB) *tlo.Schema {
	t.Helper()
	s, err := tlo.Parse(b.Bytes())
	if err != nil {
		t.Fatalf("parsing test schema: %v", err)
	}
	return s
}
