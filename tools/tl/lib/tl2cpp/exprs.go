// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tl2cpp

import (
	"fmt"
	"strings"

	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlo"
)

const exclamationWrapper = "tl_exclamation_fetch_wrapper"

// scope describes how variables are spelled where an expression is
// rendered.
type scope struct {
	// excl holds the type variables bound by a !X argument of a function.
	excl map[int32]bool
	// move makes uses of exclamation wrappers consume them.
	move bool
}

func (sc *scope) varType(v int32) string {
	if sc != nil && sc.excl[v] {
		return exclamationWrapper
	}
	return typeParam(v)
}

func (sc *scope) varValue(v int32) string {
	if sc != nil && sc.excl[v] && sc.move {
		return "std::move(" + typeValue(v) + ")"
	}
	return typeValue(v)
}

func isNatExpr(e tlo.Expr) bool {
	switch e.(type) {
	case *tlo.NatVar, *tlo.NatConst:
		return true
	}
	return false
}

func natValue(e tlo.Expr) string {
	switch e := e.(type) {
	case *tlo.NatConst:
		return fmt.Sprintf("%d", e.Value)
	case *tlo.NatVar:
		if e.Diff == 0 {
			return natVar(e.VarNum)
		}
		return fmt.Sprintf("(%s + %d)", natVar(e.VarNum), e.Diff)
	}
	panic(fmt.Sprintf("%T is not a nat expression", e))
}

func isBare(e tlo.Expr) bool {
	switch e := e.(type) {
	case *tlo.TypeApp:
		return e.Bare()
	case *tlo.TypeVar:
		return e.Flags.Has(tlo.FlagBare)
	}
	return false
}

func bareWrap(s string) string {
	return "tl_bare<" + s + ">"
}

// exprType renders the C++ wrapper type of a type expression.
func (c *Context) exprType(d *Decl, e tlo.Expr, sc *scope) string {
	s := c.unboxedType(d, e, sc)
	if isBare(e) {
		return bareWrap(s)
	}
	return s
}

func (c *Context) unboxedType(d *Decl, e tlo.Expr, sc *scope) string {
	switch e := e.(type) {
	case *tlo.TypeVar:
		return sc.varType(e.VarNum)
	case *tlo.TypeApp:
		t := c.Schema.Type(e.TypeID)
		c.reference(d, t)
		var targs []string
		for _, child := range e.Children {
			if !isNatExpr(child) {
				targs = append(targs, c.exprType(d, child, sc))
			}
		}
		if len(targs) == 0 {
			return TypeName(t)
		}
		return TypeName(t) + "<" + strings.Join(targs, ", ") + ">"
	case *tlo.Array:
		return "tl_array<" + c.cellType(d, e.Cell, sc) + ">"
	}
	panic(fmt.Sprintf("%T is not a type expression", e))
}

// exprValue renders an expression constructing the wrapper of e.
func (c *Context) exprValue(d *Decl, e tlo.Expr, sc *scope) string {
	s := c.unboxedValue(d, e, sc)
	if isBare(e) {
		return bareWrap(c.unboxedType(d, e, sc)) + "(" + s + ")"
	}
	return s
}

func (c *Context) unboxedValue(d *Decl, e tlo.Expr, sc *scope) string {
	switch e := e.(type) {
	case *tlo.TypeVar:
		return sc.varValue(e.VarNum)
	case *tlo.TypeApp:
		t := c.Schema.Type(e.TypeID)
		if e.Bare() && len(t.Constructors) > 1 {
			c.warnf("%s: bare reference to polymorphic type %s, stored boxed", d.TLName, t.Name)
		}
		var args []string
		for _, child := range e.Children {
			if isNatExpr(child) {
				args = append(args, natValue(child))
			} else {
				args = append(args, c.exprValue(d, child, sc))
			}
		}
		return c.unboxedType(d, e, sc) + "(" + strings.Join(args, ", ") + ")"
	case *tlo.Array:
		return c.unboxedType(d, e, sc) + "(" + natValue(e.Multiplicity) + ", " + c.cellValue(d, e.Cell, sc) + ")"
	}
	panic(fmt.Sprintf("%T is not a type expression", e))
}

// storeStmt renders a statement storing value with the wrapper of e.
func (c *Context) storeStmt(d *Decl, e tlo.Expr, sc *scope, value string) string {
	if isBare(e) {
		return fmt.Sprintf("%s.store_bare(%s);", c.unboxedValue(d, e, sc), value)
	}
	return fmt.Sprintf("%s.store(%s);", c.unboxedValue(d, e, sc), value)
}

// fetchExpr renders an expression fetching a value with the wrapper of e.
func (c *Context) fetchExpr(d *Decl, e tlo.Expr, sc *scope) string {
	if isBare(e) {
		return c.unboxedValue(d, e, sc) + ".fetch_bare()"
	}
	return c.unboxedValue(d, e, sc) + ".fetch()"
}

// reference records that d needs the header declaring t.
func (c *Context) reference(d *Decl, t *tlo.Type) {
	if c.Classifier.IsBuiltinType(t.ID) {
		return
	}
	if ns := c.fileName(tlo.Namespace(t.Name)); ns != d.Namespace {
		d.addRef(ns)
	}
}

// referenceResult records the headers of the types a combinator result
// names, parameters included.
func (c *Context) referenceResult(d *Decl, e tlo.Expr) {
	app, ok := e.(*tlo.TypeApp)
	if !ok {
		return
	}
	if t := c.Schema.Type(app.TypeID); t != nil {
		c.reference(d, t)
	}
	for _, child := range app.Children {
		c.referenceResult(d, child)
	}
}
