// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package trivial decides which types and combinators of a schema the code
// generator supports.
//
// A type is supported when all of its constructors are; a combinator is
// supported when every argument type (and, for functions, the result type)
// only applies supported types. Recursive types are resolved optimistically:
// a type that is still being examined counts as supported for the examiners
// further up the chain. Types whose encoding lives in the runtime library are
// supported by definition and never generated.
package trivial

import (
	"sort"

	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlo"
)

// DefaultBuiltins are the type names provided by the runtime library.
var DefaultBuiltins = []string{
	tlo.NameNat,
	tlo.NameInt,
	tlo.NameLong,
	tlo.NameDouble,
	tlo.NameString,
	tlo.NameType,
	tlo.NameTrue,
	tlo.NameBool,
	tlo.NameVector,
	tlo.NameMaybe,
	tlo.NameDictionary,
	tlo.NameIntKeyDictionary,
	tlo.NameLongKeyDictionary,
	tlo.NameTuple,
}

type state int8

const (
	unknown state = iota
	inProgress
	resolvedTrue
	resolvedFalse
)

// Classifier memoizes triviality over a single schema. Every memo slot is
// written once with inProgress and once with its final verdict.
type Classifier struct {
	schema   *tlo.Schema
	builtins map[string]bool
	types    map[int32]state
	funcs    map[int32]bool
}

// New returns a classifier for s. Extra names are treated as runtime-provided
// in addition to DefaultBuiltins.
func New(s *tlo.Schema, extraBuiltins ...string) *Classifier {
	c := &Classifier{
		schema:   s,
		builtins: make(map[string]bool),
		types:    make(map[int32]state),
		funcs:    make(map[int32]bool),
	}
	for _, n := range DefaultBuiltins {
		c.builtins[n] = true
	}
	for _, n := range extraBuiltins {
		c.builtins[n] = true
	}
	return c
}

func (c *Classifier) Schema() *tlo.Schema {
	return c.schema
}

// IsBuiltin reports whether the type named name is provided by the runtime.
func (c *Classifier) IsBuiltin(name string) bool {
	return c.builtins[name]
}

// IsBuiltinType reports whether the type with the given id is provided by
// the runtime.
func (c *Classifier) IsBuiltinType(id int32) bool {
	t := c.schema.Type(id)
	return t != nil && c.builtins[t.Name]
}

// dep is one check a type or function depends on: either a referenced type
// that must itself be trivial, or a construct that is never supported.
type dep struct {
	id          int32
	unsupported bool
}

// frame is one pending type on the explicit examination stack. deps lists,
// in evaluation order, every check that has to pass for this type.
type frame struct {
	id   int32
	deps []dep
	next int
}

// IsTrivialType reports whether the type with the given id is supported.
func (c *Classifier) IsTrivialType(id int32) bool {
	if c.IsBuiltinType(id) {
		return true
	}
	switch c.types[id] {
	case inProgress, resolvedTrue:
		return true
	case resolvedFalse:
		return false
	}

	c.types[id] = inProgress
	stack := []frame{{id: id, deps: c.typeDeps(id)}}
	result := true
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if !result {
			// A dependency failed; every type waiting on it fails too.
			c.types[top.id] = resolvedFalse
			stack = stack[:len(stack)-1]
			continue
		}
		if top.next == len(top.deps) {
			c.types[top.id] = resolvedTrue
			stack = stack[:len(stack)-1]
			continue
		}
		d := top.deps[top.next]
		top.next++
		if d.unsupported {
			result = false
			continue
		}
		if c.IsBuiltinType(d.id) {
			continue
		}
		switch c.types[d.id] {
		case inProgress, resolvedTrue:
		case resolvedFalse:
			result = false
		default:
			c.types[d.id] = inProgress
			stack = append(stack, frame{id: d.id, deps: c.typeDeps(d.id)})
		}
	}
	return result
}

// typeDeps flattens the constructors of a type into the ordered list of
// checks they make.
func (c *Classifier) typeDeps(id int32) []dep {
	t := c.schema.Type(id)
	if t == nil {
		return []dep{{id: id, unsupported: true}}
	}
	var deps []dep
	for _, ctor := range t.Constructors {
		deps = c.appendCombinatorDeps(deps, ctor)
	}
	return deps
}

func (c *Classifier) appendCombinatorDeps(deps []dep, comb *tlo.Combinator) []dep {
	if comb.Builtin {
		// Nothing to generate from: the encoding is known only to the
		// runtime, and this type is not one of the runtime's.
		return append(deps, dep{id: comb.TypeID, unsupported: true})
	}
	if !comb.IsFunction() && !implicitArgsInResult(comb) {
		// The type wrapper could not supply the parameter.
		return append(deps, dep{id: comb.TypeID, unsupported: true})
	}
	implicitTypes := make(map[int32]bool)
	for _, a := range comb.Args {
		switch {
		case a.IsExclamation():
			// The result type must be known whenever the request is
			// stored, so the query cannot sit behind a field mask.
			v, ok := a.Type.(*tlo.TypeVar)
			if !comb.IsFunction() || !ok || !implicitTypes[v.VarNum] || a.IsOptional() {
				return append(deps, dep{id: comb.TypeID, unsupported: true})
			}
		case !a.IsImplicit() && c.schema.IsTypeOfTypes(a.Type):
			// A type as wire data.
			return append(deps, dep{id: comb.TypeID, unsupported: true})
		}
		if a.IsImplicit() && c.schema.IsTypeOfTypes(a.Type) {
			implicitTypes[a.VarNum] = true
		}
		deps = appendExprDeps(deps, a.Type)
	}
	if comb.IsFunction() {
		deps = appendExprDeps(deps, comb.Result)
	}
	return deps
}

// implicitArgsInResult reports whether every implicit argument of a
// constructor is a direct parameter of its result type.
func implicitArgsInResult(comb *tlo.Combinator) bool {
	app, ok := comb.Result.(*tlo.TypeApp)
	if !ok {
		return len(comb.ImplicitArgs()) == 0
	}
	for _, a := range comb.ImplicitArgs() {
		if ResultParam(app, a.VarNum) < 0 {
			return false
		}
	}
	return true
}

// ResultParam returns the index of the result type parameter that is
// variable v, or -1.
func ResultParam(result *tlo.TypeApp, v int32) int {
	for i, child := range result.Children {
		switch child := child.(type) {
		case *tlo.TypeVar:
			if child.VarNum == v {
				return i
			}
		case *tlo.NatVar:
			if child.VarNum == v {
				return i
			}
		}
	}
	return -1
}

// appendExprDeps appends the types an expression applies, in pre-order.
// Array cells are supported as a whole and their contents are not examined.
func appendExprDeps(deps []dep, e tlo.Expr) []dep {
	app, ok := e.(*tlo.TypeApp)
	if !ok {
		return deps
	}
	deps = append(deps, dep{id: app.TypeID})
	for _, child := range app.Children {
		deps = appendExprDeps(deps, child)
	}
	return deps
}

// IsTrivialCombinator reports whether a combinator is supported. A
// constructor is supported exactly when its type is, so a type is never
// generated partially.
func (c *Classifier) IsTrivialCombinator(comb *tlo.Combinator) bool {
	if !comb.IsFunction() {
		return c.IsTrivialType(comb.TypeID)
	}
	if v, ok := c.funcs[comb.ID]; ok {
		return v
	}
	v := true
	for _, d := range c.appendCombinatorDeps(nil, comb) {
		if d.unsupported || !c.IsTrivialType(d.id) {
			v = false
			break
		}
	}
	c.funcs[comb.ID] = v
	return v
}

// IsGenericCombinator reports whether a combinator is parameterized over a
// caller-chosen type. Type variables of a function that are bound by a !X
// argument are resolved at store time and do not make it generic.
func (c *Classifier) IsGenericCombinator(comb *tlo.Combinator) bool {
	excl := make(map[int32]bool)
	if comb.IsFunction() {
		for _, a := range comb.Args {
			if v, ok := a.Type.(*tlo.TypeVar); ok && a.IsExclamation() {
				excl[v.VarNum] = true
			}
		}
	}
	for _, a := range comb.Args {
		if a.IsImplicit() && c.schema.IsTypeOfTypes(a.Type) && !excl[a.VarNum] {
			return true
		}
	}
	return false
}

// IsGenericType reports whether a type has Type-valued parameters.
func (c *Classifier) IsGenericType(t *tlo.Type) bool {
	for i := 0; i < int(t.Arity); i++ {
		if t.IsTypeParam(i) {
			return true
		}
	}
	return false
}

// GeneratedTypes returns the supported, non-builtin types in declaration
// order.
func (c *Classifier) GeneratedTypes() []*tlo.Type {
	var types []*tlo.Type
	for _, t := range c.schema.Types {
		if !c.builtins[t.Name] && c.IsTrivialType(t.ID) {
			types = append(types, t)
		}
	}
	return types
}

// GeneratedFunctions returns the supported functions in declaration order.
func (c *Classifier) GeneratedFunctions() []*tlo.Combinator {
	var funcs []*tlo.Combinator
	for _, f := range c.schema.Functions {
		if c.IsTrivialCombinator(f) {
			funcs = append(funcs, f)
		}
	}
	return funcs
}

// ExportedFunctions returns the functions that can be stored by name: the
// supported, non-generic ones, sorted by name.
func (c *Classifier) ExportedFunctions() []*tlo.Combinator {
	var funcs []*tlo.Combinator
	for _, f := range c.GeneratedFunctions() {
		if !c.IsGenericCombinator(f) {
			funcs = append(funcs, f)
		}
	}
	sort.Slice(funcs, func(i, j int) bool { return funcs[i].Name < funcs[j].Name })
	return funcs
}

// Coverage summarizes how much of a schema is supported.
type Coverage struct {
	Types, TrivialTypes         int
	Functions, TrivialFunctions int
	Unsupported                 []string
}

// Percent returns the share of supported types and functions.
func (cov Coverage) Percent() float64 {
	total := cov.Types + cov.Functions
	if total == 0 {
		return 100
	}
	return 100 * float64(cov.TrivialTypes+cov.TrivialFunctions) / float64(total)
}

// Coverage counts supported entities, excluding runtime-provided types.
func (c *Classifier) Coverage() Coverage {
	var cov Coverage
	for _, t := range c.schema.Types {
		if c.builtins[t.Name] {
			continue
		}
		cov.Types++
		if c.IsTrivialType(t.ID) {
			cov.TrivialTypes++
		} else {
			cov.Unsupported = append(cov.Unsupported, t.Name)
		}
	}
	for _, f := range c.schema.Functions {
		cov.Functions++
		if c.IsTrivialCombinator(f) {
			cov.TrivialFunctions++
		} else {
			cov.Unsupported = append(cov.Unsupported, f.Name)
		}
	}
	return cov
}
