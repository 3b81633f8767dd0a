// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tl2cpp

import (
	"fmt"
	"strings"

	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlo"
)

const tlObject = "tl_object"

func fieldValue(a *tlo.Arg, flat bool) string {
	if flat {
		return tlObject
	}
	return fmt.Sprintf("tl_arr_get(%s, string(%s))", tlObject, cppString(a.Name))
}

func maskTest(a *tlo.Arg) string {
	return fmt.Sprintf("if (%s & (1LL << %d)) {", natVar(a.ExistVarNum), a.ExistVarBit)
}

// storeArgs emits the statements storing the wire fields of args, in
// declaration order. Implicit arguments are parameters, except nat ones of
// functions, which are read from the request when readImplicit is set.
func (c *Context) storeArgs(b *body, d *Decl, args []*tlo.Arg, sc *scope, flat, readImplicit bool) {
	for _, a := range args {
		if a.IsImplicit() {
			if readImplicit && !c.Schema.IsTypeOfTypes(a.Type) {
				b.printf("int64_t %s = f$intval(%s);", natVar(a.VarNum), fieldValue(a, false))
			}
			continue
		}
		if a.IsExclamation() {
			v := a.Type.(*tlo.TypeVar).VarNum
			b.printf("%s %s(tl_store_by_name(%s));", exclamationWrapper, typeValue(v), fieldValue(a, flat))
			continue
		}
		value := fieldValue(a, flat)
		bound := a.VarNum >= 0
		if a.IsOptional() {
			if bound {
				b.printf("int64_t %s = 0;", natVar(a.VarNum))
			}
			b.open("%s", maskTest(a))
		}
		if bound {
			if a.IsOptional() {
				b.printf("%s = f$intval(%s);", natVar(a.VarNum), value)
			} else {
				b.printf("int64_t %s = f$intval(%s);", natVar(a.VarNum), value)
			}
			value = natVar(a.VarNum)
		}
		b.printf("%s", c.storeStmt(d, a.Type, sc, value))
		if a.IsOptional() {
			b.close("}")
		}
	}
}

// fetchArgs emits the statements fetching the wire fields of args into a
// record, or returning the single field of a flat combinator.
func (c *Context) fetchArgs(b *body, d *Decl, args []*tlo.Arg, sc *scope, flat bool) {
	if flat {
		for _, a := range args {
			if !a.IsImplicit() {
				b.printf("return %s;", c.fetchExpr(d, a.Type, sc))
				return
			}
		}
	}
	b.printf("array<mixed> result;")
	for _, a := range args {
		if a.IsImplicit() {
			continue
		}
		bound := a.VarNum >= 0
		if a.IsOptional() {
			if bound {
				b.printf("int64_t %s = 0;", natVar(a.VarNum))
			}
			b.open("%s", maskTest(a))
		}
		value := c.fetchExpr(d, a.Type, sc)
		if bound {
			if a.IsOptional() {
				b.printf("%s = f$intval(%s);", natVar(a.VarNum), value)
			} else {
				b.printf("int64_t %s = f$intval(%s);", natVar(a.VarNum), value)
			}
			value = natVar(a.VarNum)
		}
		b.printf("result.set_value(string(%s), %s);", cppString(a.Name), value)
		if a.IsOptional() {
			b.close("}")
		}
	}
	b.printf("return result;")
}

// constructorDecl compiles a constructor into a struct of static store and
// fetch functions taking its implicit arguments as parameters. The magic is
// written by the owning type.
func (c *Context) constructorDecl(ctor *tlo.Combinator) *Decl {
	d := &Decl{
		Kind:      ConstructorDecl,
		Name:      CombinatorName(ctor),
		TLName:    ctor.Name,
		Namespace: c.fileName(tlo.Namespace(ctor.Name)),
	}
	var tparams []string
	var params []Formal
	for _, a := range ctor.ImplicitArgs() {
		if c.Schema.IsTypeOfTypes(a.Type) {
			tparams = append(tparams, typeParam(a.VarNum))
			params = append(params, Formal{Type: "const " + typeParam(a.VarNum) + "&", Name: typeValue(a.VarNum)})
		} else {
			params = append(params, Formal{Type: "int64_t", Name: natVar(a.VarNum)})
		}
	}
	d.Generic = len(tparams) > 0
	c.referenceResult(d, ctor.Result)

	flat := c.Schema.IsFlat(ctor)
	var store, fetch body
	c.storeArgs(&store, d, ctor.Args, nil, flat, false)
	c.fetchArgs(&fetch, d, ctor.Args, nil, flat)
	d.Methods = []*Method{
		{
			Static:         true,
			TemplateParams: tparams,
			Result:         "void",
			Name:           "store",
			Params:         append([]Formal{{Type: "const mixed&", Name: tlObject}}, params...),
			Body:           store.lines,
		},
		{
			Static:         true,
			TemplateParams: tparams,
			Result:         "mixed",
			Name:           "fetch",
			Params:         params,
			Body:           fetch.lines,
		},
	}
	return d
}

// exclamationVars returns the type variables of a function bound by !X
// arguments.
func exclamationVars(f *tlo.Combinator) map[int32]bool {
	excl := make(map[int32]bool)
	for _, a := range f.Args {
		if v, ok := a.Type.(*tlo.TypeVar); ok && a.IsExclamation() {
			excl[v.VarNum] = true
		}
	}
	return excl
}

// functionDecl compiles a function into a request state object: store
// writes the request and returns the state, whose fetch reads the result.
func (c *Context) functionDecl(f *tlo.Combinator) *Decl {
	sc := &scope{excl: exclamationVars(f)}
	d := &Decl{
		Kind:      FunctionDecl,
		Name:      CombinatorName(f),
		TLName:    f.Name,
		Namespace: c.fileName(tlo.Namespace(f.Name)),
		Base:      "tl_func_base",
	}
	params := []Formal{{Type: "const mixed&", Name: tlObject}}
	var latch []string
	for _, a := range f.Args {
		if a.VarNum < 0 {
			continue
		}
		switch {
		case sc.excl[a.VarNum]:
			d.Members = append(d.Members, Formal{Type: exclamationWrapper, Name: typeValue(a.VarNum)})
			latch = append(latch, fmt.Sprintf("tl_func_state->%s = std::move(%s);", typeValue(a.VarNum), typeValue(a.VarNum)))
		case c.Schema.IsTypeOfTypes(a.Type):
			d.TemplateParams = append(d.TemplateParams, typeParam(a.VarNum))
			d.Members = append(d.Members, Formal{Type: typeParam(a.VarNum), Name: typeValue(a.VarNum)})
			params = append(params, Formal{Type: typeParam(a.VarNum), Name: typeValue(a.VarNum)})
			latch = append(latch, fmt.Sprintf("tl_func_state->%s = %s;", typeValue(a.VarNum), typeValue(a.VarNum)))
		default:
			d.Members = append(d.Members, Formal{Type: "int64_t", Name: natVar(a.VarNum)})
			latch = append(latch, fmt.Sprintf("tl_func_state->%s = %s;", natVar(a.VarNum), natVar(a.VarNum)))
		}
	}
	d.Generic = len(d.TemplateParams) > 0

	var store body
	store.printf("auto tl_func_state = make_unique_on_script_memory<%s>();", d.Qualified())
	store.printf("f$store_int(%s);", magicLiteral(f.ID))
	c.storeArgs(&store, d, f.Args, sc, false, true)
	store.lines = append(store.lines, latch...)
	store.printf("return std::move(tl_func_state);")

	var fetch body
	fetchScope := &scope{excl: sc.excl, move: true}
	fetch.printf("return %s;", c.fetchExpr(d, f.Result, fetchScope))

	d.Methods = []*Method{
		{
			Static: true,
			Result: "std::unique_ptr<tl_func_base>",
			Name:   "store",
			Params: params,
			Body:   store.lines,
		},
		{
			Result: "mixed",
			Name:   "fetch",
			Final:  true,
			Body:   fetch.lines,
		},
	}
	return d
}

// Declaration renders the method as declared inside its struct.
func (m *Method) Declaration() string {
	var b strings.Builder
	if m.Static {
		b.WriteString("static ")
	}
	b.WriteString(m.Result + " " + m.Name + "(" + formalList(m.Params) + ")")
	if m.Const {
		b.WriteString(" const")
	}
	if m.Final {
		b.WriteString(" final")
	}
	return b.String()
}

func formalList(formals []Formal) string {
	var parts []string
	for _, f := range formals {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, ", ")
}

func templateList(params []string) string {
	var parts []string
	for _, p := range params {
		parts = append(parts, "typename "+p)
	}
	return strings.Join(parts, ", ")
}

// Definition is a member function defined outside its struct.
type Definition struct {
	Templates []string
	Signature string
	Body      []string
}

// Definitions returns the out-of-line definitions of every method of d.
func (d *Decl) Definitions() []Definition {
	var defs []Definition
	for _, m := range d.Methods {
		var def Definition
		if len(d.TemplateParams) > 0 {
			def.Templates = append(def.Templates, "template <"+templateList(d.TemplateParams)+">")
		}
		if len(m.TemplateParams) > 0 {
			def.Templates = append(def.Templates, "template <"+templateList(m.TemplateParams)+">")
		}
		def.Signature = m.Result + " " + d.Qualified() + "::" + m.Name + "(" + formalList(m.Params) + ")"
		if m.Const {
			def.Signature += " const"
		}
		def.Body = m.Body
		defs = append(defs, def)
	}
	return defs
}
