// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tl2cpp

import (
	"fmt"
	"strings"

	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlo"
	"github.com/VKCOM/kphp-sub000/tools/tl/lib/trivial"
)

// constructorArgs maps the parameters of a type wrapper to the implicit
// arguments of one of its constructors.
func (c *Context) constructorArgs(t *tlo.Type, ctor *tlo.Combinator) []string {
	result, ok := ctor.Result.(*tlo.TypeApp)
	if !ok {
		return nil
	}
	var args []string
	last := -1
	for _, a := range ctor.ImplicitArgs() {
		i := trivial.ResultParam(result, a.VarNum)
		if i < 0 {
			continue
		}
		if i < last {
			c.warnf("%s: implicit arguments are not in the order of the parameters of %s", ctor.Name, t.Name)
		}
		last = i
		switch child := result.Children[i].(type) {
		case *tlo.TypeVar:
			args = append(args, typeValue(int32(i)))
		case *tlo.NatVar:
			if child.Diff == 0 {
				args = append(args, natMember(i))
			} else {
				args = append(args, fmt.Sprintf("(%s - %d)", natMember(i), child.Diff))
			}
		}
	}
	return args
}

func (c *Context) constructorCall(t *tlo.Type, ctor *tlo.Combinator, method string, first ...string) string {
	args := append(first, c.constructorArgs(t, ctor)...)
	return fmt.Sprintf("%s::%s(%s)", CombinatorName(ctor), method, strings.Join(args, ", "))
}

// typeDecl compiles the wrapper of a type: its parameters are members, and
// boxed and bare store and fetch dispatch to the constructors.
func (c *Context) typeDecl(t *tlo.Type) *Decl {
	d := &Decl{
		Kind:      TypeDecl,
		Name:      TypeName(t),
		TLName:    t.Name,
		Namespace: c.fileName(tlo.Namespace(t.Name)),
	}
	for i := 0; i < int(t.Arity); i++ {
		if t.IsTypeParam(i) {
			d.TemplateParams = append(d.TemplateParams, typeParam(int32(i)))
			d.Members = append(d.Members, Formal{Type: typeParam(int32(i)), Name: typeValue(int32(i))})
		} else {
			d.Members = append(d.Members, Formal{Type: "int64_t", Name: natMember(i)})
		}
	}
	d.Generic = len(d.TemplateParams) > 0
	for _, ctor := range t.Constructors {
		if ns := c.fileName(tlo.Namespace(ctor.Name)); ns != d.Namespace {
			d.addRef(ns)
		}
	}

	var store, storeBare, fetch, fetchBare body
	switch len(t.Constructors) {
	case 0:
		store.printf("tl_storing_error(%s, %s, string());", tlObject, cppString(t.Name))
		storeBare.printf("store(%s);", tlObject)
		fetch.printf("tl_fetching_error(%s, 0);", cppString(t.Name))
		fetch.printf("return mixed();")
		fetchBare.printf("return fetch();")
	case 1:
		c.singleConstructor(t, &store, &storeBare, &fetch, &fetchBare)
	default:
		c.multiConstructor(t, &store, &fetch)
		storeBare.printf("store(%s);", tlObject)
		fetchBare.printf("return fetch();")
	}

	objParam := []Formal{{Type: "const mixed&", Name: tlObject}}
	d.Methods = []*Method{
		{Result: "void", Name: "store", Params: objParam, Const: true, Body: store.lines},
		{Result: "void", Name: "store_bare", Params: objParam, Const: true, Body: storeBare.lines},
		{Result: "mixed", Name: "fetch", Const: true, Body: fetch.lines},
		{Result: "mixed", Name: "fetch_bare", Const: true, Body: fetchBare.lines},
	}
	return d
}

func (c *Context) singleConstructor(t *tlo.Type, store, storeBare, fetch, fetchBare *body) {
	ctor := t.Constructors[0]
	isDefault := t.DefaultConstructor() == ctor
	if !isDefault {
		store.printf("f$store_int(%s);", magicLiteral(ctor.ID))
	}
	store.printf("store_bare(%s);", tlObject)
	storeBare.printf("%s;", c.constructorCall(t, ctor, "store", tlObject))

	if isDefault {
		fetch.printf("tl_parse_save_pos();")
		fetch.open("if (static_cast<uint32_t>(f$fetch_int()) != %s) {", magicLiteral(ctor.ID))
		fetch.printf("tl_parse_restore_pos();")
		fetch.close("}")
	} else {
		fetch.printf("auto magic = static_cast<uint32_t>(f$fetch_int());")
		fetch.open("if (magic != %s) {", magicLiteral(ctor.ID))
		fetch.printf("tl_fetching_error(%s, magic);", cppString(t.Name))
		fetch.printf("return mixed();")
		fetch.close("}")
	}
	fetch.printf("return fetch_bare();")
	fetchBare.printf("return %s;", c.constructorCall(t, ctor, "fetch"))
}

func (c *Context) multiConstructor(t *tlo.Type, store, fetch *body) {
	cons := t.Cons()
	if t.Flags.Has(tlo.FlagNoCons) && cons == tlo.ConsRecord {
		c.warnf("%s: NOCONS ignored for a type whose constructors have fields", t.Name)
	}
	def := t.DefaultConstructor()

	storeCtor := func(ctor *tlo.Combinator) {
		if ctor != def {
			store.printf("f$store_int(%s);", magicLiteral(ctor.ID))
		}
		store.printf("%s;", c.constructorCall(t, ctor, "store", tlObject))
	}
	switch cons {
	case tlo.ConsBool:
		store.open("if (f$boolval(%s)) {", tlObject)
		storeCtor(t.Constructors[1])
		store.close("} else {")
		store.indent++
		storeCtor(t.Constructors[0])
		store.close("}")
	default:
		if cons == tlo.ConsEnum {
			store.printf("const string c_name = f$strval(%s);", tlObject)
		} else {
			store.printf("const string c_name = f$strval(tl_arr_get(%s, string(\"_\")));", tlObject)
		}
		for i, ctor := range t.Constructors {
			if i == 0 {
				store.open("if (c_name == string(%s)) {", cppString(ctor.Name))
			} else {
				store.close(fmt.Sprintf("} else if (c_name == string(%s)) {", cppString(ctor.Name)))
				store.indent++
			}
			storeCtor(ctor)
		}
		store.close("} else {")
		store.indent++
		store.printf("tl_storing_error(%s, %s, c_name);", tlObject, cppString(t.Name))
		store.close("}")
	}

	fetchCtor := func(i int, ctor *tlo.Combinator) {
		switch cons {
		case tlo.ConsBool:
			fetch.printf("return %v;", i == 1)
		case tlo.ConsEnum:
			fetch.printf("return string(%s);", cppString(ctor.Name))
		default:
			fetch.printf("mixed result = %s;", c.constructorCall(t, ctor, "fetch"))
			fetch.printf("result.set_value(string(\"_\"), string(%s));", cppString(ctor.Name))
			fetch.printf("return result;")
		}
	}
	if def != nil {
		fetch.printf("tl_parse_save_pos();")
	}
	fetch.printf("auto magic = static_cast<uint32_t>(f$fetch_int());")
	fetch.open("switch (magic) {")
	for i, ctor := range t.Constructors {
		fetch.open("case %s: {", magicLiteral(ctor.ID))
		fetchCtor(i, ctor)
		fetch.close("}")
	}
	fetch.open("default: {")
	if def != nil {
		fetch.printf("tl_parse_restore_pos();")
		fetchCtor(len(t.Constructors)-1, def)
	} else {
		fetch.printf("tl_fetching_error(%s, magic);", cppString(t.Name))
		fetch.printf("return mixed();")
	}
	fetch.close("}")
	fetch.close("}")
}
