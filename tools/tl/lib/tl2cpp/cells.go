// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tl2cpp

import (
	"sort"
	"strings"

	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlo"
)

type cellInfo struct {
	decl *Decl
	// Variables of the enclosing combinator used by the cell.
	typeVars []int32
	natVars  []int32
}

// cellCaptures returns the variables a cell uses without binding them.
// Variable numbers are unique within a combinator, nested cells included.
func cellCaptures(cell *tlo.Cell) (typeVars, natVars []int32) {
	bound := make(map[int32]bool)
	usedType := make(map[int32]bool)
	usedNat := make(map[int32]bool)
	var visit func(args []*tlo.Arg)
	visit = func(args []*tlo.Arg) {
		for _, a := range args {
			if a.IsOptional() {
				usedNat[a.ExistVarNum] = true
			}
			if a.VarNum >= 0 {
				bound[a.VarNum] = true
			}
			if arr, ok := a.Type.(*tlo.Array); ok {
				if v, ok := arr.Multiplicity.(*tlo.NatVar); ok {
					usedNat[v.VarNum] = true
				}
				visit(arr.Cell.Args)
				continue
			}
			tlo.WalkExpr(a.Type, func(e tlo.Expr) {
				switch e := e.(type) {
				case *tlo.TypeVar:
					usedType[e.VarNum] = true
				case *tlo.NatVar:
					usedNat[e.VarNum] = true
				case *tlo.Array:
					// Walked below the application; the cell's own
					// bindings are collected here.
					for _, inner := range e.Cell.Args {
						if inner.VarNum >= 0 {
							bound[inner.VarNum] = true
						}
						if inner.IsOptional() {
							usedNat[inner.ExistVarNum] = true
						}
					}
				}
			})
		}
	}
	visit(cell.Args)
	for v := range usedType {
		if !bound[v] {
			typeVars = append(typeVars, v)
		}
	}
	for v := range usedNat {
		if !bound[v] {
			natVars = append(natVars, v)
		}
	}
	sort.Slice(typeVars, func(i, j int) bool { return typeVars[i] < typeVars[j] })
	sort.Slice(natVars, func(i, j int) bool { return natVars[i] < natVars[j] })
	return typeVars, natVars
}

// isAliasCell reports whether a cell stores its single field directly
// instead of as a record.
func isAliasCell(cell *tlo.Cell) bool {
	return len(cell.Args) == 1 && !cell.Args[0].IsOptional()
}

// cell compiles a cell on first use. Cells belong to the namespace of the
// declaration that uses them.
func (c *Context) cell(cell *tlo.Cell, ns string) *cellInfo {
	if info, ok := c.cells[cell.ID]; ok {
		return info
	}
	typeVars, natVars := cellCaptures(cell)
	d := &Decl{
		Kind:      CellDecl,
		Name:      cellName(cell),
		TLName:    cellName(cell),
		Namespace: ns,
		Generic:   len(typeVars) > 0,
	}
	info := &cellInfo{decl: d, typeVars: typeVars, natVars: natVars}
	c.cells[cell.ID] = info

	for _, v := range typeVars {
		d.TemplateParams = append(d.TemplateParams, typeParam(v))
		d.Members = append(d.Members, Formal{Type: typeParam(v), Name: typeValue(v)})
	}
	for _, v := range natVars {
		d.Members = append(d.Members, Formal{Type: "int64_t", Name: natVar(v)})
	}

	alias := isAliasCell(cell)
	var store, fetch body
	c.storeArgs(&store, d, cell.Args, nil, alias, false)
	c.fetchArgs(&fetch, d, cell.Args, nil, alias)
	d.Methods = []*Method{
		{Result: "void", Name: "store", Params: []Formal{{Type: "const mixed&", Name: "tl_object"}}, Const: true, Body: store.lines},
		{Result: "mixed", Name: "fetch", Const: true, Body: fetch.lines},
	}
	return info
}

func (c *Context) cellType(d *Decl, cell *tlo.Cell, sc *scope) string {
	info := c.cell(cell, d.Namespace)
	if len(info.typeVars) == 0 {
		return info.decl.Name
	}
	var targs []string
	for _, v := range info.typeVars {
		targs = append(targs, sc.varType(v))
	}
	return info.decl.Name + "<" + strings.Join(targs, ", ") + ">"
}

func (c *Context) cellValue(d *Decl, cell *tlo.Cell, sc *scope) string {
	info := c.cell(cell, d.Namespace)
	var args []string
	for _, v := range info.typeVars {
		args = append(args, sc.varValue(v))
	}
	for _, v := range info.natVars {
		args = append(args, natVar(v))
	}
	return c.cellType(d, cell, sc) + "(" + strings.Join(args, ", ") + ")"
}
