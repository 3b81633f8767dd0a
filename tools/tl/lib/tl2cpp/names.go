// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tl2cpp

import (
	"fmt"
	"strings"

	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlo"
)

// cppIdent turns a TL name into a C++ identifier fragment.
func cppIdent(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func mangle(prefix, name string) string {
	if name == tlo.NameNat {
		name = "Nat"
	}
	ns := tlo.Namespace(name)
	if ns == "" {
		return prefix + "_" + cppIdent(name)
	}
	return prefix + "_" + cppIdent(ns) + "_" + cppIdent(tlo.LocalName(name))
}

// TypeName returns the C++ name of the wrapper of a type.
func TypeName(t *tlo.Type) string {
	return mangle("t", t.Name)
}

// CombinatorName returns the C++ name generated for a constructor or a
// function.
func CombinatorName(c *tlo.Combinator) string {
	if c.IsFunction() {
		return mangle("f", c.Name)
	}
	return mangle("c", c.Name)
}

func cellName(cell *tlo.Cell) string {
	return fmt.Sprintf("tl_cell_%d", cell.ID)
}

func typeParam(v int32) string { return fmt.Sprintf("T%d", v) }
func typeValue(v int32) string { return fmt.Sprintf("X%d", v) }
func natVar(v int32) string    { return fmt.Sprintf("var%d", v) }
func natMember(i int) string   { return fmt.Sprintf("p%d", i) }

func magicLiteral(id int32) string {
	return fmt.Sprintf("0x%08x", uint32(id))
}

// cppString quotes s as a C++ string literal.
func cppString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// fileName returns the base name of the files of a TL namespace.
func (c *Context) fileName(ns string) string {
	if ns == "" {
		return c.globalFile
	}
	return cppIdent(ns)
}

// globalFileName picks the base name of the files of entities without a
// namespace: the configured one, suffixed with underscores while a TL
// namespace already maps to it.
func (c *Context) globalFileName() string {
	taken := make(map[string]bool)
	for _, t := range c.Schema.Types {
		taken[cppIdent(tlo.Namespace(t.Name))] = true
	}
	for _, comb := range c.Schema.Constructors {
		taken[cppIdent(tlo.Namespace(comb.Name))] = true
	}
	for _, f := range c.Schema.Functions {
		taken[cppIdent(tlo.Namespace(f.Name))] = true
	}
	name := c.Config.DefaultNamespace
	for taken[name] {
		name += "_"
	}
	if name != c.Config.DefaultNamespace {
		c.warnf("namespace %s is taken, entities without a namespace go to %s", c.Config.DefaultNamespace, name)
	}
	return name
}
