// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tl2cpp

import (
	"fmt"
	"strings"
)

// DeclKind orders declarations of one namespace.
type DeclKind int

const (
	TypeDecl DeclKind = iota
	ConstructorDecl
	FunctionDecl
	CellDecl
)

func (k DeclKind) String() string {
	switch k {
	case TypeDecl:
		return "type"
	case ConstructorDecl:
		return "constructor"
	case FunctionDecl:
		return "function"
	case CellDecl:
		return "cell"
	}
	return fmt.Sprintf("DeclKind(%d)", int(k))
}

// Formal is a C++ parameter or data member.
type Formal struct {
	Type string
	Name string
}

func (f Formal) String() string {
	return f.Type + " " + f.Name
}

// Method is a member function of a generated struct.
type Method struct {
	Static bool
	// TemplateParams are the method's own template parameters.
	TemplateParams []string
	Result         string
	Name           string
	Params         []Formal
	Const          bool
	Final          bool
	Body           []string
}

// Decl is one generated C++ struct together with the TL entity it
// implements.
type Decl struct {
	Kind      DeclKind
	Name      string
	TLName    string
	Namespace string
	// TemplateParams are the struct's template parameters.
	TemplateParams []string
	Base           string
	Members        []Formal
	Methods        []*Method
	// Generic declarations are defined entirely in the header.
	Generic bool

	// refs are the TL namespaces whose headers this declaration needs.
	refs map[string]bool
}

// Qualified returns the struct name with its template arguments.
func (d *Decl) Qualified() string {
	if len(d.TemplateParams) == 0 {
		return d.Name
	}
	return d.Name + "<" + strings.Join(d.TemplateParams, ", ") + ">"
}

// HasConstructor reports whether the struct needs an explicit constructor
// initializing its members.
func (d *Decl) HasConstructor() bool {
	return d.Kind != FunctionDecl && len(d.Members) > 0
}

func (d *Decl) addRef(ns string) {
	if d.refs == nil {
		d.refs = make(map[string]bool)
	}
	d.refs[ns] = true
}

// body accumulates the statements of a method with indentation.
type body struct {
	lines  []string
	indent int
}

func (b *body) printf(format string, a ...interface{}) {
	b.lines = append(b.lines, strings.Repeat("  ", b.indent)+fmt.Sprintf(format, a...))
}

// open prints a line ending a block opener and indents what follows.
func (b *body) open(format string, a ...interface{}) {
	b.printf(format, a...)
	b.indent++
}

func (b *body) close(line string) {
	b.indent--
	b.printf("%s", line)
}
