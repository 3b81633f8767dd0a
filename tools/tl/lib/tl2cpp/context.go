// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tl2cpp

import (
	"fmt"
	"sort"

	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlo"
	"github.com/VKCOM/kphp-sub000/tools/tl/lib/trivial"
)

// Context owns all state of one compilation: the schema, its
// classification, the generated declarations and the files they go to.
type Context struct {
	Schema     *tlo.Schema
	Classifier *trivial.Classifier
	Config     Config
	// Warnings collects the inconsistencies found while compiling. They do
	// not stop generation.
	Warnings []string

	compiled bool
	decls    []*Decl
	cells    map[int]*cellInfo
	warned   map[string]bool
	files    map[string]*FileDescriptor

	// globalFile names the files of entities without a namespace.
	globalFile string
}

// NewContext prepares the compilation of s.
func NewContext(s *tlo.Schema, cfg Config) *Context {
	c := &Context{
		Schema:     s,
		Classifier: trivial.New(s, cfg.ExtraBuiltins...),
		Config:     cfg,
		cells:      make(map[int]*cellInfo),
		warned:     make(map[string]bool),
		files:      make(map[string]*FileDescriptor),
	}
	c.globalFile = c.globalFileName()
	return c
}

func (c *Context) warnf(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	if c.warned[msg] {
		return
	}
	c.warned[msg] = true
	c.Warnings = append(c.Warnings, msg)
}

// Compile builds the declarations of every supported entity and assigns
// them to files. It is a no-op after the first call.
func (c *Context) Compile() {
	if c.compiled {
		return
	}
	c.compiled = true
	for _, t := range c.Classifier.GeneratedTypes() {
		c.decls = append(c.decls, c.typeDecl(t))
	}
	for _, t := range c.Classifier.GeneratedTypes() {
		for _, ctor := range t.Constructors {
			c.decls = append(c.decls, c.constructorDecl(ctor))
		}
	}
	for _, f := range c.Classifier.GeneratedFunctions() {
		c.decls = append(c.decls, c.functionDecl(f))
	}
	// Cells are compiled on first use; they follow in parse order.
	var ids []int
	for id := range c.cells {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		c.decls = append(c.decls, c.cells[id].decl)
	}
	c.plan()
}

// Decls returns the compiled declarations.
func (c *Context) Decls() []*Decl {
	c.Compile()
	return c.decls
}
