// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tl2cpp

import (
	"path"
	"sort"
)

type FileKind int

const (
	Header FileKind = iota
	Source
)

func (k FileKind) String() string {
	if k == Header {
		return "header"
	}
	return "source"
}

func (k FileKind) ext() string {
	if k == Header {
		return ".h"
	}
	return ".cpp"
}

// FileDescriptor is one generated file of a namespace.
type FileDescriptor struct {
	Namespace string
	Kind      FileKind
	// Path is relative to the output root.
	Path  string
	Decls []*Decl

	deps map[string]bool
}

// Deps returns the paths of the headers this file includes, sorted.
func (f *FileDescriptor) Deps() []string {
	deps := make([]string, 0, len(f.deps))
	for d := range f.deps {
		deps = append(deps, d)
	}
	sort.Strings(deps)
	return deps
}

func (c *Context) filePath(ns string, kind FileKind) string {
	return path.Join(c.Config.GenSubdir, ns+kind.ext())
}

// file returns the descriptor of a file, creating it on first use.
func (c *Context) file(ns string, kind FileKind) *FileDescriptor {
	p := c.filePath(ns, kind)
	if f, ok := c.files[p]; ok {
		return f
	}
	f := &FileDescriptor{
		Namespace: ns,
		Kind:      kind,
		Path:      p,
		deps:      make(map[string]bool),
	}
	c.files[p] = f
	return f
}

// plan assigns declarations to files. Every declaration is declared in the
// header of its namespace; non-generic ones are defined in its source.
// Headers include the headers of the other namespaces they reference.
func (c *Context) plan() {
	for _, d := range c.decls {
		h := c.file(d.Namespace, Header)
		h.Decls = append(h.Decls, d)
		for ns := range d.refs {
			h.deps[c.filePath(ns, Header)] = true
		}
		if !d.Generic {
			src := c.file(d.Namespace, Source)
			src.Decls = append(src.Decls, d)
		}
	}
}

// Files returns every planned file, sorted by path.
func (c *Context) Files() []*FileDescriptor {
	c.Compile()
	files := make([]*FileDescriptor, 0, len(c.files))
	for _, f := range c.files {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}

// Headers returns the paths of every planned header, sorted.
func (c *Context) Headers() []string {
	var headers []string
	for _, f := range c.Files() {
		if f.Kind == Header {
			headers = append(headers, f.Path)
		}
	}
	return headers
}
