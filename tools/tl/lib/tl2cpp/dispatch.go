// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tl2cpp

import (
	"path"

	"github.com/VKCOM/kphp-sub000/tools/tl/lib/trivial"
)

// DispatchEntry maps the wire name of a function to its store entry point.
type DispatchEntry struct {
	Name   string
	Storer string
}

// DispatchTable lists every exported function, sorted by name.
func DispatchTable(cl *trivial.Classifier) []DispatchEntry {
	var entries []DispatchEntry
	for _, f := range cl.ExportedFunctions() {
		entries = append(entries, DispatchEntry{Name: f.Name, Storer: CombinatorName(f) + "::store"})
	}
	return entries
}

// StorersTablePath returns the path of the dispatch table source.
func (c *Context) StorersTablePath() string {
	return path.Join(c.Config.GenSubdir, c.Config.StorersTable)
}
