// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tlcodec

import (
	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlwire"
)

// Fetcher reads the result of a stored request.
type Fetcher func(r *tlwire.Reader) (interface{}, error)

// StoreFunc writes a request and returns the fetcher of its result.
type StoreFunc func(w *tlwire.Writer, request map[string]interface{}) (Fetcher, error)

// Registry maps the names of exported functions to their store functions.
type Registry struct {
	funcs map[string]StoreFunc
	names []string
}

func (r *Registry) Lookup(name string) (StoreFunc, bool) {
	f, ok := r.funcs[name]
	return f, ok
}

// Names returns the registered function names, sorted.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}
