// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tlcodec

import "fmt"

// ValueError reports a value that does not have the shape of the type it
// is stored as.
type ValueError struct {
	Type  string
	Value interface{}
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("cannot store %T (%v) as %s", e.Value, e.Value, e.Type)
}

// UnknownMagicError reports a fetched magic that matches no constructor of
// the expected type.
type UnknownMagicError struct {
	Type  string
	Magic uint32
}

func (e *UnknownMagicError) Error() string {
	return fmt.Sprintf("unexpected magic %#08x for %s", e.Magic, e.Type)
}

// UnknownFunctionError reports a request naming a function that is not
// exported.
type UnknownFunctionError struct {
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("no exported function %q", e.Name)
}

// UnsupportedError reports a type the code generator does not support.
type UnsupportedError struct {
	Name string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s is not supported", e.Name)
}
