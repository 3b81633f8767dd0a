// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tlo

import (
	"fmt"

	"github.com/pkg/errors"
)

// MalformedSchemaError reports a schema that cannot be decoded: a read past
// the end of the buffer, an unknown tag, a dangling reference or
// inconsistent counts. It is always fatal.
type MalformedSchemaError struct {
	Offset int
	Reason string
	Err    error
}

func (e *MalformedSchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed schema at offset %d: %s: %v", e.Offset, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed schema at offset %d: %s", e.Offset, e.Reason)
}

func (e *MalformedSchemaError) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err, or any error it wraps, is a
// MalformedSchemaError.
func IsMalformed(err error) bool {
	var m *MalformedSchemaError
	return errors.As(err, &m)
}
