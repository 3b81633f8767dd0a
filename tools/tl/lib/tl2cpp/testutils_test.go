// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tl2cpp

import (
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func expectEqual(t *testing.T, left interface{}, right interface{}, opts ...cmp.Option) {
	if !cmp.Equal(left, right, opts...) {
		_, file, line, ok := runtime.Caller(1)
		if !ok {
			panic("Failed to get caller.")
		}
		t.Errorf(
			`
At %s:%v
Expected left/right to be equal, but
left:
%+v

right:
%+v

diff:
%v
`,
			file, line, left, right, cmp.Diff(left, right, opts...))
	}
}

func expectContains(t *testing.T, haystack string, needles ...string) {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			_, file, line, ok := runtime.Caller(1)
			if !ok {
				panic("Failed to get caller.")
			}
			t.Errorf("\nAt %s:%v\nExpected output to contain\n%s\n\noutput:\n%s", file, line, needle, haystack)
		}
	}
}
