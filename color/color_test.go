// Copyright 2018 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package color

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewColor(t *testing.T) {
	if NewColor(ColorNever).Enabled() {
		t.Errorf("ColorNever produced an enabled color")
	}
	if !NewColor(ColorAlways).Enabled() {
		t.Errorf("ColorAlways produced a monochrome color")
	}
}

func TestPaint(t *testing.T) {
	on, off := NewColor(ColorAlways), NewColor(ColorNever)
	cases := []struct {
		name string
		fn   func(string, ...interface{}) string
		want string
	}{
		{"red", on.Red, "\033[31mx 1\033[0m"},
		{"yellow", on.Yellow, "\033[33mx 1\033[0m"},
		{"blue", on.Blue, "\033[34mx 1\033[0m"},
		{"cyan", on.Cyan, "\033[36mx 1\033[0m"},
		{"monochrome red", off.Red, "x 1"},
		{"monochrome yellow", off.Yellow, "x 1"},
		{"monochrome blue", off.Blue, "x 1"},
		{"monochrome cyan", off.Cyan, "x 1"},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, tc.fn("x %d", 1)); diff != "" {
			t.Errorf("%s (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestEnableColorFlag(t *testing.T) {
	var ec EnableColor
	for _, s := range []string{"never", "auto", "always"} {
		if err := ec.Set(s); err != nil {
			t.Fatal(err)
		}
		if ec.String() != s {
			t.Errorf("Set(%q) then String() = %q", s, ec.String())
		}
	}
	if err := ec.Set("sometimes"); err == nil {
		t.Errorf("Set accepted an invalid value")
	}
}
