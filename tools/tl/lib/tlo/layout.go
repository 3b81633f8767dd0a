// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tlo

import "fmt"

// Schema markers.
const (
	SchemaV3 uint32 = 0xe4a8604b
	SchemaV4 uint32 = 0x90ac88d7
)

// Layout describes where a schema version keeps the "implicit variable" and
// "optional field" bits of an argument's flag word. It is chosen once from
// the schema marker.
type Layout struct {
	Marker   uint32
	Name     string
	optVar   Flags
	optField Flags
}

var layouts = []Layout{
	{Marker: SchemaV3, Name: "v3", optVar: FlagOptVar, optField: FlagOptField},
	{Marker: SchemaV4, Name: "v4", optVar: 1 << 1, optField: 1 << 2},
}

// LayoutFor returns the layout for a schema marker.
func LayoutFor(marker uint32) (Layout, error) {
	for _, l := range layouts {
		if l.Marker == marker {
			return l, nil
		}
	}
	return Layout{}, fmt.Errorf("unsupported schema marker %#08x", marker)
}

// ArgFlags converts a raw argument flag word to canonical flags.
func (l Layout) ArgFlags(raw uint32) Flags {
	f := Flags(raw)
	if l.optVar == FlagOptVar && l.optField == FlagOptField {
		return f
	}
	out := f &^ (l.optVar | l.optField)
	if f&l.optVar != 0 {
		out |= FlagOptVar
	}
	if f&l.optField != 0 {
		out |= FlagOptField
	}
	return out
}

// RawArgFlags is the inverse of ArgFlags.
func (l Layout) RawArgFlags(f Flags) uint32 {
	out := f &^ (FlagOptVar | FlagOptField)
	if f.Has(FlagOptVar) {
		out |= l.optVar
	}
	if f.Has(FlagOptField) {
		out |= l.optField
	}
	return uint32(out)
}
