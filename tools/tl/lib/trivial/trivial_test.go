// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package trivial_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlo"
	. "github.com/VKCOM/kphp-sub000/tools/tl/lib/tlotest"
	"github.com/VKCOM/kphp-sub000/tools/tl/lib/trivial"
)

const (
	pointID int32 = 100 + iota
	opaqueID
	holderID
	boxID
	aID
	bID
)

func schema(t *testing.T) *tlo.Schema {
	return New().WithBuiltins().
		Type(pointID, "geo.Point", 0, 0, 0).
		Type(opaqueID, "Opaque", 0, 0, 0).
		Type(holderID, "Holder", 0, 0, 0).
		Type(boxID, "Box", 0, 1, 1).
		Type(aID, "A", 0, 0, 0).
		Type(bID, "B", 0, 0, 0).
		Constructor(0x10, "geo.point", pointID, T(pointID),
			Field("x", Bare(DoubleID)),
			Field("y", Bare(DoubleID))).
		BuiltinConstructor(0x11, "opaque", opaqueID).
		Constructor(0x12, "holder", holderID, T(holderID),
			Field("items", T(VectorID, T(opaqueID)))).
		Constructor(0x13, "box", boxID, T(boxID, TVar(0)),
			Implicit("X", 0, T(TypeID)),
			Field("value", TVar(0))).
		Constructor(0x14, "a", aID, T(aID), Field("b", T(bID))).
		Constructor(0x15, "b", bID, T(bID), Field("a", T(aID)), Field("o", T(opaqueID))).
		Function(0x20, "geo.getPoint", pointID, T(pointID), Field("id", Bare(IntID))).
		Function(0x21, "getHolder", holderID, T(holderID)).
		Function(0x22, "invoke", 0, TVar(0),
			Implicit("X", 0, T(TypeID)),
			Excl("query", 0)).
		Function(0x23, "getBox", boxID, T(boxID, TVar(0)),
			Implicit("X", 0, T(TypeID))).
		Function(0x24, "aFunc", pointID, T(pointID), Field("t", T(TypeID))).
		Parse(t)
}

func TestClassification(t *testing.T) {
	s := schema(t)
	c := trivial.New(s)

	typeCases := []struct {
		name string
		want bool
	}{
		{"geo.Point", true},
		{"Opaque", false},
		{"Holder", false},
		{"Box", true},
		{"Vector", true},
		{"Int", true},
	}
	for _, tc := range typeCases {
		if got := c.IsTrivialType(s.TypeByName(tc.name).ID); got != tc.want {
			t.Errorf("IsTrivialType(%s) = %v, want %v", tc.name, got, tc.want)
		}
	}

	funcCases := []struct {
		name string
		want bool
	}{
		{"geo.getPoint", true},
		{"getHolder", false},
		{"invoke", true},
		{"getBox", true},
		{"aFunc", false},
	}
	for _, tc := range funcCases {
		if got := c.IsTrivialCombinator(s.FunctionByName(tc.name)); got != tc.want {
			t.Errorf("IsTrivialCombinator(%s) = %v, want %v", tc.name, got, tc.want)
		}
	}

	// Constructors share their type's verdict.
	if c.IsTrivialCombinator(s.Type(holderID).Constructors[0]) {
		t.Errorf("holder constructor classified as supported")
	}
}

// The recursion is resolved optimistically: a type still under examination
// counts as supported, so A is accepted while B, examined first, is not.
func TestOptimisticCycle(t *testing.T) {
	s := schema(t)
	c := trivial.New(s)
	if c.IsTrivialType(bID) {
		t.Fatalf("B references Opaque and must not be supported")
	}
	if !c.IsTrivialType(aID) {
		t.Errorf("A was resolved while B was in progress and should stay supported")
	}

	// Examined from the other end, the failure propagates through the cycle.
	c = trivial.New(s)
	if c.IsTrivialType(aID) {
		t.Errorf("A depends on B, which fails, and must not be supported")
	}
	if c.IsTrivialType(bID) {
		t.Errorf("B must not be supported")
	}
}

func TestGeneric(t *testing.T) {
	s := schema(t)
	c := trivial.New(s)

	cases := []struct {
		comb *tlo.Combinator
		want bool
	}{
		{s.Type(boxID).Constructors[0], true},
		{s.Type(pointID).Constructors[0], false},
		{s.FunctionByName("invoke"), false},
		{s.FunctionByName("getBox"), true},
	}
	for _, tc := range cases {
		if got := c.IsGenericCombinator(tc.comb); got != tc.want {
			t.Errorf("IsGenericCombinator(%s) = %v, want %v", tc.comb.Name, got, tc.want)
		}
	}
	if !c.IsGenericType(s.Type(boxID)) || c.IsGenericType(s.Type(pointID)) {
		t.Errorf("IsGenericType misclassified Box or geo.Point")
	}
}

func TestExportedFunctions(t *testing.T) {
	c := trivial.New(schema(t))
	var names []string
	for _, f := range c.ExportedFunctions() {
		names = append(names, f.Name)
	}
	want := []string{"geo.getPoint", "invoke"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("exported functions mismatch (-want +got):\n%s", diff)
	}
}

func TestCoverageGrowsWithBuiltins(t *testing.T) {
	s := schema(t)
	base := trivial.New(s).Coverage()
	extended := trivial.New(s, "Opaque").Coverage()

	if base.Types != 6 || base.Functions != 5 {
		t.Fatalf("unexpected totals: %+v", base)
	}
	if base.TrivialTypes != 2 || base.TrivialFunctions != 3 {
		t.Errorf("unexpected base coverage: %+v", base)
	}
	// Opaque is no longer counted, everything that used it is supported.
	if extended.Types != 5 || extended.TrivialTypes != 5 || extended.TrivialFunctions != 4 {
		t.Errorf("unexpected extended coverage: %+v", extended)
	}
	if extended.Percent() < base.Percent() {
		t.Errorf("coverage shrank from %.1f%% to %.1f%%", base.Percent(), extended.Percent())
	}

	baseSet := make(map[string]bool)
	for _, ty := range trivial.New(s).GeneratedTypes() {
		baseSet[ty.Name] = true
	}
	extSet := make(map[string]bool)
	for _, ty := range trivial.New(s, "Opaque").GeneratedTypes() {
		extSet[ty.Name] = true
	}
	for name := range baseSet {
		if !extSet[name] {
			t.Errorf("%s was generated before extending the builtins but not after", name)
		}
	}
}

func TestImplicitArgOutsideResult(t *testing.T) {
	s := New().WithBuiltins().
		Type(pointID, "Hidden", 0, 0, 0).
		Type(boxID, "Shifted", 0, 1, 0).
		Constructor(0x10, "hidden", pointID, T(pointID),
			Implicit("n", 0, Bare(NatID)),
			Field("xs", Array(NVar(0), Field("x", Bare(IntID))))).
		Constructor(0x11, "shifted", boxID, T(boxID, NVarPlus(0, 1)),
			Implicit("n", 0, Bare(NatID)),
			Field("xs", Array(NVar(0), Field("x", Bare(IntID))))).
		Parse(t)
	c := trivial.New(s)
	if c.IsTrivialType(pointID) {
		t.Errorf("Hidden has a parameter no type wrapper can supply")
	}
	if !c.IsTrivialType(boxID) {
		t.Errorf("Shifted takes its parameter from the result type")
	}
}

// !X is accepted only as an unconditional argument of a function.
func TestExclamationPlacement(t *testing.T) {
	maybeQuery := Excl("query", 0)
	maybeQuery.Flags |= tlo.FlagOptField
	maybeQuery.ExistVarNum = 1
	maybeQuery.ExistVarBit = 0
	s := New().WithBuiltins().
		Type(boxID, "Wrapped", 0, 1, 1).
		Constructor(0x10, "wrapped", boxID, T(boxID, TVar(0)),
			Implicit("X", 0, T(TypeID)),
			Excl("query", 0)).
		Function(0x20, "invoke", 0, TVar(0),
			Implicit("X", 0, T(TypeID)),
			Excl("query", 0)).
		Function(0x21, "maybeInvoke", 0, TVar(0),
			Implicit("X", 0, T(TypeID)),
			Bound("flags", 1, Bare(NatID)),
			maybeQuery).
		Parse(t)
	c := trivial.New(s)
	if c.IsTrivialType(boxID) {
		t.Errorf("a constructor has no request to bind !X to")
	}
	var names []string
	for _, f := range c.ExportedFunctions() {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"invoke"}, names); diff != "" {
		t.Errorf("a query behind a field mask leaves the result type unknown (-want +got):\n%s", diff)
	}
}
