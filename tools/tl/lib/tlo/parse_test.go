// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tlo_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlo"
	. "github.com/VKCOM/kphp-sub000/tools/tl/lib/tlotest"
)

const (
	userID    int32 = 100
	messageID int32 = 101
	pairID    int32 = 102
)

func exampleSchema() *Builder {
	return New().WithBuiltins().
		Type(userID, "users.User", 0, 0, 0).
		Type(messageID, "Message", 0, 0, 0).
		Type(pairID, "Pair", 0, 2, 0b11).
		Constructor(0x1001, "users.user", userID, T(userID),
			Field("id", Bare(IntID)),
			Field("name", Bare(StringID))).
		Constructor(0x1002, "message", messageID, T(messageID),
			Bound("flags", 0, Bare(NatID)),
			Cond("author", 0, 2, T(userID)),
			Bound("n", 1, Bare(NatID)),
			Field("ids", Array(NVar(1), Field("id", Bare(IntID))))).
		Constructor(0x1003, "pair", pairID, T(pairID, TVar(0), TVar(1)),
			Implicit("X", 0, T(TypeID)),
			Implicit("Y", 1, T(TypeID)),
			Field("a", TVar(0)),
			Field("b", TVar(1))).
		Function(0x2001, "users.get", userID, T(userID), Field("id", Bare(IntID)))
}

func TestParseExample(t *testing.T) {
	s := exampleSchema().Parse(t)

	if s.Layout.Marker != tlo.SchemaV3 {
		t.Errorf("layout %s selected for a v3 schema", s.Layout.Name)
	}
	user := s.TypeByName("users.User")
	if user == nil || user.ID != userID {
		t.Fatalf("users.User not registered: %+v", user)
	}
	if len(user.Constructors) != 1 || user.Constructors[0].Name != "users.user" {
		t.Fatalf("unexpected constructors of users.User: %+v", user.Constructors)
	}

	msg := s.Type(messageID).Constructors[0]
	wantArgs := []*tlo.Arg{
		{Name: "flags", VarNum: 0, ExistVarNum: -1, ExistVarBit: -1, Type: &tlo.TypeApp{TypeID: NatID, Flags: tlo.FlagBare}},
		{Name: "author", Flags: tlo.FlagOptField, VarNum: -1, ExistVarNum: 0, ExistVarBit: 2, Type: &tlo.TypeApp{TypeID: userID}},
		{Name: "n", VarNum: 1, ExistVarNum: -1, ExistVarBit: -1, Type: &tlo.TypeApp{TypeID: NatID, Flags: tlo.FlagBare}},
	}
	if diff := cmp.Diff(wantArgs, msg.Args[:3]); diff != "" {
		t.Errorf("message args mismatch (-want +got):\n%s", diff)
	}

	arr, ok := msg.Args[3].Type.(*tlo.Array)
	if !ok {
		t.Fatalf("ids is %T, want *tlo.Array", msg.Args[3].Type)
	}
	if diff := cmp.Diff(&tlo.NatVar{VarNum: 1}, arr.Multiplicity); diff != "" {
		t.Errorf("multiplicity mismatch (-want +got):\n%s", diff)
	}
	if arr.Cell.Owner != 0x1002 {
		t.Errorf("cell owner = %#x, want 0x1002", arr.Cell.Owner)
	}
	// The builtin vector constructor contains the first array expression.
	if len(s.Cells) != 2 || s.Cells[1] != arr.Cell || arr.Cell.ID != 1 {
		t.Errorf("cells not registered in parse order: %+v", s.Cells)
	}

	pair := s.Type(pairID).Constructors[0]
	if got := len(pair.ImplicitArgs()); got != 2 {
		t.Errorf("pair has %d implicit args, want 2", got)
	}
	if got := len(pair.ExplicitArgs()); got != 2 {
		t.Errorf("pair has %d explicit args, want 2", got)
	}
	if !s.IsTypeOfTypes(pair.Args[0].Type) {
		t.Errorf("pair.X should be Type-valued")
	}

	if f := s.FunctionByName("users.get"); f == nil || !f.IsFunction() || f.ID != 0x2001 {
		t.Errorf("users.get not registered: %+v", f)
	}
}

func TestLayoutsAgree(t *testing.T) {
	v3 := exampleSchema().Parse(t)
	b := exampleSchema()
	b.Marker = tlo.SchemaV4
	v4 := b.Parse(t)

	if v4.Layout.Name != "v4" {
		t.Fatalf("layout %s selected for a v4 schema", v4.Layout.Name)
	}
	opts := cmp.AllowUnexported(tlo.Schema{}, tlo.Type{}, tlo.Layout{})
	v4.Layout = v3.Layout
	if diff := cmp.Diff(v3, v4, opts); diff != "" {
		t.Errorf("v3 and v4 encodings decode differently (-v3 +v4):\n%s", diff)
	}
}

func TestLayoutFlagRoundTrip(t *testing.T) {
	for _, marker := range []uint32{tlo.SchemaV3, tlo.SchemaV4} {
		l, err := tlo.LayoutFor(marker)
		if err != nil {
			t.Fatal(err)
		}
		for _, f := range []tlo.Flags{0, tlo.FlagOptVar, tlo.FlagOptField, tlo.FlagOptVar | tlo.FlagOptField | tlo.FlagExcl} {
			if got := l.ArgFlags(l.RawArgFlags(f)); got != f {
				t.Errorf("%s: flags %#x came back as %#x", l.Name, f, got)
			}
		}
	}
}

func TestMalformed(t *testing.T) {
	cases := []struct {
		name  string
		bytes func() []byte
	}{
		{"truncated", func() []byte {
			b := exampleSchema().Bytes()
			return b[:len(b)-6]
		}},
		{"trailing bytes", func() []byte {
			return append(exampleSchema().Bytes(), 0, 0, 0, 0)
		}},
		{"unknown marker", func() []byte {
			b := exampleSchema()
			b.Marker = 0x12345678
			return b.Bytes()
		}},
		{"unknown type reference", func() []byte {
			return New().WithBuiltins().
				Type(userID, "User", 0, 0, 0).
				Constructor(0x1, "user", userID, T(userID), Field("x", T(999))).
				Bytes()
		}},
		{"constructor of unknown type", func() []byte {
			return New().WithBuiltins().
				Constructor(0x1, "user", 999, T(IntID)).
				Bytes()
		}},
		{"constructor count mismatch", func() []byte {
			return New().WithBuiltins().
				Type(userID, "User", 0, 0, 0).DeclareConstructorCount(2).
				Constructor(0x1, "user", userID, T(userID)).
				Bytes()
		}},
		{"arity mismatch", func() []byte {
			return New().WithBuiltins().
				Type(userID, "User", 0, 0, 0).
				Constructor(0x1, "user", userID, T(userID), Field("v", T(VectorID))).
				Bytes()
		}},
		{"mask on unbound variable", func() []byte {
			return New().WithBuiltins().
				Type(userID, "User", 0, 0, 0).
				Constructor(0x1, "user", userID, T(userID), Cond("x", 3, 0, Bare(IntID))).
				Bytes()
		}},
		{"forward variable reference", func() []byte {
			return New().WithBuiltins().
				Type(userID, "User", 0, 0, 0).
				Constructor(0x1, "user", userID, T(userID),
					Field("xs", Array(NVar(0), Field("x", Bare(IntID)))),
					Bound("n", 0, Bare(NatID))).
				Bytes()
		}},
		{"nat where type expected", func() []byte {
			return New().WithBuiltins().
				Type(userID, "User", 0, 0, 0).
				Constructor(0x1, "user", userID, T(userID), Field("v", T(VectorID, Nat(3)))).
				Bytes()
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := tlo.Parse(c.bytes())
			if err == nil {
				t.Fatal("expected an error")
			}
			if !tlo.IsMalformed(err) {
				t.Errorf("expected a MalformedSchemaError, got %v", err)
			}
		})
	}
}

func TestNamespace(t *testing.T) {
	cases := []struct{ name, ns, local string }{
		{"users.getFull", "users", "getFull"},
		{"message", "", "message"},
		{"a.b.c", "a", "b.c"},
	}
	for _, c := range cases {
		if got := tlo.Namespace(c.name); got != c.ns {
			t.Errorf("Namespace(%q) = %q, want %q", c.name, got, c.ns)
		}
		if got := tlo.LocalName(c.name); got != c.local {
			t.Errorf("LocalName(%q) = %q, want %q", c.name, got, c.local)
		}
	}
}
