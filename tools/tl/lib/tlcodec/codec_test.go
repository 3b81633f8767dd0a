// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tlcodec_test

import (
	"errors"
	"math"
	"math/bits"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlcodec"
	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlo"
	. "github.com/VKCOM/kphp-sub000/tools/tl/lib/tlotest"
	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlwire"
)

const (
	userID int32 = 100 + iota
	optID
	maskedID
	listID
	boxesID
	pairID
	flagID
	colorID
	shapeID
)

const (
	userMagic   uint32 = 0x1001
	optMagic    uint32 = 0x1002
	maskedMagic uint32 = 0x1003
	listMagic   uint32 = 0x1004
	boxesMagic  uint32 = 0x1005
	pairMagic   uint32 = 0x1006
	flagOnMagic uint32 = 0x1008
	greenMagic  uint32 = 0x100a
	circleMagic uint32 = 0x100c
	getMagic    uint32 = 0x2001
	invokeMagic uint32 = 0x2002
)

func newCodec(t *testing.T) *tlcodec.Codec {
	s := New().WithBuiltins().
		Type(userID, "users.User", 0, 0, 0).
		Type(optID, "Opt", 0, 0, 0).
		Type(maskedID, "Masked", 0, 0, 0).
		Type(listID, "List", 0, 0, 0).
		Type(boxesID, "Boxes", 0, 1, 1).
		Type(pairID, "Pair", 0, 2, 0b11).
		Type(flagID, "Flag", tlo.FlagNoCons, 0, 0).
		Type(colorID, "Color", tlo.FlagNoCons, 0, 0).
		Type(shapeID, "Shape", tlo.FlagDefaultConstructor, 0, 0).
		Constructor(int32(userMagic), "users.user", userID, T(userID),
			Field("id", Bare(IntID)),
			Field("name", Bare(StringID))).
		Constructor(int32(optMagic), "opt", optID, T(optID),
			Bound("flags", 0, Bare(NatID)),
			Cond("extra", 0, 2, Bare(IntID))).
		Constructor(int32(maskedMagic), "masked", maskedID, T(maskedID),
			Bound("flags", 0, Bare(NatID)),
			Cond("a", 0, 0, Bare(IntID)),
			Cond("b", 0, 1, Bare(LongID)),
			Cond("c", 0, 2, Bare(StringID)),
			Cond("d", 0, 3, T(userID))).
		Constructor(int32(listMagic), "list", listID, T(listID),
			Bound("n", 0, Bare(NatID)),
			Field("ids", Array(NVar(0), Field("id", Bare(IntID))))).
		Constructor(int32(boxesMagic), "boxes", boxesID, T(boxesID, TVar(0)),
			Implicit("X", 0, T(TypeID)),
			Bound("n", 1, Bare(NatID)),
			Field("items", Array(NVar(1),
				Bound("k", 2, Bare(NatID)),
				Field("v", TVar(0))))).
		Constructor(int32(pairMagic), "pair", pairID, T(pairID, TVar(0), TVar(1)),
			Implicit("X", 0, T(TypeID)),
			Implicit("Y", 1, T(TypeID)),
			Field("a", TVar(0)),
			Field("b", TVar(1))).
		Constructor(0x1007, "flagOff", flagID, T(flagID)).
		Constructor(int32(flagOnMagic), "flagOn", flagID, T(flagID)).
		Constructor(0x1009, "red", colorID, T(colorID)).
		Constructor(int32(greenMagic), "green", colorID, T(colorID)).
		Constructor(0x100b, "blue", colorID, T(colorID)).
		Constructor(int32(circleMagic), "circle", shapeID, T(shapeID), Field("r", Bare(DoubleID))).
		Constructor(0x100d, "square", shapeID, T(shapeID), Field("side", Bare(DoubleID))).
		Function(int32(getMagic), "users.get", userID, T(userID), Field("id", Bare(IntID))).
		Function(int32(invokeMagic), "invoke", 0, TVar(0),
			Implicit("X", 0, T(TypeID)),
			Excl("query", 0)).
		Parse(t)
	return tlcodec.New(s)
}

// wire builds an expected encoding. Integers are written as 32-bit words,
// strings with their padding.
func wire(t *testing.T, values ...interface{}) []byte {
	t.Helper()
	w := tlwire.NewWriter()
	for _, v := range values {
		switch v := v.(type) {
		case uint32:
			w.WriteUint32(v)
		case int:
			w.WriteInt32(int32(v))
		case int64:
			w.WriteInt64(v)
		case float64:
			w.WriteDouble(v)
		case string:
			if err := w.WriteString(v); err != nil {
				t.Fatal(err)
			}
		default:
			t.Fatalf("cannot encode %T", v)
		}
	}
	return append([]byte(nil), w.Bytes()...)
}

func store(t *testing.T, c *tlcodec.Codec, typeName string, v interface{}) []byte {
	t.Helper()
	w := tlwire.NewWriter()
	if err := c.Store(w, typeName, v); err != nil {
		t.Fatalf("Store(%s, %v): %v", typeName, v, err)
	}
	return w.Bytes()
}

func fetch(t *testing.T, c *tlcodec.Codec, typeName string, b []byte) interface{} {
	t.Helper()
	r := tlwire.NewReader(b)
	v, err := c.Fetch(r, typeName)
	if err != nil {
		t.Fatalf("Fetch(%s): %v", typeName, err)
	}
	if r.Remaining() != 0 {
		t.Errorf("Fetch(%s) left %d bytes", typeName, r.Remaining())
	}
	return v
}

func TestBooleanType(t *testing.T) {
	c := newCodec(t)
	b := store(t, c, "Flag", true)
	if diff := cmp.Diff(wire(t, flagOnMagic), b); diff != "" {
		t.Errorf("stored bytes mismatch (-want +got):\n%s", diff)
	}
	if got := fetch(t, c, "Flag", b); got != true {
		t.Errorf("fetched %#v, want true", got)
	}
	if got := fetch(t, c, "Flag", store(t, c, "Flag", false)); got != false {
		t.Errorf("fetched %#v, want false", got)
	}
}

func TestEnumType(t *testing.T) {
	c := newCodec(t)
	b := store(t, c, "Color", "green")
	if diff := cmp.Diff(wire(t, greenMagic), b); diff != "" {
		t.Errorf("stored bytes mismatch (-want +got):\n%s", diff)
	}
	if got := fetch(t, c, "Color", b); got != "green" {
		t.Errorf("fetched %#v, want green", got)
	}
	var verr *tlcodec.ValueError
	if err := c.Store(tlwire.NewWriter(), "Color", "purple"); !errors.As(err, &verr) {
		t.Errorf("storing an unknown constructor: got %v, want a ValueError", err)
	}
}

func TestFieldMask(t *testing.T) {
	c := newCodec(t)
	cases := []struct {
		name  string
		value map[string]interface{}
		want  []byte
	}{
		{
			name:  "bit set",
			value: map[string]interface{}{"flags": int64(4), "extra": int64(9)},
			want:  wire(t, optMagic, 4, 9),
		},
		{
			name:  "bit clear",
			value: map[string]interface{}{"flags": int64(0), "extra": int64(9)},
			want:  wire(t, optMagic, 0),
		},
		{
			name:  "other bits",
			value: map[string]interface{}{"flags": int64(3)},
			want:  wire(t, optMagic, 3),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := store(t, c, "Opt", tc.value)
			if diff := cmp.Diff(tc.want, b); diff != "" {
				t.Fatalf("stored bytes mismatch (-want +got):\n%s", diff)
			}
			want := map[string]interface{}{"flags": tc.value["flags"]}
			if tc.value["flags"].(int64)&4 != 0 {
				want["extra"] = tc.value["extra"]
			}
			if diff := cmp.Diff(want, fetch(t, c, "Opt", b)); diff != "" {
				t.Errorf("fetched value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFieldMaskExhaustive(t *testing.T) {
	c := newCodec(t)
	user := map[string]interface{}{"id": int64(1), "name": "ann"}
	fields := []struct {
		name  string
		value interface{}
		size  int
	}{
		{"a", int64(-1), 4},
		{"b", int64(1) << 40, 8},
		{"c", "abc", 4},
		{"d", user, 12},
	}
	for mask := 0; mask < 1<<len(fields); mask++ {
		value := map[string]interface{}{"flags": int64(mask)}
		size := 8
		for i, f := range fields {
			if mask&(1<<i) != 0 {
				value[f.name] = f.value
				size += f.size
			}
		}
		b := store(t, c, "Masked", value)
		if len(b) != size {
			t.Errorf("mask %04b (%d fields): stored %d bytes, want %d", mask, bits.OnesCount(uint(mask)), len(b), size)
		}
		if diff := cmp.Diff(value, fetch(t, c, "Masked", b)); diff != "" {
			t.Errorf("mask %04b: round trip mismatch (-want +got):\n%s", mask, diff)
		}
	}
}

func TestArray(t *testing.T) {
	c := newCodec(t)
	value := map[string]interface{}{
		"n":   int64(3),
		"ids": []interface{}{int64(7), int64(9), int64(11)},
	}
	b := store(t, c, "List", value)
	if diff := cmp.Diff(wire(t, listMagic, 3, 7, 9, 11), b); diff != "" {
		t.Errorf("stored bytes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(value, fetch(t, c, "List", b)); diff != "" {
		t.Errorf("fetched value mismatch (-want +got):\n%s", diff)
	}

	short := map[string]interface{}{"n": int64(3), "ids": []interface{}{int64(7)}}
	var verr *tlcodec.ValueError
	if err := c.Store(tlwire.NewWriter(), "List", short); !errors.As(err, &verr) {
		t.Errorf("storing a short array: got %v, want a ValueError", err)
	}
}

func typeApp(id int32, children ...tlo.Expr) *tlo.TypeApp {
	return &tlo.TypeApp{TypeID: id, Children: children}
}

func TestRoundTrip(t *testing.T) {
	c := newCodec(t)
	cases := []struct {
		name  string
		expr  tlo.Expr
		value interface{}
	}{
		{"vector", typeApp(VectorID, typeApp(IntID)), []interface{}{int64(1), int64(-2)}},
		{"empty vector", typeApp(VectorID, typeApp(StringID)), []interface{}{}},
		{"maybe absent", typeApp(MaybeID, typeApp(StringID)), nil},
		{"maybe present", typeApp(MaybeID, typeApp(StringID)), "x"},
		{"dictionary", typeApp(DictionaryID, typeApp(LongID)), map[string]interface{}{"a": int64(1), "b": int64(2)}},
		{"int key dictionary", typeApp(IntKeyDictionaryID, typeApp(BoolID)), map[int64]interface{}{-1: true, 7: false}},
		{"long key dictionary", typeApp(LongKeyDictionaryID, typeApp(DoubleID)), map[int64]interface{}{1 << 40: 0.5}},
		{"tuple", typeApp(TupleID, typeApp(DoubleID), &tlo.NatConst{Value: 2}), []interface{}{1.5, 2.5}},
		{"boxes", typeApp(boxesID, typeApp(StringID)), map[string]interface{}{
			"n": int64(2),
			"items": []interface{}{
				map[string]interface{}{"k": int64(1), "v": "one"},
				map[string]interface{}{"k": int64(2), "v": "two"},
			},
		}},
		{"nested generic", typeApp(pairID, typeApp(VectorID, typeApp(userID)), typeApp(MaybeID, typeApp(IntID))), map[string]interface{}{
			"a": []interface{}{map[string]interface{}{"id": int64(3), "name": "bo"}},
			"b": int64(4),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := tlwire.NewWriter()
			if err := c.StoreExpr(w, tc.expr, tc.value); err != nil {
				t.Fatal(err)
			}
			r := tlwire.NewReader(w.Bytes())
			got, err := c.FetchExpr(r, tc.expr)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.value, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
			if r.Remaining() != 0 {
				t.Errorf("%d bytes left", r.Remaining())
			}
		})
	}
}

// Keys of an IntKeyDictionary are 32-bit on the wire.
func TestIntKeyRange(t *testing.T) {
	c := newCodec(t)
	dict := typeApp(IntKeyDictionaryID, typeApp(BoolID))

	edges := map[int64]interface{}{math.MinInt32: true, math.MaxInt32: false}
	w := tlwire.NewWriter()
	if err := c.StoreExpr(w, dict, edges); err != nil {
		t.Fatal(err)
	}
	got, err := c.FetchExpr(tlwire.NewReader(w.Bytes()), dict)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(edges, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	for _, k := range []int64{1 << 40, math.MaxInt32 + 1, math.MinInt32 - 1} {
		var verr *tlcodec.ValueError
		err := c.StoreExpr(tlwire.NewWriter(), dict, map[int64]interface{}{k: true})
		if !errors.As(err, &verr) {
			t.Errorf("storing key %d: got %v, want a ValueError", k, err)
			continue
		}
		if verr.Value != k {
			t.Errorf("storing key %d: error names %v", k, verr.Value)
		}
	}
}

// Two instantiations of one generic type encode their parameters
// independently.
func TestGenericInstantiations(t *testing.T) {
	c := newCodec(t)
	left := typeApp(pairID, typeApp(IntID), typeApp(StringID))
	right := typeApp(pairID, typeApp(StringID), typeApp(IntID))

	w := tlwire.NewWriter()
	if err := c.StoreExpr(w, left, map[string]interface{}{"a": int64(1), "b": "s"}); err != nil {
		t.Fatal(err)
	}
	if err := c.StoreExpr(w, right, map[string]interface{}{"a": "s", "b": int64(1)}); err != nil {
		t.Fatal(err)
	}
	want := wire(t,
		pairMagic, tlcodec.MagicInt, 1, tlcodec.MagicString, "s",
		pairMagic, tlcodec.MagicString, "s", tlcodec.MagicInt, 1)
	if diff := cmp.Diff(want, w.Bytes()); diff != "" {
		t.Errorf("stored bytes mismatch (-want +got):\n%s", diff)
	}

	var verr *tlcodec.ValueError
	if err := c.StoreExpr(tlwire.NewWriter(), right, map[string]interface{}{"a": int64(1), "b": "s"}); !errors.As(err, &verr) {
		t.Errorf("storing a Pair<Int,String> value as Pair<String,Int>: got %v, want a ValueError", err)
	}
}

func TestDefaultConstructor(t *testing.T) {
	c := newCodec(t)
	square := map[string]interface{}{"_": "square", "side": 2.0}
	b := store(t, c, "Shape", square)
	if diff := cmp.Diff(wire(t, 2.0), b); diff != "" {
		t.Errorf("stored bytes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(square, fetch(t, c, "Shape", b)); diff != "" {
		t.Errorf("fetched value mismatch (-want +got):\n%s", diff)
	}

	circle := map[string]interface{}{"_": "circle", "r": 1.0}
	b = store(t, c, "Shape", circle)
	if diff := cmp.Diff(wire(t, circleMagic, 1.0), b); diff != "" {
		t.Errorf("stored bytes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(circle, fetch(t, c, "Shape", b)); diff != "" {
		t.Errorf("fetched value mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownMagic(t *testing.T) {
	c := newCodec(t)
	_, err := c.Fetch(tlwire.NewReader(wire(t, uint32(0xdeadbeef))), "users.User")
	var merr *tlcodec.UnknownMagicError
	if !errors.As(err, &merr) {
		t.Fatalf("got %v, want an UnknownMagicError", err)
	}
	if merr.Magic != 0xdeadbeef || merr.Type != "users.User" {
		t.Errorf("unexpected error contents: %+v", merr)
	}
}

func TestExclamation(t *testing.T) {
	c := newCodec(t)
	if diff := cmp.Diff([]string{"invoke", "users.get"}, c.Registry().Names()); diff != "" {
		t.Errorf("registry mismatch (-want +got):\n%s", diff)
	}

	w := tlwire.NewWriter()
	fetcher, err := c.StoreRequest(w, map[string]interface{}{
		"_":     "invoke",
		"query": map[string]interface{}{"_": "users.get", "id": int64(5)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(wire(t, invokeMagic, getMagic, 5), w.Bytes()); diff != "" {
		t.Errorf("stored request mismatch (-want +got):\n%s", diff)
	}

	got, err := fetcher(tlwire.NewReader(wire(t, userMagic, 5, "bob")))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]interface{}{"id": int64(5), "name": "bob"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fetched result mismatch (-want +got):\n%s", diff)
	}

	var ferr *tlcodec.UnknownFunctionError
	_, err = c.StoreRequest(tlwire.NewWriter(), map[string]interface{}{"_": "missing"})
	if !errors.As(err, &ferr) {
		t.Errorf("got %v, want an UnknownFunctionError", err)
	}
}
