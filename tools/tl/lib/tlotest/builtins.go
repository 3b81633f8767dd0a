// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tlotest

import "github.com/VKCOM/kphp-sub000/tools/tl/lib/tlo"

// Type ids used by WithBuiltins.
const (
	NatID int32 = iota + 1
	IntID
	LongID
	DoubleID
	StringID
	TypeID
	TrueID
	BoolID
	VectorID
	MaybeID
	DictionaryID
	IntKeyDictionaryID
	LongKeyDictionaryID
	TupleID
)

// Magic converts a constructor magic to the signed id stored in schemas.
func Magic(u uint32) int32 {
	return int32(u)
}

// WithBuiltins declares the runtime-provided types and their constructors.
func (b *Builder) WithBuiltins() *Builder {
	b.Type(NatID, tlo.NameNat, 0, 0, 0).
		Type(IntID, tlo.NameInt, 0, 0, 0).
		Type(LongID, tlo.NameLong, 0, 0, 0).
		Type(DoubleID, tlo.NameDouble, 0, 0, 0).
		Type(StringID, tlo.NameString, 0, 0, 0).
		Type(TypeID, tlo.NameType, 0, 0, 0).
		Type(TrueID, tlo.NameTrue, 0, 0, 0).
		Type(BoolID, tlo.NameBool, 0, 0, 0).
		Type(VectorID, tlo.NameVector, 0, 1, 1).
		Type(MaybeID, tlo.NameMaybe, 0, 1, 1).
		Type(DictionaryID, tlo.NameDictionary, 0, 1, 1).
		Type(IntKeyDictionaryID, tlo.NameIntKeyDictionary, 0, 1, 1).
		Type(LongKeyDictionaryID, tlo.NameLongKeyDictionary, 0, 1, 1).
		Type(TupleID, tlo.NameTuple, 0, 2, 1)

	typeParam := Implicit("t", 0, T(TypeID))
	b.BuiltinConstructor(Magic(0xa8509bda), "int", IntID).
		BuiltinConstructor(Magic(0x22076cba), "long", LongID).
		BuiltinConstructor(Magic(0x2210c154), "double", DoubleID).
		BuiltinConstructor(Magic(0xb5286e24), "string", StringID).
		Constructor(Magic(0x3fedd339), "true", TrueID, T(TrueID)).
		Constructor(Magic(0xbc799737), "boolFalse", BoolID, T(BoolID)).
		Constructor(Magic(0x997275b5), "boolTrue", BoolID, T(BoolID)).
		Constructor(Magic(0x1cb5c415), "vector", VectorID, T(VectorID, TVar(0)),
			typeParam, Bound("n", 1, Bare(NatID)), Field("data", Array(NVar(1), Field("", TVar(0))))).
		Constructor(Magic(0x27930a7b), "resultFalse", MaybeID, T(MaybeID, TVar(0)), typeParam).
		Constructor(Magic(0x3f9c8ef8), "resultTrue", MaybeID, T(MaybeID, TVar(0)),
			typeParam, Field("result", TVar(0))).
		Constructor(Magic(0x1f4c618f), "dictionary", DictionaryID, T(DictionaryID, TVar(0)), typeParam).
		Constructor(Magic(0x07bafc42), "intKeyDictionary", IntKeyDictionaryID, T(IntKeyDictionaryID, TVar(0)), typeParam).
		Constructor(Magic(0xb424d0a5), "longKeyDictionary", LongKeyDictionaryID, T(LongKeyDictionaryID, TVar(0)), typeParam).
		Constructor(Magic(0x9770768a), "tuple", TupleID, T(TupleID, TVar(0), NVar(1)),
			typeParam, Implicit("n", 1, Bare(NatID)))
	return b
}
