// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tlo

// Names of the types whose encoding is fixed by the TL runtime.
const (
	NameNat               = "#"
	NameInt               = "Int"
	NameLong              = "Long"
	NameDouble            = "Double"
	NameString            = "String"
	NameType              = "Type"
	NameTrue              = "True"
	NameBool              = "Bool"
	NameVector            = "Vector"
	NameMaybe             = "Maybe"
	NameDictionary        = "Dictionary"
	NameIntKeyDictionary  = "IntKeyDictionary"
	NameLongKeyDictionary = "LongKeyDictionary"
	NameTuple             = "Tuple"
)

// IsTypeOfTypes reports whether e is an application of the Type builtin,
// i.e. the type of a Type-valued parameter.
func (s *Schema) IsTypeOfTypes(e Expr) bool {
	app, ok := e.(*TypeApp)
	if !ok {
		return false
	}
	t := s.Type(app.TypeID)
	return t != nil && t.Name == NameType
}

// IsNat reports whether e is an application of the # builtin.
func (s *Schema) IsNat(e Expr) bool {
	app, ok := e.(*TypeApp)
	if !ok {
		return false
	}
	t := s.Type(app.TypeID)
	return t != nil && t.Name == NameNat
}
