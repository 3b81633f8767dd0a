// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tlo

// ConsKind tells how the constructors of a type are told apart in stored
// values.
type ConsKind int

const (
	// ConsRecord values are records; types with several constructors name
	// the constructor in the "_" key.
	ConsRecord ConsKind = iota
	// ConsBool values are booleans: the second constructor is true.
	ConsBool
	// ConsEnum values are the constructor names.
	ConsEnum
)

// Cons classifies the values of a type. Only types flagged NOCONS whose
// constructors carry no fields are stored without records; the flag is
// ignored otherwise.
func (t *Type) Cons() ConsKind {
	if !t.Flags.Has(FlagNoCons) || len(t.Constructors) < 2 {
		return ConsRecord
	}
	for _, ctor := range t.Constructors {
		if len(ctor.ExplicitArgs()) > 0 {
			return ConsRecord
		}
	}
	if len(t.Constructors) == 2 {
		return ConsBool
	}
	return ConsEnum
}

// IsFlat reports whether a constructor is encoded as its single field
// rather than as a record: it must be the only constructor of its type and
// have exactly one wire field, which is not optional.
func (s *Schema) IsFlat(ctor *Combinator) bool {
	if ctor.IsFunction() {
		return false
	}
	t := s.Type(ctor.TypeID)
	if t == nil || len(t.Constructors) != 1 {
		return false
	}
	explicit := ctor.ExplicitArgs()
	return len(explicit) == 1 && !explicit[0].IsOptional() && !explicit[0].IsExclamation()
}
