// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tlo

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlwire"
)

// Node tags of the binary schema.
const (
	TagType                  uint32 = 0x12eb4386
	TagCombinator            uint32 = 0x5c0a1ed5
	TagCombinatorLeftBuiltin uint32 = 0xcd211f63
	TagCombinatorLeft        uint32 = 0x4c12c6d9
	TagCombinatorRight       uint32 = 0x2c064372
	TagArg                   uint32 = 0x29dfe61b
	TagExprType              uint32 = 0xecc9da78
	TagExprNat               uint32 = 0xdcb49bd8
	TagNatConst              uint32 = 0x8ce940b1
	TagNatVar                uint32 = 0x4e8a14f0
	TagTypeVar               uint32 = 0x0142ceae
	TagArray                 uint32 = 0xd9fb20de
	TagTypeExpr              uint32 = 0xc1863d08
)

// ParseFile reads and decodes a .tlo file.
func ParseFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading schema")
	}
	s, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return s, nil
}

// Parse decodes a binary schema. Types are registered first so that
// combinators and type expressions can refer to any of them; combinators are
// then attached to their owning types in declaration order.
func Parse(data []byte) (*Schema, error) {
	p := &parser{
		r: tlwire.NewReader(data),
		s: &Schema{
			typesByID:     make(map[int32]*Type),
			typesByName:   make(map[string]*Type),
			functionsByID: make(map[int32]*Combinator),
			functionNames: make(map[string]*Combinator),
		},
	}
	if err := p.parseSchema(); err != nil {
		return nil, err
	}
	return p.s, nil
}

type parser struct {
	r *tlwire.Reader
	s *Schema
}

func (p *parser) malformed(format string, args ...interface{}) error {
	return &MalformedSchemaError{Offset: p.r.Pos(), Reason: fmt.Sprintf(format, args...)}
}

// wrap turns a reader error into a MalformedSchemaError; errors that are
// already malformed-schema errors pass through.
func (p *parser) wrap(err error, what string) error {
	if err == nil {
		return nil
	}
	if IsMalformed(err) {
		return err
	}
	return &MalformedSchemaError{Offset: p.r.Pos(), Reason: "reading " + what, Err: err}
}

func (p *parser) int32(what string) (int32, error) {
	v, err := p.r.ReadInt32()
	return v, p.wrap(err, what)
}

func (p *parser) uint32(what string) (uint32, error) {
	v, err := p.r.ReadUint32()
	return v, p.wrap(err, what)
}

func (p *parser) string(what string) (string, error) {
	v, err := p.r.ReadString()
	return v, p.wrap(err, what)
}

func (p *parser) count(what string) (int, error) {
	n, err := p.int32(what)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, p.malformed("negative %s %d", what, n)
	}
	// Every counted element occupies at least four bytes.
	if int(n) > p.r.Remaining()/4 {
		return 0, p.malformed("%s %d exceeds the remaining data", what, n)
	}
	return int(n), nil
}

func (p *parser) expectTag(want uint32, what string) error {
	tag, err := p.uint32(what + " tag")
	if err != nil {
		return err
	}
	if tag != want {
		return p.malformed("expected %s tag %#08x, got %#08x", what, want, tag)
	}
	return nil
}

func (p *parser) parseSchema() error {
	marker, err := p.uint32("schema marker")
	if err != nil {
		return err
	}
	layout, err := LayoutFor(marker)
	if err != nil {
		return &MalformedSchemaError{Offset: 0, Reason: "reading schema marker", Err: err}
	}
	p.s.Layout = layout
	if p.s.Date, err = p.int32("schema date"); err != nil {
		return err
	}

	n, err := p.count("type count")
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := p.parseType(); err != nil {
			return errors.Wrapf(err, "type #%d", i)
		}
	}

	if n, err = p.count("constructor count"); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		c, err := p.parseCombinator(Constructor)
		if err != nil {
			return errors.Wrapf(err, "constructor #%d", i)
		}
		owner := p.s.typesByID[c.TypeID]
		if owner == nil {
			return p.malformed("constructor %s refers to unknown type %#08x", c.Name, uint32(c.TypeID))
		}
		owner.Constructors = append(owner.Constructors, c)
		p.s.Constructors = append(p.s.Constructors, c)
	}

	if n, err = p.count("function count"); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		c, err := p.parseCombinator(Function)
		if err != nil {
			return errors.Wrapf(err, "function #%d", i)
		}
		if p.s.functionsByID[c.ID] != nil {
			return p.malformed("duplicate function id %#08x (%s)", uint32(c.ID), c.Name)
		}
		p.s.functionsByID[c.ID] = c
		p.s.functionNames[c.Name] = c
		p.s.Functions = append(p.s.Functions, c)
	}

	if p.r.Remaining() != 0 {
		return p.malformed("%d trailing bytes after the function table", p.r.Remaining())
	}
	for _, t := range p.s.Types {
		if int32(len(t.Constructors)) != t.declaredConstructors {
			return p.malformed("type %s declares %d constructors but %d were found",
				t.Name, t.declaredConstructors, len(t.Constructors))
		}
	}
	return nil
}

func (p *parser) parseType() error {
	if err := p.expectTag(TagType, "type"); err != nil {
		return err
	}
	t := &Type{}
	var err error
	if t.ID, err = p.int32("type id"); err != nil {
		return err
	}
	if t.Name, err = p.string("type name"); err != nil {
		return err
	}
	if t.declaredConstructors, err = p.int32("constructor count"); err != nil {
		return err
	}
	flags, err := p.uint32("type flags")
	if err != nil {
		return err
	}
	t.Flags = Flags(flags)
	if t.Arity, err = p.int32("type arity"); err != nil {
		return err
	}
	if t.ParamsType, err = p.r.ReadInt64(); err != nil {
		return p.wrap(err, "type params")
	}
	if t.Arity < 0 || t.Arity > 64 {
		return p.malformed("type %s has arity %d", t.Name, t.Arity)
	}
	if t.Arity < 64 && t.ParamsType>>uint(t.Arity) != 0 {
		return p.malformed("type %s marks parameters beyond its arity %d", t.Name, t.Arity)
	}
	if p.s.typesByID[t.ID] != nil {
		return p.malformed("duplicate type id %#08x (%s)", uint32(t.ID), t.Name)
	}
	p.s.typesByID[t.ID] = t
	p.s.typesByName[t.Name] = t
	p.s.Types = append(p.s.Types, t)
	return nil
}

// scope tracks the variables bound so far inside one combinator. Variables
// are only visible to arguments declared after the binding argument.
type scope struct {
	owner int32
	bound map[int32]bool
}

func (sc *scope) clone() *scope {
	c := &scope{owner: sc.owner, bound: make(map[int32]bool, len(sc.bound))}
	for k, v := range sc.bound {
		c.bound[k] = v
	}
	return c
}

func (p *parser) parseCombinator(kind CombinatorKind) (*Combinator, error) {
	if err := p.expectTag(TagCombinator, "combinator"); err != nil {
		return nil, err
	}
	c := &Combinator{Kind: kind}
	var err error
	if c.ID, err = p.int32("combinator id"); err != nil {
		return nil, err
	}
	if c.Name, err = p.string("combinator name"); err != nil {
		return nil, err
	}
	if c.TypeID, err = p.int32("combinator type"); err != nil {
		return nil, err
	}

	sc := &scope{owner: c.ID, bound: make(map[int32]bool)}
	left, err := p.uint32("combinator left tag")
	if err != nil {
		return nil, err
	}
	switch left {
	case TagCombinatorLeftBuiltin:
		c.Builtin = true
	case TagCombinatorLeft:
		if c.Args, err = p.parseArgs(sc); err != nil {
			return nil, errors.Wrapf(err, "%s %s", kind, c.Name)
		}
	default:
		return nil, p.malformed("unknown combinator left tag %#08x", left)
	}

	if err := p.expectTag(TagCombinatorRight, "combinator right"); err != nil {
		return nil, err
	}
	if c.Result, err = p.parseTypeExpr(sc); err != nil {
		return nil, errors.Wrapf(err, "result of %s", c.Name)
	}
	flags, err := p.uint32("combinator flags")
	if err != nil {
		return nil, err
	}
	c.Flags = Flags(flags)
	return c, nil
}

func (p *parser) parseArgs(sc *scope) ([]*Arg, error) {
	n, err := p.count("argument count")
	if err != nil {
		return nil, err
	}
	args := make([]*Arg, 0, n)
	for i := 0; i < n; i++ {
		a, err := p.parseArg(sc)
		if err != nil {
			return nil, errors.Wrapf(err, "argument #%d", i)
		}
		args = append(args, a)
	}
	return args, nil
}

func (p *parser) parseArg(sc *scope) (*Arg, error) {
	if err := p.expectTag(TagArg, "argument"); err != nil {
		return nil, err
	}
	a := &Arg{VarNum: -1, ExistVarNum: -1, ExistVarBit: -1}
	var err error
	if a.Name, err = p.string("argument name"); err != nil {
		return nil, err
	}
	raw, err := p.uint32("argument flags")
	if err != nil {
		return nil, err
	}
	a.Flags = p.s.Layout.ArgFlags(raw)
	if a.VarNum, err = p.int32("argument var_num"); err != nil {
		return nil, err
	}
	if a.VarNum < -1 {
		return nil, p.malformed("argument %s has var_num %d", a.Name, a.VarNum)
	}
	if a.IsOptional() {
		if a.ExistVarNum, err = p.int32("exist_var_num"); err != nil {
			return nil, err
		}
		if a.ExistVarBit, err = p.int32("exist_var_bit"); err != nil {
			return nil, err
		}
		if !sc.bound[a.ExistVarNum] {
			return nil, p.malformed("optional field %s is gated on unbound variable %d", a.Name, a.ExistVarNum)
		}
		if a.ExistVarBit < 0 || a.ExistVarBit > 31 {
			return nil, p.malformed("optional field %s uses mask bit %d", a.Name, a.ExistVarBit)
		}
	}
	if a.Type, err = p.parseTypeExpr(sc); err != nil {
		return nil, errors.Wrapf(err, "type of %s", a.Name)
	}
	if a.VarNum >= 0 {
		sc.bound[a.VarNum] = true
	}
	return a, nil
}

// parseExpr reads a child of a type application, which is wrapped in a tag
// saying whether it is a type or a nat.
func (p *parser) parseExpr(sc *scope) (Expr, error) {
	tag, err := p.uint32("expression tag")
	if err != nil {
		return nil, err
	}
	switch tag {
	case TagExprType:
		return p.parseTypeExpr(sc)
	case TagExprNat:
		return p.parseNatExpr(sc)
	}
	return nil, p.malformed("unknown expression tag %#08x", tag)
}

func (p *parser) parseTypeExpr(sc *scope) (Expr, error) {
	tag, err := p.uint32("type expression tag")
	if err != nil {
		return nil, err
	}
	switch tag {
	case TagTypeVar:
		v := &TypeVar{}
		if v.VarNum, err = p.int32("type var"); err != nil {
			return nil, err
		}
		flags, err := p.uint32("type var flags")
		if err != nil {
			return nil, err
		}
		v.Flags = Flags(flags)
		if !sc.bound[v.VarNum] {
			return nil, p.malformed("reference to unbound type variable %d", v.VarNum)
		}
		return v, nil

	case TagTypeExpr:
		e := &TypeApp{}
		if e.TypeID, err = p.int32("type reference"); err != nil {
			return nil, err
		}
		flags, err := p.uint32("type expression flags")
		if err != nil {
			return nil, err
		}
		e.Flags = Flags(flags)
		t := p.s.typesByID[e.TypeID]
		if t == nil {
			return nil, p.malformed("reference to unknown type %#08x", uint32(e.TypeID))
		}
		n, err := p.count("type expression children")
		if err != nil {
			return nil, err
		}
		if int32(n) != t.Arity {
			return nil, p.malformed("type %s applied to %d parameters, declared arity %d", t.Name, n, t.Arity)
		}
		for i := 0; i < n; i++ {
			child, err := p.parseExpr(sc)
			if err != nil {
				return nil, errors.Wrapf(err, "parameter %d of %s", i, t.Name)
			}
			_, isNat := child.(*NatVar)
			if _, ok := child.(*NatConst); ok {
				isNat = true
			}
			if isNat == t.IsTypeParam(i) {
				return nil, p.malformed("parameter %d of %s has the wrong kind", i, t.Name)
			}
			e.Children = append(e.Children, child)
		}
		return e, nil

	case TagArray:
		mult, err := p.parseNatExpr(sc)
		if err != nil {
			return nil, errors.Wrap(err, "array multiplicity")
		}
		cell := &Cell{ID: len(p.s.Cells), Owner: sc.owner}
		p.s.Cells = append(p.s.Cells, cell)
		// Variables bound inside the cell do not leak into the enclosing
		// combinator.
		if cell.Args, err = p.parseArgs(sc.clone()); err != nil {
			return nil, errors.Wrapf(err, "array cell %d", cell.ID)
		}
		return &Array{Multiplicity: mult, Cell: cell}, nil
	}
	return nil, p.malformed("unknown type expression tag %#08x", tag)
}

func (p *parser) parseNatExpr(sc *scope) (Expr, error) {
	tag, err := p.uint32("nat expression tag")
	if err != nil {
		return nil, err
	}
	switch tag {
	case TagNatConst:
		c := &NatConst{}
		if c.Value, err = p.int32("nat constant"); err != nil {
			return nil, err
		}
		return c, nil
	case TagNatVar:
		v := &NatVar{}
		if v.Diff, err = p.int32("nat var diff"); err != nil {
			return nil, err
		}
		if v.VarNum, err = p.int32("nat var"); err != nil {
			return nil, err
		}
		if !sc.bound[v.VarNum] {
			return nil, p.malformed("reference to unbound nat variable %d", v.VarNum)
		}
		return v, nil
	}
	return nil, p.malformed("unknown nat expression tag %#08x", tag)
}
