// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package tlcodec stores and fetches values of a TL schema the way the
// generated C++ code does, interpreting the schema model directly.
//
// Values use a small fixed model: records are map[string]interface{},
// integers are int64, doubles float64, strings string. Bool and True are
// bool, Maybe is nil or its value, vectors, tuples and arrays are
// []interface{}. Dictionary is map[string]interface{}, the integer-keyed
// dictionaries are map[int64]interface{}. Types with several record
// constructors name the constructor in the "_" key. NOCONS types without
// fields are bool (two constructors) or the constructor name.
package tlcodec

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlo"
	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlwire"
	"github.com/VKCOM/kphp-sub000/tools/tl/lib/trivial"
)

// typeRef is a type expression together with the variables it was written
// under. References to !X variables of a request carry the fetcher of the
// inner request instead.
type typeRef struct {
	expr  tlo.Expr
	env   *env
	fetch Fetcher
}

type param struct {
	typ typeRef
	nat int64
}

// env binds the variables of one combinator or array cell.
type env struct {
	types map[int32]typeRef
	nats  map[int32]int64
}

func newEnv() *env {
	return &env{types: make(map[int32]typeRef), nats: make(map[int32]int64)}
}

func (e *env) clone() *env {
	c := newEnv()
	for k, v := range e.types {
		c.types[k] = v
	}
	for k, v := range e.nats {
		c.nats[k] = v
	}
	return c
}

func (e *env) bit(v, bit int32) bool {
	return e.nats[v]&(1<<uint(bit)) != 0
}

// Codec encodes values of one schema.
type Codec struct {
	schema     *tlo.Schema
	classifier *trivial.Classifier
	registry   *Registry
}

// New returns a codec for s. Extra builtins must match those the code was
// generated with.
func New(s *tlo.Schema, extraBuiltins ...string) *Codec {
	c := &Codec{
		schema:     s,
		classifier: trivial.New(s, extraBuiltins...),
		registry:   &Registry{funcs: make(map[string]StoreFunc)},
	}
	for _, f := range c.classifier.ExportedFunctions() {
		f := f
		c.registry.names = append(c.registry.names, f.Name)
		c.registry.funcs[f.Name] = func(w *tlwire.Writer, request map[string]interface{}) (Fetcher, error) {
			return c.storeFunction(w, f, request)
		}
	}
	return c
}

// Registry returns the exported functions.
func (c *Codec) Registry() *Registry {
	return c.registry
}

func (c *Codec) typeByName(name string) (*tlo.Type, error) {
	t := c.schema.TypeByName(name)
	if t == nil {
		return nil, errors.Errorf("unknown type %s", name)
	}
	if c.classifier.IsGenericType(t) {
		return nil, errors.Errorf("%s needs type parameters", name)
	}
	return t, nil
}

// Store writes v as a boxed value of the named type.
func (c *Codec) Store(w *tlwire.Writer, typeName string, v interface{}) error {
	t, err := c.typeByName(typeName)
	if err != nil {
		return err
	}
	return c.storeType(w, t, nil, v, false)
}

// StoreBare writes v as a bare value of the named type.
func (c *Codec) StoreBare(w *tlwire.Writer, typeName string, v interface{}) error {
	t, err := c.typeByName(typeName)
	if err != nil {
		return err
	}
	return c.storeType(w, t, nil, v, true)
}

// Fetch reads a boxed value of the named type.
func (c *Codec) Fetch(r *tlwire.Reader, typeName string) (interface{}, error) {
	t, err := c.typeByName(typeName)
	if err != nil {
		return nil, err
	}
	return c.fetchType(r, t, nil, false)
}

// FetchBare reads a bare value of the named type.
func (c *Codec) FetchBare(r *tlwire.Reader, typeName string) (interface{}, error) {
	t, err := c.typeByName(typeName)
	if err != nil {
		return nil, err
	}
	return c.fetchType(r, t, nil, true)
}

// StoreExpr writes v as a value of a closed type expression.
func (c *Codec) StoreExpr(w *tlwire.Writer, e tlo.Expr, v interface{}) error {
	return c.storeExpr(w, e, newEnv(), v, false)
}

// FetchExpr reads a value of a closed type expression.
func (c *Codec) FetchExpr(r *tlwire.Reader, e tlo.Expr) (interface{}, error) {
	return c.fetchExpr(r, e, newEnv(), false)
}

// StoreRequest writes the request naming an exported function in its "_"
// key and returns the fetcher of its result.
func (c *Codec) StoreRequest(w *tlwire.Writer, request map[string]interface{}) (Fetcher, error) {
	name, ok := request["_"].(string)
	if !ok {
		return nil, &ValueError{Type: "request", Value: request["_"]}
	}
	store, ok := c.registry.Lookup(name)
	if !ok {
		return nil, &UnknownFunctionError{Name: name}
	}
	return store(w, request)
}

func (c *Codec) storeFunction(w *tlwire.Writer, f *tlo.Combinator, request map[string]interface{}) (Fetcher, error) {
	w.WriteUint32(uint32(f.ID))
	e := newEnv()
	if err := c.storeArgs(w, f.Args, e, request, false, true); err != nil {
		return nil, errors.Wrap(err, f.Name)
	}
	return func(r *tlwire.Reader) (interface{}, error) {
		v, err := c.fetchExpr(r, f.Result, e, false)
		return v, errors.Wrapf(err, "result of %s", f.Name)
	}, nil
}

func (c *Codec) evalNat(e tlo.Expr, env *env) (int64, error) {
	switch e := e.(type) {
	case *tlo.NatConst:
		return int64(e.Value), nil
	case *tlo.NatVar:
		n, ok := env.nats[e.VarNum]
		if !ok {
			return 0, errors.Errorf("nat variable %d is unbound", e.VarNum)
		}
		return n + int64(e.Diff), nil
	}
	return 0, errors.Errorf("%T is not a nat expression", e)
}

// params resolves the parameters an application passes to its type.
func (c *Codec) params(t *tlo.Type, app *tlo.TypeApp, env *env) ([]param, error) {
	params := make([]param, len(app.Children))
	for i, child := range app.Children {
		if t.IsTypeParam(i) {
			params[i].typ = typeRef{expr: child, env: env}
			continue
		}
		n, err := c.evalNat(child, env)
		if err != nil {
			return nil, err
		}
		params[i].nat = n
	}
	return params, nil
}

// constructorEnv binds the implicit arguments of ctor to the parameters of
// its type.
func constructorEnv(ctor *tlo.Combinator, params []param) *env {
	e := newEnv()
	result, ok := ctor.Result.(*tlo.TypeApp)
	if !ok {
		return e
	}
	for _, a := range ctor.ImplicitArgs() {
		i := trivial.ResultParam(result, a.VarNum)
		if i < 0 || i >= len(params) {
			continue
		}
		switch child := result.Children[i].(type) {
		case *tlo.TypeVar:
			e.types[a.VarNum] = params[i].typ
		case *tlo.NatVar:
			e.nats[a.VarNum] = params[i].nat - int64(child.Diff)
		}
	}
	return e
}

func (c *Codec) storeRef(w *tlwire.Writer, ref typeRef, v interface{}, bare bool) error {
	if ref.fetch != nil {
		return errors.New("cannot store a value of a late-bound type")
	}
	return c.storeExpr(w, ref.expr, ref.env, v, bare)
}

func (c *Codec) storeExpr(w *tlwire.Writer, e tlo.Expr, env *env, v interface{}, bare bool) error {
	switch e := e.(type) {
	case *tlo.TypeVar:
		ref, ok := env.types[e.VarNum]
		if !ok {
			return errors.Errorf("type variable %d is unbound", e.VarNum)
		}
		return c.storeRef(w, ref, v, bare || e.Flags.Has(tlo.FlagBare))
	case *tlo.TypeApp:
		t := c.schema.Type(e.TypeID)
		params, err := c.params(t, e, env)
		if err != nil {
			return err
		}
		return c.storeType(w, t, params, v, bare || e.Bare())
	case *tlo.Array:
		return c.storeArray(w, e, env, v)
	}
	return errors.Errorf("cannot store a value of %T", e)
}

func (c *Codec) selectConstructor(t *tlo.Type, v interface{}) (*tlo.Combinator, error) {
	var name string
	switch t.Cons() {
	case tlo.ConsBool:
		b, ok := v.(bool)
		if !ok {
			return nil, &ValueError{Type: t.Name, Value: v}
		}
		if b {
			return t.Constructors[1], nil
		}
		return t.Constructors[0], nil
	case tlo.ConsEnum:
		name, _ = v.(string)
	default:
		m, _ := v.(map[string]interface{})
		name, _ = m["_"].(string)
	}
	for _, ctor := range t.Constructors {
		if ctor.Name == name {
			return ctor, nil
		}
	}
	return nil, &ValueError{Type: t.Name, Value: v}
}

func (c *Codec) storeType(w *tlwire.Writer, t *tlo.Type, params []param, v interface{}, bare bool) error {
	if c.classifier.IsBuiltin(t.Name) {
		return c.storeBuiltin(w, t, params, v, bare)
	}
	if !c.classifier.IsTrivialType(t.ID) {
		return &UnsupportedError{Name: t.Name}
	}
	var ctor *tlo.Combinator
	switch len(t.Constructors) {
	case 0:
		return &ValueError{Type: t.Name, Value: v}
	case 1:
		ctor = t.Constructors[0]
	default:
		// Bare polymorphic references are stored boxed.
		bare = false
		var err error
		if ctor, err = c.selectConstructor(t, v); err != nil {
			return err
		}
	}
	if !bare && ctor != t.DefaultConstructor() {
		w.WriteUint32(uint32(ctor.ID))
	}
	if t.Cons() != tlo.ConsRecord {
		return nil
	}
	err := c.storeArgs(w, ctor.Args, constructorEnv(ctor, params), v, c.schema.IsFlat(ctor), false)
	return errors.Wrap(err, ctor.Name)
}

// storeArgs writes the wire fields of args. A flat argument list stores v
// as its single field. Implicit nat arguments of functions are read from
// the request when readImplicit is set.
func (c *Codec) storeArgs(w *tlwire.Writer, args []*tlo.Arg, env *env, v interface{}, flat, readImplicit bool) error {
	var m map[string]interface{}
	if !flat {
		var ok bool
		if m, ok = v.(map[string]interface{}); !ok {
			return &ValueError{Type: "record", Value: v}
		}
	}
	field := func(a *tlo.Arg) (interface{}, error) {
		if flat {
			return v, nil
		}
		x, ok := m[a.Name]
		if !ok {
			return nil, errors.Errorf("missing field %q", a.Name)
		}
		return x, nil
	}
	nat := func(a *tlo.Arg) error {
		x, err := field(a)
		if err != nil {
			return err
		}
		n, ok := toInt64(x)
		if !ok {
			return &ValueError{Type: tlo.NameNat, Value: x}
		}
		env.nats[a.VarNum] = n
		return nil
	}

	for _, a := range args {
		if a.IsImplicit() {
			if readImplicit && !c.schema.IsTypeOfTypes(a.Type) {
				if err := nat(a); err != nil {
					return err
				}
			}
			continue
		}
		if a.IsOptional() {
			if a.VarNum >= 0 {
				env.nats[a.VarNum] = 0
			}
			if !env.bit(a.ExistVarNum, a.ExistVarBit) {
				continue
			}
		}
		if a.IsExclamation() {
			x, err := field(a)
			if err != nil {
				return err
			}
			req, ok := x.(map[string]interface{})
			if !ok {
				return &ValueError{Type: "request", Value: x}
			}
			fetch, err := c.StoreRequest(w, req)
			if err != nil {
				return errors.Wrapf(err, "field %s", a.Name)
			}
			env.types[a.Type.(*tlo.TypeVar).VarNum] = typeRef{fetch: fetch}
			continue
		}
		if a.VarNum >= 0 {
			if err := nat(a); err != nil {
				return err
			}
		}
		x, err := field(a)
		if err != nil {
			return err
		}
		if err := c.storeExpr(w, a.Type, env, x, false); err != nil {
			return errors.Wrapf(err, "field %s", a.Name)
		}
	}
	return nil
}

// isAliasCell reports whether the elements of an array are its single
// field rather than records.
func isAliasCell(cell *tlo.Cell) bool {
	return len(cell.Args) == 1 && !cell.Args[0].IsOptional()
}

func (c *Codec) storeArray(w *tlwire.Writer, arr *tlo.Array, env *env, v interface{}) error {
	n, err := c.evalNat(arr.Multiplicity, env)
	if err != nil {
		return err
	}
	items, ok := v.([]interface{})
	if !ok || int64(len(items)) != n {
		return &ValueError{Type: fmt.Sprintf("array of %d", n), Value: v}
	}
	alias := isAliasCell(arr.Cell)
	for i, item := range items {
		if err := c.storeArgs(w, arr.Cell.Args, env.clone(), item, alias, false); err != nil {
			return errors.Wrapf(err, "item %d", i)
		}
	}
	return nil
}

func (c *Codec) fetchRef(r *tlwire.Reader, ref typeRef, bare bool) (interface{}, error) {
	if ref.fetch != nil {
		return ref.fetch(r)
	}
	return c.fetchExpr(r, ref.expr, ref.env, bare)
}

func (c *Codec) fetchExpr(r *tlwire.Reader, e tlo.Expr, env *env, bare bool) (interface{}, error) {
	switch e := e.(type) {
	case *tlo.TypeVar:
		ref, ok := env.types[e.VarNum]
		if !ok {
			return nil, errors.Errorf("type variable %d is unbound", e.VarNum)
		}
		return c.fetchRef(r, ref, bare || e.Flags.Has(tlo.FlagBare))
	case *tlo.TypeApp:
		t := c.schema.Type(e.TypeID)
		params, err := c.params(t, e, env)
		if err != nil {
			return nil, err
		}
		return c.fetchType(r, t, params, bare || e.Bare())
	case *tlo.Array:
		return c.fetchArray(r, e, env)
	}
	return nil, errors.Errorf("cannot fetch a value of %T", e)
}

func (c *Codec) fetchType(r *tlwire.Reader, t *tlo.Type, params []param, bare bool) (interface{}, error) {
	if c.classifier.IsBuiltin(t.Name) {
		return c.fetchBuiltin(r, t, params, bare)
	}
	if !c.classifier.IsTrivialType(t.ID) {
		return nil, &UnsupportedError{Name: t.Name}
	}
	if len(t.Constructors) == 0 {
		return nil, errors.Errorf("%s has no constructors", t.Name)
	}
	if len(t.Constructors) > 1 {
		bare = false
	}
	ctor := t.Constructors[0]
	if !bare {
		pos := r.Pos()
		magic, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		ctor = nil
		for _, x := range t.Constructors {
			if uint32(x.ID) == magic {
				ctor = x
				break
			}
		}
		if ctor == nil {
			if ctor = t.DefaultConstructor(); ctor == nil {
				return nil, &UnknownMagicError{Type: t.Name, Magic: magic}
			}
			r.SetPos(pos)
		}
	}

	switch t.Cons() {
	case tlo.ConsBool:
		return ctor == t.Constructors[1], nil
	case tlo.ConsEnum:
		return ctor.Name, nil
	}
	v, err := c.fetchArgs(r, ctor.Args, constructorEnv(ctor, params), c.schema.IsFlat(ctor))
	if err != nil {
		return nil, errors.Wrap(err, ctor.Name)
	}
	if len(t.Constructors) > 1 {
		v.(map[string]interface{})["_"] = ctor.Name
	}
	return v, nil
}

// fetchArgs reads the wire fields of args into a record, or returns the
// single field of a flat argument list.
func (c *Codec) fetchArgs(r *tlwire.Reader, args []*tlo.Arg, env *env, flat bool) (interface{}, error) {
	if flat {
		for _, a := range args {
			if !a.IsImplicit() {
				return c.fetchExpr(r, a.Type, env, false)
			}
		}
	}
	m := make(map[string]interface{})
	for _, a := range args {
		if a.IsImplicit() {
			continue
		}
		if a.IsOptional() {
			if a.VarNum >= 0 {
				env.nats[a.VarNum] = 0
			}
			if !env.bit(a.ExistVarNum, a.ExistVarBit) {
				continue
			}
		}
		x, err := c.fetchExpr(r, a.Type, env, false)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", a.Name)
		}
		if a.VarNum >= 0 {
			n, ok := toInt64(x)
			if !ok {
				return nil, &ValueError{Type: tlo.NameNat, Value: x}
			}
			env.nats[a.VarNum] = n
		}
		m[a.Name] = x
	}
	return m, nil
}

func (c *Codec) fetchArray(r *tlwire.Reader, arr *tlo.Array, env *env) ([]interface{}, error) {
	n, err := c.evalNat(arr.Multiplicity, env)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errors.Errorf("array of %d items", n)
	}
	alias := isAliasCell(arr.Cell)
	items := make([]interface{}, 0, min(n, int64(r.Remaining())))
	for i := int64(0); i < n; i++ {
		item, err := c.fetchArgs(r, arr.Cell.Args, env.clone(), alias)
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
		items = append(items, item)
	}
	return items, nil
}
