// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tlcodec

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlo"
	"github.com/VKCOM/kphp-sub000/tools/tl/lib/tlwire"
)

// Magics of the constructors implemented by the runtime.
const (
	MagicInt               uint32 = 0xa8509bda
	MagicLong              uint32 = 0x22076cba
	MagicDouble            uint32 = 0x2210c154
	MagicString            uint32 = 0xb5286e24
	MagicTrue              uint32 = 0x3fedd339
	MagicBoolFalse         uint32 = 0xbc799737
	MagicBoolTrue          uint32 = 0x997275b5
	MagicVector            uint32 = 0x1cb5c415
	MagicResultFalse       uint32 = 0x27930a7b
	MagicResultTrue        uint32 = 0x3f9c8ef8
	MagicDictionary        uint32 = 0x1f4c618f
	MagicIntKeyDictionary  uint32 = 0x07bafc42
	MagicLongKeyDictionary uint32 = 0xb424d0a5
	MagicTuple             uint32 = 0x9770768a
)

var builtinMagics = map[string]uint32{
	tlo.NameInt:               MagicInt,
	tlo.NameLong:              MagicLong,
	tlo.NameDouble:            MagicDouble,
	tlo.NameString:            MagicString,
	tlo.NameTrue:              MagicTrue,
	tlo.NameVector:            MagicVector,
	tlo.NameDictionary:        MagicDictionary,
	tlo.NameIntKeyDictionary:  MagicIntKeyDictionary,
	tlo.NameLongKeyDictionary: MagicLongKeyDictionary,
	tlo.NameTuple:             MagicTuple,
}

func toInt64(v interface{}) (int64, bool) {
	switch v := v.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint32:
		return int64(v), true
	}
	return 0, false
}

func (c *Codec) storeBuiltin(w *tlwire.Writer, t *tlo.Type, params []param, v interface{}, bare bool) error {
	if !bare {
		switch t.Name {
		case tlo.NameBool:
			b, ok := v.(bool)
			if !ok {
				return &ValueError{Type: t.Name, Value: v}
			}
			if b {
				w.WriteUint32(MagicBoolTrue)
			} else {
				w.WriteUint32(MagicBoolFalse)
			}
			return nil
		case tlo.NameMaybe:
			if v == nil {
				w.WriteUint32(MagicResultFalse)
				return nil
			}
			w.WriteUint32(MagicResultTrue)
			return c.storeRef(w, params[0].typ, v, false)
		}
		if m, ok := builtinMagics[t.Name]; ok {
			w.WriteUint32(m)
		}
	}

	switch t.Name {
	case tlo.NameNat:
		n, ok := toInt64(v)
		if !ok || n < 0 || n > math.MaxUint32 {
			return &ValueError{Type: t.Name, Value: v}
		}
		w.WriteUint32(uint32(n))
	case tlo.NameInt:
		n, ok := toInt64(v)
		if !ok || n < math.MinInt32 || n > math.MaxInt32 {
			return &ValueError{Type: t.Name, Value: v}
		}
		w.WriteInt32(int32(n))
	case tlo.NameLong:
		n, ok := toInt64(v)
		if !ok {
			return &ValueError{Type: t.Name, Value: v}
		}
		w.WriteInt64(n)
	case tlo.NameDouble:
		f, ok := v.(float64)
		if !ok {
			return &ValueError{Type: t.Name, Value: v}
		}
		w.WriteDouble(f)
	case tlo.NameString:
		s, ok := v.(string)
		if !ok {
			return &ValueError{Type: t.Name, Value: v}
		}
		return w.WriteString(s)
	case tlo.NameTrue:
	case tlo.NameBool, tlo.NameMaybe:
		return c.storeBuiltin(w, t, params, v, false)
	case tlo.NameVector:
		items, ok := v.([]interface{})
		if !ok {
			return &ValueError{Type: t.Name, Value: v}
		}
		w.WriteInt32(int32(len(items)))
		return c.storeItems(w, params[0].typ, items)
	case tlo.NameTuple:
		items, ok := v.([]interface{})
		if !ok || int64(len(items)) != params[1].nat {
			return &ValueError{Type: t.Name, Value: v}
		}
		return c.storeItems(w, params[0].typ, items)
	case tlo.NameDictionary:
		m, ok := v.(map[string]interface{})
		if !ok {
			return &ValueError{Type: t.Name, Value: v}
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		w.WriteInt32(int32(len(keys)))
		for _, k := range keys {
			if err := w.WriteString(k); err != nil {
				return err
			}
			if err := c.storeRef(w, params[0].typ, m[k], false); err != nil {
				return errors.Wrapf(err, "key %q", k)
			}
		}
	case tlo.NameIntKeyDictionary, tlo.NameLongKeyDictionary:
		m, ok := v.(map[int64]interface{})
		if !ok {
			return &ValueError{Type: t.Name, Value: v}
		}
		keys := make([]int64, 0, len(m))
		for k := range m {
			if t.Name == tlo.NameIntKeyDictionary && (k < math.MinInt32 || k > math.MaxInt32) {
				return &ValueError{Type: t.Name, Value: k}
			}
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		w.WriteInt32(int32(len(keys)))
		for _, k := range keys {
			if t.Name == tlo.NameIntKeyDictionary {
				w.WriteInt32(int32(k))
			} else {
				w.WriteInt64(k)
			}
			if err := c.storeRef(w, params[0].typ, m[k], false); err != nil {
				return errors.Wrapf(err, "key %d", k)
			}
		}
	default:
		return errors.Errorf("no encoding known for runtime type %s", t.Name)
	}
	return nil
}

func (c *Codec) storeItems(w *tlwire.Writer, elem typeRef, items []interface{}) error {
	for i, item := range items {
		if err := c.storeRef(w, elem, item, false); err != nil {
			return errors.Wrapf(err, "item %d", i)
		}
	}
	return nil
}

func (c *Codec) expectMagic(r *tlwire.Reader, typeName string, want uint32) error {
	m, err := r.ReadUint32()
	if err != nil {
		return err
	}
	if m != want {
		return &UnknownMagicError{Type: typeName, Magic: m}
	}
	return nil
}

func (c *Codec) fetchBuiltin(r *tlwire.Reader, t *tlo.Type, params []param, bare bool) (interface{}, error) {
	switch t.Name {
	case tlo.NameBool:
		m, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		switch m {
		case MagicBoolTrue:
			return true, nil
		case MagicBoolFalse:
			return false, nil
		}
		return nil, &UnknownMagicError{Type: t.Name, Magic: m}
	case tlo.NameMaybe:
		m, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		switch m {
		case MagicResultFalse:
			return nil, nil
		case MagicResultTrue:
			return c.fetchRef(r, params[0].typ, false)
		}
		return nil, &UnknownMagicError{Type: t.Name, Magic: m}
	}
	if m, ok := builtinMagics[t.Name]; ok && !bare {
		if err := c.expectMagic(r, t.Name, m); err != nil {
			return nil, err
		}
	}

	switch t.Name {
	case tlo.NameNat:
		n, err := r.ReadUint32()
		return int64(n), err
	case tlo.NameInt:
		n, err := r.ReadInt32()
		return int64(n), err
	case tlo.NameLong:
		return r.ReadInt64()
	case tlo.NameDouble:
		return r.ReadDouble()
	case tlo.NameString:
		return r.ReadString()
	case tlo.NameTrue:
		return true, nil
	case tlo.NameVector:
		n, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		return c.fetchItems(r, params[0].typ, int64(n))
	case tlo.NameTuple:
		return c.fetchItems(r, params[0].typ, params[1].nat)
	case tlo.NameDictionary, tlo.NameIntKeyDictionary, tlo.NameLongKeyDictionary:
		n, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		if n < 0 || int(n) > r.Remaining() {
			return nil, errors.Errorf("%s of %d entries with %d bytes left", t.Name, n, r.Remaining())
		}
		if t.Name == tlo.NameDictionary {
			m := make(map[string]interface{}, n)
			for i := int32(0); i < n; i++ {
				k, err := r.ReadString()
				if err != nil {
					return nil, err
				}
				if m[k], err = c.fetchRef(r, params[0].typ, false); err != nil {
					return nil, errors.Wrapf(err, "key %q", k)
				}
			}
			return m, nil
		}
		m := make(map[int64]interface{}, n)
		for i := int32(0); i < n; i++ {
			var k int64
			if t.Name == tlo.NameIntKeyDictionary {
				k32, err := r.ReadInt32()
				if err != nil {
					return nil, err
				}
				k = int64(k32)
			} else if k, err = r.ReadInt64(); err != nil {
				return nil, err
			}
			if m[k], err = c.fetchRef(r, params[0].typ, false); err != nil {
				return nil, errors.Wrapf(err, "key %d", k)
			}
		}
		return m, nil
	}
	return nil, errors.Errorf("no encoding known for runtime type %s", t.Name)
}

func (c *Codec) fetchItems(r *tlwire.Reader, elem typeRef, n int64) ([]interface{}, error) {
	if n < 0 {
		return nil, errors.Errorf("%d items", n)
	}
	items := make([]interface{}, 0, min(n, int64(r.Remaining())))
	for i := int64(0); i < n; i++ {
		item, err := c.fetchRef(r, elem, false)
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
		items = append(items, item)
	}
	return items, nil
}
