// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package tlwire reads and writes the primitive values of the TL binary
// encoding: little-endian 32/64-bit integers, doubles and length-prefixed
// strings padded to a 4-byte boundary.
package tlwire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Strings shorter than this are prefixed by a single length byte. Longer
// strings start with this marker byte followed by a 24-bit length.
const longStringMarker = 254

// MaxStringLen is the largest length the extended string header can carry.
const MaxStringLen = 1<<24 - 1

// BoundsError is returned when a read would run past the end of the buffer.
type BoundsError struct {
	Offset int
	Need   int
	Have   int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("read of %d bytes at offset %d exceeds buffer (%d bytes left)", e.Need, e.Offset, e.Have)
}

// StringHeaderError is returned for a string whose first byte is not a
// length prefix.
type StringHeaderError struct {
	Offset int
	Header byte
}

func (e *StringHeaderError) Error() string {
	return fmt.Sprintf("invalid string header 0x%02x at offset %d", e.Header, e.Offset)
}

// Reader is a cursor over an immutable byte buffer.
type Reader struct {
	buf []byte
	pos int
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current read offset.
func (r *Reader) Pos() int {
	return r.pos
}

// SetPos moves the cursor to an offset previously returned by Pos.
func (r *Reader) SetPos(pos int) {
	if pos < 0 || pos > len(r.buf) {
		panic(fmt.Sprintf("tlwire: position %d outside buffer of %d bytes", pos, len(r.buf)))
	}
	r.pos = pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, &BoundsError{Offset: r.pos, Need: n, Have: r.Remaining()}
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadInt64() (int64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

func (r *Reader) ReadDouble() (float64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// ReadString decodes a length-prefixed string. The header (1 or 4 bytes) and
// the payload together are padded to a multiple of 4.
func (r *Reader) ReadString() (string, error) {
	start := r.pos
	first, err := r.take(1)
	if err != nil {
		return "", err
	}
	n := int(first[0])
	header := 1
	if n > longStringMarker {
		r.pos = start
		return "", &StringHeaderError{Offset: start, Header: first[0]}
	}
	if n == longStringMarker {
		ext, err := r.take(3)
		if err != nil {
			r.pos = start
			return "", err
		}
		n = int(ext[0]) | int(ext[1])<<8 | int(ext[2])<<16
		header = 4
	}
	payload, err := r.take(n)
	if err != nil {
		r.pos = start
		return "", err
	}
	if _, err := r.take(padding(header + n)); err != nil {
		r.pos = start
		return "", err
	}
	return string(payload), nil
}

func padding(n int) int {
	return (4 - n%4) % 4
}
