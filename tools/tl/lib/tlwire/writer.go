// Copyright 2022 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tlwire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Writer appends TL-encoded primitives to an in-memory buffer.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the encoded data. The slice aliases the writer's buffer.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *Writer) Len() int {
	return w.buf.Len()
}

func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) WriteInt64(v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	w.buf.Write(b[:])
}

func (w *Writer) WriteDouble(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	w.buf.Write(b[:])
}

func (w *Writer) WriteString(s string) error {
	n := len(s)
	if n > MaxStringLen {
		return fmt.Errorf("string of %d bytes exceeds the maximum of %d", n, MaxStringLen)
	}
	header := 1
	if n < longStringMarker {
		w.buf.WriteByte(byte(n))
	} else {
		w.buf.Write([]byte{longStringMarker, byte(n), byte(n >> 8), byte(n >> 16)})
		header = 4
	}
	w.buf.WriteString(s)
	for i := padding(header + n); i > 0; i-- {
		w.buf.WriteByte(0)
	}
	return nil
}
