// Copyright 2024 The gzipdecomp Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bitio

import (
	"bytes"
	"io"
	"testing"
)

func TestReadBits(t *testing.T) {
	data := []byte{0b01100011, 0b11011011, 0b10101111}
	r := NewReader(bytes.NewReader(data))

	cases := []struct {
		n    uint8
		bits uint16
		len  uint8
	}{
		{1, 0b1, 1},
		{2, 0b01, 2},
		{3, 0b100, 3},
		{4, 0b1101, 4},
		{5, 0b10110, 5},
		{8, 0b01011111, 8},
	}
	for i, c := range cases {
		got, err := r.ReadBits(c.n)
		if err != nil {
			t.Fatalf("ReadBits(%d) #%d: %v", c.n, i, err)
		}
		want := NewSequence(c.bits, c.len)
		if got != want {
			t.Fatalf("ReadBits(%d) #%d = %+v, want %+v", c.n, i, got, want)
		}
	}
	if _, err := r.ReadBits(2); err != io.ErrUnexpectedEOF {
		t.Fatalf("ReadBits past EOF: got %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestReadBitsZero(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	got, err := r.ReadBits(0)
	if err != nil {
		t.Fatalf("ReadBits(0): %v", err)
	}
	if got != (Sequence{}) {
		t.Fatalf("ReadBits(0) = %+v, want empty sequence", got)
	}
}

func TestBorrowAtBoundary(t *testing.T) {
	data := []byte{0b01100011, 0b11011011, 0b10101111}
	r := NewReader(bytes.NewReader(data))

	got, err := r.ReadBits(3)
	if err != nil || got != NewSequence(0b011, 3) {
		t.Fatalf("ReadBits(3) = %+v, %v", got, err)
	}
	b, err := r.BorrowAtBoundary().ReadByte()
	if err != nil || b != 0b11011011 {
		t.Fatalf("BorrowAtBoundary().ReadByte() = %08b, %v", b, err)
	}
	got, err = r.ReadBits(8)
	if err != nil || got != NewSequence(0b10101111, 8) {
		t.Fatalf("ReadBits(8) = %+v, %v", got, err)
	}
}

func TestConcat(t *testing.T) {
	a := NewSequence(0b1, 1)
	b := NewSequence(0b01, 2)
	got := a.Concat(b)
	want := NewSequence(0b011, 3)
	if got != want {
		t.Fatalf("Concat() = %+v, want %+v", got, want)
	}
}
