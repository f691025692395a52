// Copyright 2024 The gzipdecomp Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package bitio provides a least-significant-bit-first bit reader over a
// byte source, the bit-granular primitive that DEFLATE (RFC 1951) is built
// on.
package bitio

import "io"

// Sequence is a run of up to 16 meaningful bits together with its length.
// It satisfies bits < 1<<len.
//
// Concat treats the receiver as the low-order part of the result: earlier
// bits occupy lower positions, matching how DEFLATE packs most multi-bit
// numeric fields. Canonical Huffman codewords are the one exception — see
// package huffman.
type Sequence struct {
	bits uint16
	len  uint8
}

// NewSequence masks bits to len significant bits and returns the Sequence.
func NewSequence(bits uint16, len uint8) Sequence {
	if len == 0 {
		return Sequence{}
	}
	return Sequence{bits: bits & (uint16(1)<<len - 1), len: len}
}

// Bits returns the numeric value of the sequence.
func (s Sequence) Bits() uint16 { return s.bits }

// Len returns the number of meaningful bits.
func (s Sequence) Len() uint8 { return s.len }

// Concat appends other after the receiver: other's bits become the
// high-order part of the result.
func (s Sequence) Concat(other Sequence) Sequence {
	return Sequence{
		bits: s.bits | (other.bits << s.len),
		len:  s.len + other.len,
	}
}

// Source is the abstract byte-oriented input a Reader pulls bytes from.
type Source interface {
	io.Reader
	io.ByteReader
}

// Reader serves LSB-first bit reads over a Source, buffering at most one
// partially-consumed byte between calls.
type Reader struct {
	src    Source
	buffer byte
	len    uint8 // number of unread low-order bits in buffer
	offset int64 // bytes consumed from src so far
}

// NewReader wraps src for bit-granular reads.
func NewReader(src Source) *Reader {
	return &Reader{src: src}
}

// Offset returns the number of bytes pulled from the underlying Source so
// far, including the byte currently (partially) buffered.
func (r *Reader) Offset() int64 { return r.offset }

// ReadBits reads n (0..=16) bits and returns them as a Sequence whose bit 0
// is the first bit read. Multi-byte fields are assembled little-endian: each
// refill contributes its low bits first, and subsequently read bits occupy
// higher positions of the result.
func (r *Reader) ReadBits(n uint8) (Sequence, error) {
	ans := Sequence{}
	for n > 0 {
		if r.len == 0 {
			b, err := r.src.ReadByte()
			if err != nil {
				if err == io.EOF {
					err = io.ErrUnexpectedEOF
				}
				return Sequence{}, err
			}
			r.offset++
			r.buffer = b
			r.len = 8
		}
		take := n
		if r.len < take {
			take = r.len
		}
		ans = ans.Concat(NewSequence(uint16(r.buffer), take))
		r.buffer >>= take
		r.len -= take
		n -= take
	}
	return ans, nil
}

// BorrowAtBoundary discards any buffered bits and returns the underlying
// Source. Callers must only invoke this where DEFLATE mandates byte
// alignment (the start of a stored block, after the 3-bit header and
// padding).
func (r *Reader) BorrowAtBoundary() Source {
	r.buffer = 0
	r.len = 0
	return r.src
}

// IntoSource discards any buffered bits and returns the underlying Source,
// abandoning the Reader.
func (r *Reader) IntoSource() Source {
	return r.BorrowAtBoundary()
}
