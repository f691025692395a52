// Copyright 2024 The gzipdecomp Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package flate

import (
	"fmt"

	"github.com/go-compress/gzipdecomp/internal/huffman"
)

// fixedLitLenLengths is the code-length vector RFC 1951 §3.2.6 assigns to
// the literal/length alphabet when BTYPE selects the fixed Huffman codes.
func fixedLitLenLengths() []uint8 {
	lengths := make([]uint8, 0, 288)
	for i := 0; i < 144; i++ {
		lengths = append(lengths, 8)
	}
	for i := 0; i < 112; i++ {
		lengths = append(lengths, 9)
	}
	for i := 0; i < 24; i++ {
		lengths = append(lengths, 7)
	}
	for i := 0; i < 8; i++ {
		lengths = append(lengths, 8)
	}
	return lengths
}

// fixedDistanceLengths assigns every one of the 32 distance-alphabet slots
// a 5-bit code. Only 30 distance codes are ever legitimately produced by an
// encoder; the remaining two canonical codewords simply go unused.
func fixedDistanceLengths() []uint8 {
	lengths := make([]uint8, 32)
	for i := range lengths {
		lengths[i] = 5
	}
	return lengths
}

// lengthFromBase turns a lit/len length code's base symbol plus its extra
// bits into the actual LZ77 match length (RFC 1951 §3.2.5, Table L).
func lengthFromBase(base, extra uint16) (uint16, error) {
	var b uint16
	switch {
	case base >= 257 && base <= 264:
		b = base - 254
	case base >= 265 && base <= 268:
		b = 11 + (base-265)*2
	case base >= 269 && base <= 272:
		b = 19 + (base-269)*4
	case base >= 273 && base <= 276:
		b = 35 + (base-273)*8
	case base >= 277 && base <= 280:
		b = 67 + (base-277)*16
	case base >= 281 && base <= 284:
		b = 131 + (base-281)*32
	case base == 285:
		b = 258
	default:
		return 0, fmt.Errorf("%w: length base %d", huffman.ErrOutOfRangeSymbol, base)
	}
	return b + extra, nil
}

// distanceFromBase turns a distance code's base symbol plus its extra bits
// into the actual back-reference distance (RFC 1951 §3.2.5, Table D).
func distanceFromBase(base, extra uint16) (uint16, error) {
	var b uint16
	switch {
	case base <= 3:
		b = base + 1
	case base <= 5:
		b = 5 + (base-4)*2
	case base <= 7:
		b = 9 + (base-6)*4
	case base <= 9:
		b = 17 + (base-8)*8
	case base <= 11:
		b = 33 + (base-10)*16
	case base <= 13:
		b = 65 + (base-12)*32
	case base <= 15:
		b = 129 + (base-14)*64
	case base <= 17:
		b = 257 + (base-16)*128
	case base <= 19:
		b = 513 + (base-18)*256
	case base <= 21:
		b = 1025 + (base-20)*512
	case base <= 23:
		b = 2049 + (base-22)*1024
	case base <= 25:
		b = 4097 + (base-24)*2048
	case base <= 27:
		b = 8193 + (base-26)*4096
	case base <= 29:
		b = 16385 + (base-28)*8192
	default:
		return 0, fmt.Errorf("%w: distance base %d", huffman.ErrOutOfRangeSymbol, base)
	}
	return b + extra, nil
}

// codeLengthOrder is the fixed permutation RFC 1951 §3.2.7 uses to pack the
// 19-symbol code-length alphabet's lengths compactly in a dynamic block's
// header.
var codeLengthOrder = [19]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}
