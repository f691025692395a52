// Copyright 2024 The gzipdecomp Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package huffman builds canonical Huffman decode tables from a vector of
// code lengths (RFC 1951 §3.2.2) and decodes symbols bit-by-bit from a
// bitio.Reader.
package huffman

import (
	"errors"
	"fmt"

	"github.com/go-compress/gzipdecomp/internal/bitio"
)

const maxCodeLen = 15

// ErrBadCodeLengths classifies every way a code-length vector can fail to
// describe a valid canonical prefix code: empty, a length above 15, or
// over-subscribed. Package flate reports a copy-previous token with nothing
// to repeat with its own ErrCopyPrevNoPredecessor.
var ErrBadCodeLengths = errors.New("huffman: bad code lengths")

// ErrUndecodableSymbol is returned by ReadSymbol once 15 bits have been
// consumed without matching any codeword in the table.
var ErrUndecodableSymbol = errors.New("huffman: unable to read symbol")

// Coding is a canonical-Huffman decode table whose leaves carry a value of
// type T. T is produced from a raw alphabet symbol by the FromSymbol
// function supplied to FromLengths.
type Coding[T any] struct {
	table map[bitio.Sequence]T
}

// FromLengths builds a canonical prefix-code table from lengths, one entry
// per alphabet symbol (0 meaning "absent from the code"), following
// RFC 1951 §3.2.2:
//
//  1. bl_count[l] = number of symbols with length l.
//  2. next_code[l] = (next_code[l-1] + bl_count[l-1]) << 1, next_code[1] = 0.
//  3. Symbols are assigned next_code[len(symbol)] in increasing index order,
//     then next_code[len(symbol)] is incremented.
//
// fromSymbol converts a raw symbol index into the alphabet's token type; it
// is called once per non-zero-length symbol, in index order. A symbol it
// rejects with ErrOutOfRangeSymbol (such as fixed lit/len symbols 286-287 or
// distance symbols 30-31) keeps its codeword but is left out of the table,
// so ReadSymbol never returns it.
func FromLengths[T any](lengths []uint8, fromSymbol func(uint16) (T, error)) (*Coding[T], error) {
	var maxLen uint8
	for _, l := range lengths {
		if l > maxLen {
			maxLen = l
		}
	}
	if maxLen == 0 {
		return nil, fmt.Errorf("%w: empty code (no symbol has a non-zero length)", ErrBadCodeLengths)
	}
	if maxLen > maxCodeLen {
		return nil, fmt.Errorf("%w: code length %d exceeds maximum of %d", ErrBadCodeLengths, maxLen, maxCodeLen)
	}

	blCount := make([]int, maxLen+1)
	for _, l := range lengths {
		blCount[l]++
	}
	blCount[0] = 0

	nextCode := make([]uint16, maxLen+1)
	code := uint16(0)
	for l := uint8(1); l <= maxLen; l++ {
		code = (code + uint16(blCount[l-1])) << 1
		nextCode[l] = code
	}

	table := make(map[bitio.Sequence]T, len(lengths))
	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		if nextCode[l] >= uint16(1)<<l {
			return nil, fmt.Errorf("%w: over-subscribed code of length %d", ErrBadCodeLengths, l)
		}
		token, err := fromSymbol(uint16(sym))
		if errors.Is(err, ErrOutOfRangeSymbol) {
			nextCode[l]++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("huffman: %w", err)
		}
		table[bitio.NewSequence(nextCode[l], l)] = token
		nextCode[l]++
	}
	return &Coding[T]{table: table}, nil
}

// DecodeSymbol looks up seq directly, without consuming any bits. It exists
// chiefly for tests against known codewords.
func (c *Coding[T]) DecodeSymbol(seq bitio.Sequence) (T, bool) {
	v, ok := c.table[seq]
	return v, ok
}

// ReadSymbol decodes one symbol from br. Canonical codewords are packed
// MSB-first, the opposite convention from numeric fields: each bit read is
// prefixed to the low end of the accumulator, pushing previously read bits
// to higher positions, until the accumulated (bits, len) pair matches a
// table entry.
func (c *Coding[T]) ReadSymbol(br *bitio.Reader) (T, error) {
	var zero T
	acc := bitio.Sequence{}
	for i := 0; i < maxCodeLen; i++ {
		bit, err := br.ReadBits(1)
		if err != nil {
			return zero, err
		}
		acc = bit.Concat(acc)
		if v, ok := c.table[acc]; ok {
			return v, nil
		}
	}
	return zero, ErrUndecodableSymbol
}
