// Copyright 2024 The gzipdecomp Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gzipdecomp

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-compress/gzipdecomp/internal/flate"
	"github.com/go-compress/gzipdecomp/internal/huffman"
	"github.com/go-compress/gzipdecomp/internal/trackingio"
)

// ErrorKind classifies the first malformed or truncated input a Decompress
// call ran into.
type ErrorKind int

const (
	// ErrTruncatedInput means the source ended mid-field, mid-bit-run, or
	// mid-block.
	ErrTruncatedInput ErrorKind = iota
	// ErrBadMagic means a member's 2-byte ID prefix didn't read 0x1F 0x8B.
	ErrBadMagic
	// ErrUnsupportedCompressionMethod means CM was not 8 (Deflate).
	ErrUnsupportedCompressionMethod
	// ErrReservedBlockType means a block's BTYPE field was 3.
	ErrReservedBlockType
	// ErrLenNLenMismatch means a stored block's LEN and NLEN disagreed.
	ErrLenNLenMismatch
	// ErrBadCodeLengths means a Huffman builder was given an
	// over-subscribed code, an empty alphabet, or a copy-previous token
	// with no predecessor to repeat. Under-subscribed codes are accepted.
	ErrBadCodeLengths
	// ErrUndecodableSymbol means 15 bits were consumed without a codeword
	// match.
	ErrUndecodableSymbol
	// ErrOutOfRangeSymbol means a literal/length or distance symbol fell
	// outside its alphabet.
	ErrOutOfRangeSymbol
	// ErrWindowUnderflow means a back-reference distance exceeded the
	// bytes emitted so far, or the 32768-byte window.
	ErrWindowUnderflow
	// ErrHeaderCrcMismatch means a member's optional header CRC-16 didn't
	// match the header bytes actually read.
	ErrHeaderCrcMismatch
	// ErrTrailerCrcMismatch means a member's trailer CRC-32 didn't match
	// the decompressed payload.
	ErrTrailerCrcMismatch
	// ErrTrailerSizeMismatch means a member's trailer ISIZE didn't match
	// the decompressed byte count modulo 2^32.
	ErrTrailerSizeMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case ErrTruncatedInput:
		return "truncated input"
	case ErrBadMagic:
		return "bad magic"
	case ErrUnsupportedCompressionMethod:
		return "unsupported compression method"
	case ErrReservedBlockType:
		return "reserved block type"
	case ErrLenNLenMismatch:
		return "LEN/NLEN mismatch"
	case ErrBadCodeLengths:
		return "bad code lengths"
	case ErrUndecodableSymbol:
		return "undecodable symbol"
	case ErrOutOfRangeSymbol:
		return "out-of-range symbol"
	case ErrWindowUnderflow:
		return "window underflow"
	case ErrHeaderCrcMismatch:
		return "header CRC mismatch"
	case ErrTrailerCrcMismatch:
		return "trailer CRC mismatch"
	case ErrTrailerSizeMismatch:
		return "trailer size mismatch"
	default:
		return "unknown error"
	}
}

// Error is the typed error every input failure from this package's public
// API carries: a taxonomy Kind, an Offset, and a human-readable message.
// Offset is the number of bytes already decompressed from the current
// member when the failure is inside its DEFLATE payload, and zero for
// header and trailer failures. Errors from the output writer are returned
// as they are, not wrapped in an Error.
type Error struct {
	Kind   ErrorKind
	Offset int64
	Msg    string
	err    error
}

func (e *Error) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("gzipdecomp: %s at offset %d: %s", e.Kind, e.Offset, e.Msg)
	}
	return fmt.Sprintf("gzipdecomp: %s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the underlying error, if any, so callers can still match
// on io.ErrUnexpectedEOF or a specific internal sentinel with errors.Is.
func (e *Error) Unwrap() error { return e.err }

func newError(kind ErrorKind, offset int64, msg string, err error) *Error {
	return &Error{Kind: kind, Offset: offset, Msg: msg, err: err}
}

// classifyErr maps an error surfaced by the internal bitio/huffman/flate
// packages onto this package's taxonomy, wrapping it in an *Error that
// carries the given offset.
func classifyErr(offset int64, err error) error {
	if err == nil {
		return nil
	}
	var ge *Error
	if errors.As(err, &ge) {
		return err
	}
	switch {
	case errors.Is(err, io.ErrUnexpectedEOF):
		return newError(ErrTruncatedInput, offset, "input ended before the expected field or block completed", err)
	case errors.Is(err, flate.ErrReservedBlockType):
		return newError(ErrReservedBlockType, offset, err.Error(), err)
	case errors.Is(err, flate.ErrLenNLenMismatch):
		return newError(ErrLenNLenMismatch, offset, err.Error(), err)
	case errors.Is(err, flate.ErrCopyPrevNoPredecessor), errors.Is(err, huffman.ErrBadCodeLengths):
		return newError(ErrBadCodeLengths, offset, err.Error(), err)
	case errors.Is(err, huffman.ErrUndecodableSymbol):
		return newError(ErrUndecodableSymbol, offset, err.Error(), err)
	case errors.Is(err, trackingio.ErrWindowUnderflow):
		return newError(ErrWindowUnderflow, offset, err.Error(), err)
	case errors.Is(err, huffman.ErrOutOfRangeSymbol):
		return newError(ErrOutOfRangeSymbol, offset, err.Error(), err)
	default:
		return newError(ErrTruncatedInput, offset, err.Error(), err)
	}
}
