// Copyright 2024 The gzipdecomp Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package flate implements the DEFLATE (RFC 1951) block decoder: stored,
// fixed-Huffman, and dynamic-Huffman blocks, sharing one literal/length and
// distance symbol-decoding loop and one dynamic-tree header decoder.
package flate

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-compress/gzipdecomp/internal/bitio"
	"github.com/go-compress/gzipdecomp/internal/huffman"
	"github.com/go-compress/gzipdecomp/internal/trackingio"
)

// ErrReservedBlockType is returned when a block's BTYPE field is 3, the
// value RFC 1951 reserves and never assigns a meaning to.
var ErrReservedBlockType = errors.New("flate: reserved block type")

// ErrLenNLenMismatch is returned when a stored block's LEN and NLEN fields
// are not each other's one's complement.
var ErrLenNLenMismatch = errors.New("flate: stored block LEN/NLEN mismatch")

// ErrCopyPrevNoPredecessor is returned when a dynamic block's code-length
// description opens with (or otherwise misuses) a copy-previous token
// before any length has been decoded to repeat.
var ErrCopyPrevNoPredecessor = errors.New("flate: copy-previous code length with no predecessor")

// Reader decodes a sequence of DEFLATE blocks from a bit-granular source,
// delivering the decompressed bytes of each block and tracking the running
// CRC-32 and byte count across the whole member.
type Reader struct {
	br   *bitio.Reader
	tw   *trackingio.Writer
	buf  *bytes.Buffer
	done bool
}

// NewReader wraps src. The returned Reader owns src for its lifetime; call
// IntoInner to reclaim it once the final block has been read.
func NewReader(src bitio.Source) *Reader {
	buf := &bytes.Buffer{}
	return &Reader{
		br:  bitio.NewReader(src),
		tw:  trackingio.New(buf),
		buf: buf,
	}
}

// Done reports whether the last block read had BFINAL set.
func (r *Reader) Done() bool { return r.done }

// NextBlock decodes one DEFLATE block and returns the bytes it produced.
// Call it repeatedly until Done reports true.
func (r *Reader) NextBlock() ([]byte, error) {
	if r.done {
		return nil, fmt.Errorf("flate: NextBlock called after the final block")
	}
	start := r.buf.Len()
	final, err := r.readBlock()
	if err != nil {
		return nil, err
	}
	r.done = final
	out := make([]byte, r.buf.Len()-start)
	copy(out, r.buf.Bytes()[start:])
	return out, nil
}

// IntoInner abandons the Reader, returning the residual byte source (for
// trailer parsing) and the tracking writer holding the member's running
// CRC-32 and byte count.
func (r *Reader) IntoInner() (bitio.Source, *trackingio.Writer) {
	return r.br.IntoSource(), r.tw
}

// TrackingWriter returns the writer accumulating this member's CRC-32 and
// byte count, without abandoning the Reader.
func (r *Reader) TrackingWriter() *trackingio.Writer { return r.tw }

func (r *Reader) readBlock() (final bool, err error) {
	bfinal, err := r.br.ReadBits(1)
	if err != nil {
		return false, err
	}
	final = bfinal.Bits() == 1

	btype, err := r.br.ReadBits(2)
	if err != nil {
		return false, err
	}

	switch btype.Bits() {
	case 0:
		err = r.readStoredBlock()
	case 1:
		err = r.readFixedBlock()
	case 2:
		err = r.readDynamicBlock()
	case 3:
		err = ErrReservedBlockType
	default:
		err = fmt.Errorf("flate: invalid block type %d", btype.Bits())
	}
	return final, err
}

func (r *Reader) readStoredBlock() error {
	src := r.br.BorrowAtBoundary()
	length, err := readUint16LE(src)
	if err != nil {
		return err
	}
	notLength, err := readUint16LE(src)
	if err != nil {
		return err
	}
	if length != ^notLength {
		return ErrLenNLenMismatch
	}
	if length == 0 {
		return nil
	}
	if _, err := io.CopyN(r.tw, src, int64(length)); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

func (r *Reader) readFixedBlock() error {
	litlen, err := huffman.FromLengths(fixedLitLenLengths(), huffman.LitLenFromSymbol)
	if err != nil {
		return err
	}
	distance, err := huffman.FromLengths(fixedDistanceLengths(), huffman.DistanceFromSymbol)
	if err != nil {
		return err
	}
	return r.decodeSymbols(litlen, distance)
}

func (r *Reader) readDynamicBlock() error {
	litlen, distance, err := r.readDynamicTrees()
	if err != nil {
		return err
	}
	return r.decodeSymbols(litlen, distance)
}

// readDynamicTrees decodes the lit/len and distance code-length vectors
// from a single shared loop over one flat vector of size
// (HLIT+257)+(HDIST+1), then splits it. Decoding the two vectors with
// independent loops (each building its own code-length table afresh) would
// also work for the common case, but breaks a CopyPrev token that spans the
// boundary between the two vectors, since it would have no predecessor to
// repeat at the start of the second loop.
func (r *Reader) readDynamicTrees() (*huffman.Coding[huffman.LitLenToken], *huffman.Coding[huffman.DistanceToken], error) {
	hlit, err := r.br.ReadBits(5)
	if err != nil {
		return nil, nil, err
	}
	litlenSize := int(hlit.Bits()) + 257

	hdist, err := r.br.ReadBits(5)
	if err != nil {
		return nil, nil, err
	}
	distanceSize := int(hdist.Bits()) + 1

	hclen, err := r.br.ReadBits(4)
	if err != nil {
		return nil, nil, err
	}
	codeLenSize := int(hclen.Bits()) + 4

	codeLengths := make([]uint8, 19)
	for i := 0; i < codeLenSize; i++ {
		v, err := r.br.ReadBits(3)
		if err != nil {
			return nil, nil, err
		}
		codeLengths[codeLengthOrder[i]] = uint8(v.Bits())
	}

	codeDecoder, err := huffman.FromLengths(codeLengths, huffman.CodeLengthFromSymbol)
	if err != nil {
		return nil, nil, err
	}

	lengths, err := decodeLengthVector(r.br, codeDecoder, litlenSize+distanceSize)
	if err != nil {
		return nil, nil, err
	}

	litlen, err := huffman.FromLengths(lengths[:litlenSize], huffman.LitLenFromSymbol)
	if err != nil {
		return nil, nil, err
	}
	distance, err := huffman.FromLengths(lengths[litlenSize:], huffman.DistanceFromSymbol)
	if err != nil {
		return nil, nil, err
	}
	return litlen, distance, nil
}

// decodeLengthVector decodes exactly total code lengths from br using
// codeDecoder, expanding CopyPrev/RepeatZero tokens as it goes. It is the
// single loop that serves both the lit/len and distance portions of a
// dynamic block's header: the two are decoded as one flat vector and split
// by the caller, so a CopyPrev token lands correctly even when it straddles
// the boundary between them.
func decodeLengthVector(br *bitio.Reader, codeDecoder *huffman.Coding[huffman.CodeLengthToken], total int) ([]uint8, error) {
	lengths := make([]uint8, 0, total)
	for len(lengths) < total {
		tok, err := codeDecoder.ReadSymbol(br)
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case huffman.CodeLengthValue:
			lengths = append(lengths, tok.Value)
		case huffman.CodeLengthCopyPrev:
			if len(lengths) == 0 {
				return nil, ErrCopyPrevNoPredecessor
			}
			e, err := br.ReadBits(2)
			if err != nil {
				return nil, err
			}
			prev := lengths[len(lengths)-1]
			for i := uint16(0); i < e.Bits()+3; i++ {
				lengths = append(lengths, prev)
			}
		case huffman.CodeLengthRepeatZeroShort:
			e, err := br.ReadBits(3)
			if err != nil {
				return nil, err
			}
			for i := uint16(0); i < e.Bits()+3; i++ {
				lengths = append(lengths, 0)
			}
		case huffman.CodeLengthRepeatZeroLong:
			e, err := br.ReadBits(7)
			if err != nil {
				return nil, err
			}
			for i := uint16(0); i < e.Bits()+11; i++ {
				lengths = append(lengths, 0)
			}
		}
	}
	if len(lengths) != total {
		return nil, fmt.Errorf("flate: dynamic-tree header overran its length vector")
	}
	return lengths, nil
}

// decodeSymbols runs the literal/length decode loop shared by fixed- and
// dynamic-Huffman blocks: literals are emitted directly, length/distance
// pairs become back-reference copies, and EndOfBlock terminates the loop.
func (r *Reader) decodeSymbols(litlen *huffman.Coding[huffman.LitLenToken], distance *huffman.Coding[huffman.DistanceToken]) error {
	for {
		tok, err := litlen.ReadSymbol(r.br)
		if err != nil {
			return err
		}
		switch tok.Kind {
		case huffman.LitLenEndOfBlock:
			return nil
		case huffman.LitLenLiteral:
			if _, err := r.tw.Write([]byte{tok.Literal}); err != nil {
				return err
			}
		case huffman.LitLenLength:
			lenExtra, err := r.br.ReadBits(tok.ExtraBits)
			if err != nil {
				return err
			}
			length, err := lengthFromBase(tok.Base, lenExtra.Bits())
			if err != nil {
				return err
			}
			distTok, err := distance.ReadSymbol(r.br)
			if err != nil {
				return err
			}
			distExtra, err := r.br.ReadBits(distTok.ExtraBits)
			if err != nil {
				return err
			}
			dist, err := distanceFromBase(distTok.Base, distExtra.Bits())
			if err != nil {
				return err
			}
			if err := r.tw.WritePrevious(int(dist), int(length)); err != nil {
				return err
			}
		}
	}
}

func readUint16LE(src bitio.Source) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(src, b[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}
