// Copyright 2024 The gzipdecomp Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gzipdecomp

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/go-compress/gzipdecomp/internal/bitio"
)

const (
	id1 = 0x1F
	id2 = 0x8B
)

// CompressionMethod identifies a gzip member's payload encoding. This
// package only implements Deflate; any other value is reported back to the
// caller rather than assumed.
type CompressionMethod uint8

// CompressionDeflate is the only compression method this package decodes.
const CompressionDeflate CompressionMethod = 8

func (m CompressionMethod) String() string {
	if m == CompressionDeflate {
		return "deflate"
	}
	return fmt.Sprintf("unknown(%d)", uint8(m))
}

// Flags is a gzip member header's FLG byte.
type Flags uint8

// Recognized FLG bits (RFC 1952 §2.3.1).
const (
	FlagText    Flags = 1 << 0
	FlagHCRC    Flags = 1 << 1
	FlagExtra   Flags = 1 << 2
	FlagName    Flags = 1 << 3
	FlagComment Flags = 1 << 4
)

// Has reports whether bit is set.
func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// MemberHeader is one gzip member's fixed and optional header fields.
// Name and Comment are kept as raw bytes rather than decoded strings: gzip
// specifies ISO-8859-1, not UTF-8, and rejecting members with non-UTF-8
// names would reject otherwise well-formed input. Use NameString/
// CommentString for a best-effort display form.
type MemberHeader struct {
	CompressionMethod CompressionMethod
	Flags             Flags
	ModificationTime  uint32
	ExtraFlags        uint8
	OS                uint8
	Extra             []byte
	Name              []byte
	Comment           []byte
}

// NameString returns Name decoded as Latin-1 (ISO-8859-1), gzip's specified
// charset for header text fields. The conversion is total and lossless for
// any byte value, unlike a strict UTF-8 decode.
func (h MemberHeader) NameString() string { return latin1ToUTF8(h.Name) }

// CommentString returns Comment decoded as Latin-1, see NameString.
func (h MemberHeader) CommentString() string { return latin1ToUTF8(h.Comment) }

func latin1ToUTF8(b []byte) string {
	if b == nil {
		return ""
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

// crc16 recomputes the header CRC-32 over the bytes the header would
// produce, returning the low 16 bits FHCRC carries (RFC 1952 §2.3.1.1).
func (h MemberHeader) crc16() uint16 {
	digest := crc32.NewIEEE()
	digest.Write([]byte{id1, id2, byte(h.CompressionMethod), byte(h.Flags)})
	var mtime [4]byte
	binary.LittleEndian.PutUint32(mtime[:], h.ModificationTime)
	digest.Write(mtime[:])
	digest.Write([]byte{h.ExtraFlags, h.OS})
	if h.Flags.Has(FlagExtra) {
		var l [2]byte
		binary.LittleEndian.PutUint16(l[:], uint16(len(h.Extra)))
		digest.Write(l[:])
		digest.Write(h.Extra)
	}
	if h.Flags.Has(FlagName) {
		digest.Write(h.Name)
		digest.Write([]byte{0})
	}
	if h.Flags.Has(FlagComment) {
		digest.Write(h.Comment)
		digest.Write([]byte{0})
	}
	return uint16(digest.Sum32() & 0xFFFF)
}

// Footer is a gzip member's trailing CRC-32 and ISIZE fields.
type Footer struct {
	CRC32 uint32
	ISIZE uint32
}

// readMemberHeader parses the fixed and optional portions of one member's
// header from src, leaving src positioned at the start of the DEFLATE
// payload.
func readMemberHeader(src bitio.Source) (MemberHeader, error) {
	prefix := make([]byte, 10)
	if _, err := io.ReadFull(src, prefix); err != nil {
		return MemberHeader{}, unexpectEOF(err)
	}
	if prefix[0] != id1 || prefix[1] != id2 {
		return MemberHeader{}, newError(ErrBadMagic, 0, "member does not start with the gzip magic bytes 1F 8B", nil)
	}

	h := MemberHeader{
		CompressionMethod: CompressionMethod(prefix[2]),
		Flags:             Flags(prefix[3]),
		ModificationTime:  binary.LittleEndian.Uint32(prefix[4:8]),
		ExtraFlags:        prefix[8],
		OS:                prefix[9],
	}

	if h.Flags.Has(FlagExtra) {
		var l [2]byte
		if _, err := io.ReadFull(src, l[:]); err != nil {
			return MemberHeader{}, unexpectEOF(err)
		}
		xlen := binary.LittleEndian.Uint16(l[:])
		h.Extra = make([]byte, xlen)
		if _, err := io.ReadFull(src, h.Extra); err != nil {
			return MemberHeader{}, unexpectEOF(err)
		}
	}
	if h.Flags.Has(FlagName) {
		name, err := readCString(src)
		if err != nil {
			return MemberHeader{}, err
		}
		h.Name = name
	}
	if h.Flags.Has(FlagComment) {
		comment, err := readCString(src)
		if err != nil {
			return MemberHeader{}, err
		}
		h.Comment = comment
	}
	if h.Flags.Has(FlagHCRC) {
		var c [2]byte
		if _, err := io.ReadFull(src, c[:]); err != nil {
			return MemberHeader{}, unexpectEOF(err)
		}
		if got, want := binary.LittleEndian.Uint16(c[:]), h.crc16(); got != want {
			return MemberHeader{}, newError(ErrHeaderCrcMismatch, 0,
				fmt.Sprintf("header CRC16 %#04x does not match computed %#04x", got, want), nil)
		}
	}
	return h, nil
}

func readCString(src bitio.Source) ([]byte, error) {
	var out []byte
	for {
		b, err := src.ReadByte()
		if err != nil {
			return nil, unexpectEOF(err)
		}
		if b == 0 {
			return out, nil
		}
		out = append(out, b)
	}
}

// readMemberFooter parses a member's trailing CRC-32 and ISIZE.
func readMemberFooter(src bitio.Source) (Footer, error) {
	var b [8]byte
	if _, err := io.ReadFull(src, b[:]); err != nil {
		return Footer{}, unexpectEOF(err)
	}
	return Footer{
		CRC32: binary.LittleEndian.Uint32(b[0:4]),
		ISIZE: binary.LittleEndian.Uint32(b[4:8]),
	}, nil
}

func unexpectEOF(err error) error {
	if err == io.EOF {
		return newError(ErrTruncatedInput, 0, "input ended before the member header/trailer completed", io.ErrUnexpectedEOF)
	}
	return newError(ErrTruncatedInput, 0, "input ended before the member header/trailer completed", err)
}
