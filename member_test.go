// Copyright 2024 The gzipdecomp Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gzipdecomp

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"testing"
)

// buildHeader assembles a member header with the requested optional fields,
// computing a correct FHCRC when hcrc is true.
func buildHeader(t *testing.T, flags Flags, extra, name, comment []byte, hcrc bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write([]byte{id1, id2, byte(CompressionDeflate), byte(flags)})
	var mtime [4]byte
	binary.LittleEndian.PutUint32(mtime[:], 0)
	buf.Write(mtime[:])
	buf.Write([]byte{0, 0xFF}) // XFL, OS

	if flags.Has(FlagExtra) {
		var l [2]byte
		binary.LittleEndian.PutUint16(l[:], uint16(len(extra)))
		buf.Write(l[:])
		buf.Write(extra)
	}
	if flags.Has(FlagName) {
		buf.Write(name)
		buf.WriteByte(0)
	}
	if flags.Has(FlagComment) {
		buf.Write(comment)
		buf.WriteByte(0)
	}
	if flags.Has(FlagHCRC) {
		digest := crc32.NewIEEE()
		digest.Write(buf.Bytes())
		var c [2]byte
		binary.LittleEndian.PutUint16(c[:], uint16(digest.Sum32()&0xFFFF))
		if !hcrc {
			c[0]++ // corrupt it, for the mismatch test
		}
		buf.Write(c[:])
	}
	return buf.Bytes()
}

func TestReadMemberHeaderNameAndComment(t *testing.T) {
	raw := buildHeader(t, FlagName|FlagComment, nil, []byte("archive.txt"), []byte("a note"), true)
	h, err := readMemberHeader(bufio.NewReader(bytes.NewReader(raw)))
	if err != nil {
		t.Fatalf("readMemberHeader: %v", err)
	}
	if got, want := h.NameString(), "archive.txt"; got != want {
		t.Fatalf("NameString() = %q, want %q", got, want)
	}
	if got, want := h.CommentString(), "a note"; got != want {
		t.Fatalf("CommentString() = %q, want %q", got, want)
	}
}

func TestReadMemberHeaderExtraAndHCRC(t *testing.T) {
	raw := buildHeader(t, FlagExtra|FlagHCRC, []byte("xyz"), nil, nil, true)
	h, err := readMemberHeader(bufio.NewReader(bytes.NewReader(raw)))
	if err != nil {
		t.Fatalf("readMemberHeader: %v", err)
	}
	if got, want := string(h.Extra), "xyz"; got != want {
		t.Fatalf("Extra = %q, want %q", got, want)
	}
}

func TestReadMemberHeaderBadHCRC(t *testing.T) {
	raw := buildHeader(t, FlagHCRC, nil, nil, nil, false)
	_, err := readMemberHeader(bufio.NewReader(bytes.NewReader(raw)))
	var gzErr *Error
	if !errors.As(err, &gzErr) || gzErr.Kind != ErrHeaderCrcMismatch {
		t.Fatalf("readMemberHeader() error = %v, want Kind ErrHeaderCrcMismatch", err)
	}
}

func TestReadMemberHeaderLatin1NameIsLossless(t *testing.T) {
	// 0xE9 is "e acute" in Latin-1 but not a valid standalone UTF-8 byte;
	// NameString must still recover it rather than rejecting the member.
	raw := buildHeader(t, FlagName, nil, []byte{'c', 0xE9, 'p', 0xE9}, nil, true)
	h, err := readMemberHeader(bufio.NewReader(bytes.NewReader(raw)))
	if err != nil {
		t.Fatalf("readMemberHeader: %v", err)
	}
	if got, want := h.NameString(), "cépé"; got != want {
		t.Fatalf("NameString() = %q, want %q", got, want)
	}
}
