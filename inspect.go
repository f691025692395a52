// Copyright 2024 The gzipdecomp Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gzipdecomp

import (
	"bufio"
	"errors"
	"io"

	"github.com/go-compress/gzipdecomp/internal/flate"
)

// Inspect parses every member's header and trailer without delivering
// decompressed output anywhere a caller can observe, for tools that want to
// list a gzip stream's members (name, comment, mtime, flags) cheaply. The
// DEFLATE payload is still fully decoded internally — gzip provides no way
// to locate a member's trailer without doing so — but the bytes it produces
// are discarded rather than copied out.
//
// Inspect returns every member header successfully parsed so far even when
// it also returns an error, so a caller can report partial results from a
// truncated or corrupt stream.
func Inspect(r io.Reader) ([]MemberHeader, error) {
	br := bufio.NewReader(r)
	var headers []MemberHeader

	for {
		if _, err := br.Peek(1); err != nil {
			if errors.Is(err, io.EOF) {
				return headers, nil
			}
			return headers, classifyErr(0, err)
		}

		header, err := readMemberHeader(br)
		if err != nil {
			return headers, err
		}
		headers = append(headers, header)
		if header.CompressionMethod != CompressionDeflate {
			return headers, newError(ErrUnsupportedCompressionMethod, 0,
				"member uses an unsupported compression method", nil)
		}

		fr := flate.NewReader(br)
		for {
			if _, err := fr.NextBlock(); err != nil {
				return headers, classifyErr(int64(fr.TrackingWriter().ByteCount()), err)
			}
			if fr.Done() {
				break
			}
		}

		tw := fr.TrackingWriter()
		src, _ := fr.IntoInner()
		footer, err := readMemberFooter(src)
		if err != nil {
			return headers, err
		}
		if got, want := tw.ByteCount()&0xFFFFFFFF, uint64(footer.ISIZE); got != want {
			return headers, newError(ErrTrailerSizeMismatch, 0,
				"trailer ISIZE does not match decompressed byte count", nil)
		}
		if got, want := tw.CRC32(), footer.CRC32; got != want {
			return headers, newError(ErrTrailerCrcMismatch, 0,
				"trailer CRC32 does not match computed CRC32", nil)
		}
	}
}
