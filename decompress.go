// Copyright 2024 The gzipdecomp Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package gzipdecomp decompresses gzip-framed DEFLATE byte streams. It
// consumes an arbitrary sequence of concatenated gzip members and produces
// the concatenation of their decompressed payloads, validating every
// member's header and trailer checksums along the way.
//
// The package never logs and never opens files: input is any io.Reader,
// output is any io.Writer. Command-line concerns live in cmd/gzipdecomp.
package gzipdecomp

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/go-compress/gzipdecomp/internal/flate"
)

// Decompress reads an arbitrary sequence of concatenated gzip members from
// r and writes their decompressed payload to w. It returns the first
// malformed or truncated input as a *Error.
//
// Output already written to w before an error is encountered is not rolled
// back; callers that need all-or-nothing semantics should buffer until
// Decompress returns successfully.
func Decompress(r io.Reader, w io.Writer, opts ...Option) error {
	cfg := newConfig(opts)
	br := bufio.NewReader(r)
	member := 0

	for {
		if _, err := br.Peek(1); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return classifyErr(0, err)
		}
		member++

		header, err := readMemberHeader(br)
		if err != nil {
			return err
		}
		if header.CompressionMethod != CompressionDeflate {
			return newError(ErrUnsupportedCompressionMethod, 0,
				fmt.Sprintf("member uses compression method %s, only deflate is supported", header.CompressionMethod), nil)
		}

		fr := flate.NewReader(br)
		for {
			block, err := fr.NextBlock()
			if err != nil {
				return classifyErr(int64(fr.TrackingWriter().ByteCount()), err)
			}
			if _, err := w.Write(block); err != nil {
				return err
			}
			cfg.report(member, fr.TrackingWriter().ByteCount())
			if fr.Done() {
				break
			}
		}

		tw := fr.TrackingWriter()
		footer, err := readMemberFooter(br)
		if err != nil {
			return err
		}
		if got, want := tw.ByteCount()&0xFFFFFFFF, uint64(footer.ISIZE); got != want {
			return newError(ErrTrailerSizeMismatch, 0,
				fmt.Sprintf("trailer ISIZE %d does not match decompressed byte count %d", want, got), nil)
		}
		if got, want := tw.CRC32(), footer.CRC32; got != want {
			return newError(ErrTrailerCrcMismatch, 0,
				fmt.Sprintf("trailer CRC32 %#08x does not match computed %#08x", want, got), nil)
		}
	}
}
