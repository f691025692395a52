// Copyright 2024 The gzipdecomp Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gzipdecomp

// Progress reports how far Decompress has gotten, emitted once per
// DEFLATE block decoded. No separate report is made at member boundaries.
type Progress struct {
	// Member is the 1-based index of the member currently being read.
	Member int
	// UncompressedBytes is the running decompressed byte count for the
	// member currently being read.
	UncompressedBytes uint64
}

type config struct {
	progress func(Progress)
}

// Option configures a Decompress call, following the same functional-option
// pattern as the decorators in this lineage's decompressor constructors.
type Option func(*config)

// WithProgress registers fn to be called after every DEFLATE block is
// decoded and written out.
func WithProgress(fn func(Progress)) Option {
	return func(c *config) { c.progress = fn }
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *config) report(member int, n uint64) {
	if c.progress != nil {
		c.progress(Progress{Member: member, UncompressedBytes: n})
	}
}
