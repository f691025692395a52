// Copyright 2024 The gzipdecomp Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package testutil holds small helpers shared by this module's test files:
// reproducible random payloads and a way to produce real gzip fixtures via
// the system gzip binary, for tests that want to decode bytes this package
// did not itself encode.
package testutil

import (
	"fmt"
	"math/rand"
	"os"
	"os/exec"
)

// fixedRandSeed must stay in sync across every test file that calls
// GenPredictableRandomData, so that generated fixtures are reproducible.
const fixedRandSeed = 0x1234

// GenPredictableRandomData generates size bytes of random data from a fixed
// seed, so repeated test runs see byte-identical payloads.
func GenPredictableRandomData(size int) []byte {
	gen := rand.New(rand.NewSource(fixedRandSeed))
	out := make([]byte, size)
	for i := range out {
		out[i] = byte(gen.Intn(256))
	}
	return out
}

// FirstN returns at most the first n bytes of b.
func FirstN(n int, b []byte) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

// CreateGzipFile writes data to filename, then runs the system gzip binary
// over it to produce filename+".gz", so tests can exercise this package's
// decoder against a real-world encoder's output rather than only its own.
func CreateGzipFile(filename string, data []byte) error {
	if err := os.WriteFile(filename, data, 0660); err != nil {
		return fmt.Errorf("write file: %v: %v", filename, err)
	}
	cmd := exec.Command("gzip", "-f", filename)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to run gzip on %v: %v: %v", filename, err, string(output))
	}
	return nil
}
