// Copyright 2024 The gzipdecomp Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.
package main_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-compress/gzipdecomp/internal/testutil"
)

func gunzipCmd(filename string) ([]byte, string, error) {
	ifile := filename + ".gz"
	ofile := filename + ".test"
	cmd := exec.Command("go", "run", ".", "gunzip",
		"--output="+ofile, "--progress=false", ifile,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, string(output), err
	}
	data, err := os.ReadFile(ofile)
	return data, string(output), err
}

func TestCmd(t *testing.T) {
	tmpdir := t.TempDir()
	for _, tc := range []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"800KB1", testutil.GenPredictableRandomData(800 * 1024)},
	} {
		filename := filepath.Join(tmpdir, tc.name)
		if err := testutil.CreateGzipFile(filename, tc.data); err != nil {
			t.Fatalf("%v: %v", tc.name, err)
		}
		data, out, err := gunzipCmd(filename)
		if err != nil {
			t.Fatalf("%v: %v: %v", tc.name, out, err)
		}
		if got, want := data, tc.data; !bytes.Equal(got, want) {
			t.Errorf("%v: got %v, want %v", tc.name, testutil.FirstN(20, got), testutil.FirstN(20, want))
		}
	}
}

func TestErrors(t *testing.T) {
	tmpdir := t.TempDir()

	empty := filepath.Join(tmpdir, "empty")
	if err := os.WriteFile(empty+".gz", nil, 0600); err != nil {
		t.Fatal(err)
	}
	_, out, err := gunzipCmd(empty)
	if err == nil || !strings.Contains(out, "EOF") {
		t.Fatalf("missing or wrong error message: %v: %v", out, err)
	}

	hello := filepath.Join(tmpdir, "hello")
	if err := testutil.CreateGzipFile(hello, []byte("hello world\n")); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(hello + ".gz")
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)-5] ^= 0xFF // flip the last byte of the trailer's CRC32

	corrupt := hello + "-corrupt"
	if err := os.WriteFile(corrupt+".gz", data, 0600); err != nil {
		t.Fatal(err)
	}

	_, out, err = gunzipCmd(corrupt)
	if err == nil || !strings.Contains(out, "CRC32") {
		t.Fatalf("missing or wrong error message: %v: %v", out, err)
	}
}
