// Copyright 2024 The gzipdecomp Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command gzipdecomp decompresses gzip files or streams from the command
// line. Files may be local, on S3, or fetched over http(s). This binary is
// the external collaborator spec.md §1 excludes from the core: it owns flag
// parsing, file/network I/O, signal handling, and logging, none of which
// the gzipdecomp package itself touches.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"cloudeng.io/cmdutil"
	"cloudeng.io/cmdutil/subcmd"
	"cloudeng.io/errors"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff/v3"
	"github.com/go-compress/gzipdecomp"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/file/s3file"
	"github.com/schollz/progressbar/v2"
	"golang.org/x/crypto/ssh/terminal"
)

type commonFlags struct {
	Verbose bool `subcmd:"verbose,false,verbose debug/trace information"`
}

type catFlags struct {
	commonFlags
}

type gunzipFlags struct {
	commonFlags
	ProgressBar bool   `subcmd:"progress,true,display a progress bar"`
	OutputFile  string `subcmd:"output,,'output file or s3 path, omit for stdout'"`
}

type inspectFlags struct {
	commonFlags
}

var cmdSet *subcmd.CommandSet

func init() {
	catCmd := subcmd.NewCommand("cat",
		subcmd.MustRegisterFlagStruct(&catFlags{}, nil, nil),
		cat, subcmd.AtLeastNArguments(0))
	catCmd.Document(`decompress gzip files or stdin to stdout. Files may be local, on S3 or a URL.`)

	gunzipCmd := subcmd.NewCommand("gunzip",
		subcmd.MustRegisterFlagStruct(&gunzipFlags{}, nil, nil),
		gunzip, subcmd.ExactlyNumArguments(1))
	gunzipCmd.Document(`decompress a single gzip file.`)

	inspectCmd := subcmd.NewCommand("inspect",
		subcmd.MustRegisterFlagStruct(&inspectFlags{}, nil, nil),
		inspect, subcmd.AtLeastNArguments(1))
	inspectCmd.Document(`print each member's header fields; payloads are decoded to reach each trailer but not written out.`)

	cmdSet = subcmd.NewCommandSet(catCmd, gunzipCmd, inspectCmd)
	cmdSet.Document(`decompress and inspect gzip files. Files may be local, on S3 or a URL.`)

	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(
			s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})
}

func main() {
	cmdSet.MustDispatch(context.Background())
}

// openFileOrURL opens name for reading. http(s) URLs are fetched with
// exponential-backoff retry, since transient fetch failures shouldn't sink
// an otherwise-valid decompression run; everything else (local paths and
// s3:// URIs) goes through grailbio/base/file.
func openFileOrURL(ctx context.Context, name string) (io.Reader, int64, func(context.Context) error, error) {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		var resp *http.Response
		fetch := func() error {
			r, err := http.Get(name)
			if err != nil {
				return err
			}
			if r.StatusCode >= 500 {
				r.Body.Close()
				return fmt.Errorf("gzipdecomp: server error fetching %v: %v", name, r.Status)
			}
			resp = r
			return nil
		}
		bo := backoff.NewExponentialBackOff()
		bo.MaxElapsedTime = 30 * time.Second
		if err := backoff.Retry(fetch, bo); err != nil {
			return nil, 0, nil, err
		}
		return resp.Body, resp.ContentLength, func(context.Context) error {
			return resp.Body.Close()
		}, nil
	}
	info, err := file.Stat(ctx, name)
	if err != nil {
		return nil, 0, nil, err
	}
	f, err := file.Open(ctx, name)
	if err != nil {
		return nil, 0, nil, err
	}
	return f.Reader(ctx), info.Size(), f.Close, nil
}

func outputName(name string) string {
	if len(name) == 0 {
		return "stdout"
	}
	return name
}

func createFile(ctx context.Context, name string) (io.Writer, func(context.Context) error, error) {
	if len(name) == 0 {
		return os.Stdout, func(context.Context) error { return nil }, nil
	}
	f, err := file.Create(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return f.Writer(ctx), f.Close, nil
}

func cat(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cl := values.(*catFlags)
	cmdutil.HandleSignals(cancel, os.Interrupt)

	if len(args) == 0 {
		if cl.Verbose {
			log.Printf("cat: decompressing stdin")
		}
		return gzipdecomp.Decompress(os.Stdin, os.Stdout)
	}
	errs := &errors.M{}
	for _, inputFile := range args {
		if cl.Verbose {
			log.Printf("cat: decompressing %v", inputFile)
		}
		rd, _, readerCleanup, err := openFileOrURL(ctx, inputFile)
		if err != nil {
			errs.Append(err)
			continue
		}
		errs.Append(gzipdecomp.Decompress(rd, os.Stdout))
		errs.Append(readerCleanup(ctx))
	}
	return errs.Err()
}

func gunzip(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cl := values.(*gunzipFlags)
	cmdutil.HandleSignals(cancel, os.Interrupt)

	if cl.Verbose {
		log.Printf("gunzip: decompressing %v -> %v", args[0], outputName(cl.OutputFile))
	}

	rd, size, readerCleanup, err := openFileOrURL(ctx, args[0])
	if err != nil {
		return err
	}
	defer readerCleanup(ctx)

	wr, writerCleanup, err := createFile(ctx, cl.OutputFile)
	if err != nil {
		return err
	}

	var opts []gzipdecomp.Option
	isTTY := terminal.IsTerminal(int(os.Stdout.Fd()))
	var bar *progressbar.ProgressBar
	if cl.ProgressBar && (len(cl.OutputFile) > 0 || !isTTY) {
		barWriter := os.Stdout
		if !isTTY {
			barWriter = os.Stderr
		}
		bar = progressbar.NewOptions64(size,
			progressbar.OptionSetBytes64(size),
			progressbar.OptionSetWriter(barWriter),
			progressbar.OptionSetPredictTime(true))
		opts = append(opts, gzipdecomp.WithProgress(func(p gzipdecomp.Progress) {
			bar.Set64(int64(p.UncompressedBytes))
		}))
	}

	errs := &errors.M{}
	errs.Append(gzipdecomp.Decompress(rd, wr, opts...))
	errs.Append(writerCleanup(ctx))
	if bar != nil {
		fmt.Fprintln(os.Stderr)
	}
	return errs.Err()
}

func inspectFile(ctx context.Context, name string) error {
	rd, _, readerCleanup, err := openFileOrURL(ctx, name)
	if err != nil {
		return err
	}
	defer readerCleanup(ctx)

	members, err := gzipdecomp.Inspect(rd)
	fmt.Printf("=== %v ===\n", name)
	for i, m := range members {
		fmt.Printf("member %d: method=%v flags=%#02x mtime=%v name=%q comment=%q extra-bytes=%d\n",
			i+1, m.CompressionMethod, uint8(m.Flags), m.ModificationTime, m.NameString(), m.CommentString(), len(m.Extra))
	}
	if err != nil {
		log.Printf("inspect %v: stopped early: %v", name, err)
	}
	return err
}

func inspect(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cl := values.(*inspectFlags)
	cmdutil.HandleSignals(cancel, os.Interrupt)
	errs := &errors.M{}
	for _, arg := range args {
		if cl.Verbose {
			log.Printf("inspect: reading %v", arg)
		}
		errs.Append(inspectFile(ctx, arg))
	}
	return errs.Err()
}
