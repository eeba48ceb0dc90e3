// Package source opens the dump to ingest: a local file, standard input or
// an S3 object, transparently decompressed by file suffix.
package source

import (
	"compress/bzip2"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Stdin is the dump name that selects standard input.
const Stdin = "-"

// stdin is swapped in tests.
var stdin io.Reader = os.Stdin

// Options configures Open.
type Options struct {
	S3 S3Options
}

// Open opens the named dump. Names ending in .gz, .zst or .bz2 are
// decompressed while reading.
func Open(ctx context.Context, name string, opts Options) (io.ReadCloser, error) {
	var (
		rc  io.ReadCloser
		err error
	)

	switch {
	case name == Stdin:
		rc = io.NopCloser(stdin)
	case strings.HasPrefix(name, "s3://"):
		rc, err = openS3(ctx, name, opts.S3)
	default:
		rc, err = os.Open(name)
	}
	if err != nil {
		return nil, err
	}

	r, err := decompress(name, rc)
	if err != nil {
		rc.Close()
		return nil, err
	}
	return r, nil
}

func decompress(name string, rc io.ReadCloser) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		zr, err := gzip.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return &stack{Reader: zr, closers: []io.Closer{zr, rc}}, nil
	case strings.HasSuffix(name, ".zst"):
		zr, err := zstd.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		d := zr.IOReadCloser()
		return &stack{Reader: d, closers: []io.Closer{d, rc}}, nil
	case strings.HasSuffix(name, ".bz2"):
		return &stack{Reader: bzip2.NewReader(rc), closers: []io.Closer{rc}}, nil
	default:
		return rc, nil
	}
}

// stack reads from the outermost reader and closes every layer.
type stack struct {
	io.Reader
	closers []io.Closer
}

func (s *stack) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
