package ctrees

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
)

// ReadHeader returns the first line of the tree file at path, without the
// trailing newline.  Archived tree files are often compressed; compressed
// input is detected and decompressed transparently.
func ReadHeader(ctx context.Context, path string) (header string, err error) {
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return "", errors.E(err, path)
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	r, _ := compress.NewReader(in.Reader(ctx))
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	line, e := bufio.NewReader(r).ReadString('\n')
	if e != nil && e != io.EOF {
		return "", errors.E(e, "reading header line", path)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.E("empty header line", path)
	}
	return line, nil
}

// ResolveFile is a wrapper for Resolve that reads the header from the tree
// file at path.
func ResolveFile(path string, reqs []ColumnRequest) (ColumnMapping, error) {
	header, err := ReadHeader(vcontext.Background(), path)
	if err != nil {
		return nil, err
	}
	return Resolve(header, reqs)
}
