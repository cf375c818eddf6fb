// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package ctrees

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

const (
	// markerProbeBytes bounds the lookahead used to skip over a block's
	// marker line.
	markerProbeBytes = 256
	// readChunkBytes is the positioned-read size used to stream a block's
	// rows.
	readChunkBytes = 16 * 1024
	// maxRowBytes bounds the scan window when a single row straddles
	// several chunks.
	maxRowBytes = 1 << 20
)

// ReadBlock parses the tree block whose marker line starts at offset,
// appending every row's mapped columns to the destination buffers.  It
// returns the absolute offset of the next block's marker line, or -1 if the
// block ran to end of file.
//
// All reads are positioned, so independent sessions may read disjoint
// blocks of the same file concurrently as long as each owns its BufferSet.
func ReadBlock(r io.ReaderAt, offset int64, m ColumnMapping, b *BufferSet) (int64, error) {
	if err := m.Validate(b); err != nil {
		return 0, err
	}

	// Skip the marker line introducing this block.
	probe := make([]byte, markerProbeBytes)
	n, err := r.ReadAt(probe, offset)
	if n == 0 {
		if err == io.EOF {
			return 0, errors.Errorf("ctrees: no block at offset %d", offset)
		}
		return 0, errors.Wrapf(err, "ctrees: reading marker line at offset %d", offset)
	}
	nl := bytes.IndexByte(probe[:n], '\n')
	if nl < 0 {
		return 0, errors.Errorf("ctrees: marker line at offset %d exceeds %d bytes", offset, markerProbeBytes)
	}
	offset += int64(nl) + 1

	var (
		buf      = make([]byte, readChunkBytes)
		bufOff   = offset // absolute file offset of buf[0]
		leftover = 0      // bytes of an incomplete row carried from the previous chunk
	)
	for {
		if leftover == len(buf) {
			// A row wider than the window; widen it.
			if len(buf) >= maxRowBytes {
				return 0, errors.Errorf("ctrees: row at offset %d exceeds %d bytes", bufOff, maxRowBytes)
			}
			grown := make([]byte, 2*len(buf))
			copy(grown, buf[:leftover])
			buf = grown
		}
		n, err := r.ReadAt(buf[leftover:], bufOff+int64(leftover))
		if err != nil && err != io.EOF {
			return 0, errors.Wrapf(err, "ctrees: reading chunk at offset %d", bufOff+int64(leftover))
		}
		total := leftover + n
		start := 0
		for start < total {
			// start always sits on a row boundary, so a marker here is
			// the next tree.
			if buf[start] == marker {
				return bufOff + int64(start), nil
			}
			nl := bytes.IndexByte(buf[start:total], '\n')
			if nl < 0 {
				break
			}
			line := trimCR(buf[start : start+nl])
			if len(line) > 0 {
				if err := ParseRow(line, m, b); err != nil {
					return 0, err
				}
			}
			start += nl + 1
		}
		leftover = total - start
		if n == 0 {
			// End of file.  A final row without a trailing newline is
			// still a complete row.
			if line := bytes.TrimSpace(buf[start:total]); len(line) > 0 {
				if err := ParseRow(line, m, b); err != nil {
					return 0, err
				}
			}
			return -1, nil
		}
		// Carry the incomplete trailing row into the next chunk's scan.
		copy(buf, buf[start:total])
		bufOff += int64(start)
	}
}

func trimCR(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		return line[:n-1]
	}
	return line
}
