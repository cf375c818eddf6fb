package ctrees

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// treeMarker introduces each block in Consistent-Trees output, as in
// "#tree 3060299107".
const treeMarker = "#tree"

// A Block describes one merger tree block consumed by a Scanner.
type Block struct {
	// ID is the block identifier from the marker line, typically the tree
	// root halo ID.
	ID string
	// Rows is the number of data rows the block contributed to the
	// destination buffers.
	Rows int64
}

// Scanner reads tree blocks sequentially from an io.Reader, for callers
// that have no tree location index.  It works on any reader, including
// decompressed streams, since it never seeks.  The Scan method consumes the
// next block, returning a boolean indicating whether the scan succeeded.
// Scanners are not threadsafe.
type Scanner struct {
	b       *bufio.Scanner
	m       ColumnMapping
	bufs    *BufferSet
	err     error
	pending string // marker line of the next block, already consumed
	started bool
}

// NewScanner constructs a Scanner that parses the mapped columns of every
// block into bufs.  The reader should be positioned at the start of the
// file; the header line and any other preamble before the first tree
// marker are skipped.
func NewScanner(r io.Reader, m ColumnMapping, bufs *BufferSet) *Scanner {
	s := &Scanner{b: bufio.NewScanner(r), m: m, bufs: bufs}
	s.b.Buffer(nil, maxRowBytes)
	s.err = m.Validate(bufs)
	return s
}

// Scan consumes the next tree block, appending its rows to the destination
// buffers.  Once Scan returns false, it never returns true again; the user
// should check Err to distinguish end of input from failure.
func (s *Scanner) Scan(block *Block) bool {
	if s.err != nil {
		return false
	}
	if !s.started {
		s.started = true
		for s.b.Scan() {
			if line := s.b.Text(); isTreeMarker(line) {
				s.pending = line
				break
			}
		}
	}
	if s.pending == "" {
		s.err = s.b.Err()
		return false
	}
	block.ID = markerID(s.pending)
	s.pending = ""
	startRows := s.bufs.Rows()
	for s.b.Scan() {
		line := s.b.Bytes()
		if len(line) > 0 && line[0] == marker {
			s.pending = s.b.Text()
			break
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if err := ParseRow(line, s.m, s.bufs); err != nil {
			s.err = err
			return false
		}
	}
	if err := s.b.Err(); err != nil {
		s.err = err
		return false
	}
	block.Rows = s.bufs.Rows() - startRows
	return true
}

// Err returns the first error encountered while scanning, if any.
func (s *Scanner) Err() error { return s.err }

func isTreeMarker(line string) bool {
	return line == treeMarker || strings.HasPrefix(line, treeMarker+" ")
}

func markerID(line string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(line, treeMarker), "#"))
}
