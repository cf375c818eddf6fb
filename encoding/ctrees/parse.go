package ctrees

import (
	"encoding/binary"
	"math"
	"strconv"

	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/pkg/errors"
)

// Debug enables per-row revalidation of the column mapping against the
// destination buffers in ParseRow.  ReadBlock and Scanner validate once up
// front, so this is off by default.
var Debug = false

// ParseRow converts one data row into typed values written to the
// destination buffers, growing them if needed.  The mapping must be sorted
// ascending by column (Resolve guarantees this): the row is tokenized in a
// single forward pass and unwanted columns are skipped without conversion,
// so per-row cost scales with the highest requested column, not the file's
// column count.  The shared row count is incremented once, after every
// mapped column has been written; a missing or unparseable token fails the
// row without committing it.
func ParseRow(line []byte, m ColumnMapping, b *BufferSet) error {
	if Debug {
		if err := m.Validate(b); err != nil {
			return err
		}
	}
	if err := b.ensureCapacity(); err != nil {
		return err
	}
	var (
		row = b.rows
		tok []byte
		col = -1
		pos = 0
	)
	for _, c := range m {
		// Consecutive mapping entries may share a column; the cursor then
		// stays put and the token is converted a second time.
		for col < c.Col {
			tok, pos = nextToken(line, pos)
			if tok == nil {
				return errors.Errorf("ctrees: row ends at column %d, want column %d (%s): %q", col, c.Col, c.Type, line)
			}
			col++
		}
		g := &b.groups[c.Group]
		dst := g.data[row*int64(g.stride)+int64(c.Offset):]
		if err := storeToken(dst, c.Type, tok); err != nil {
			return err
		}
	}
	b.rows++
	return nil
}

// nextToken returns the next whitespace-delimited token at or after pos,
// and the cursor position just past it.  A nil token means the row is
// exhausted.
func nextToken(line []byte, pos int) ([]byte, int) {
	for pos < len(line) && (line[pos] == ' ' || line[pos] == '\t') {
		pos++
	}
	if pos == len(line) {
		return nil, pos
	}
	start := pos
	for pos < len(line) && line[pos] != ' ' && line[pos] != '\t' {
		pos++
	}
	return line[start:pos], pos
}

// storeToken parses tok as typ and writes the value at the start of dst.
// The type tag alone selects the representation written; tags outside the
// known set are a hard error (unreachable for a validated mapping).
func storeToken(dst []byte, typ NumericType, tok []byte) error {
	s := gunsafe.BytesToString(tok)
	switch typ {
	case Int32:
		v, err := parseSigned(s, 32)
		if err != nil {
			return err
		}
		binary.NativeEndian.PutUint32(dst, uint32(int32(v)))
	case Int64:
		v, err := parseSigned(s, 64)
		if err != nil {
			return err
		}
		binary.NativeEndian.PutUint64(dst, uint64(v))
	case Uint32:
		v, err := parseUnsigned(s, 32)
		if err != nil {
			return err
		}
		binary.NativeEndian.PutUint32(dst, uint32(v))
	case Uint64:
		v, err := parseUnsigned(s, 64)
		if err != nil {
			return err
		}
		binary.NativeEndian.PutUint64(dst, v)
	case Float32:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return errors.Errorf("ctrees: token %q is not a valid float32", s)
		}
		binary.NativeEndian.PutUint32(dst, math.Float32bits(float32(f)))
	case Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return errors.Errorf("ctrees: token %q is not a valid float64", s)
		}
		binary.NativeEndian.PutUint64(dst, math.Float64bits(f))
	default:
		return errors.Errorf("ctrees: invalid numeric type tag %d; known tags are in [%d, %d)", typ, Int32, numericTypeInvalid)
	}
	return nil
}

// parseSigned parses a base-10 integer with optional sign.  Consistent-Trees
// writes some integral quantities with a fractional part ("145.000000"), so
// a token that fails integer parsing is retried as floating point and
// truncated toward zero.
func parseSigned(s string, bits int) (int64, error) {
	v, err := strconv.ParseInt(s, 10, bits)
	if err == nil {
		return v, nil
	}
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil {
		return 0, errors.Errorf("ctrees: token %q is not a valid int%d", s, bits)
	}
	return int64(f), nil
}

func parseUnsigned(s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, bits)
	if err == nil {
		return v, nil
	}
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil {
		return 0, errors.Errorf("ctrees: token %q is not a valid uint%d", s, bits)
	}
	return uint64(int64(f)), nil
}
