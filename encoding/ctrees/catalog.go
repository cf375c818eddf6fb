// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package ctrees

import (
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
)

const (
	// MaxColumns bounds the number of columns one request may ask for.  It
	// is fine for the tree files themselves to declare more.
	MaxColumns = 128
	// MaxColumnNameLen bounds a single column name.  Some Consistent-Trees
	// names are long ("Tidal_Force_Tdyn", "Mvir_all"), hence 64.
	MaxColumnNameLen = 64
	// maxHeaderColumns bounds the number of columns a header may declare.
	maxHeaderColumns = 1024

	// marker is the comment character introducing the header line and
	// every tree block.
	marker = '#'
)

// ErrMalformedHeader is returned when the header line does not begin with
// the '#' comment marker.
var ErrMalformedHeader = errors.New("ctrees: header does not begin with '#'")

// ColumnRequest names one file column a caller wants extracted and
// describes where its values go.
type ColumnRequest struct {
	// Name is matched against the header column names case-insensitively.
	Name string
	// Type is the destination representation.  A floating-point column may
	// be requested as an integer type; values truncate toward zero.
	Type NumericType
	// Group indexes the destination group within the BufferSet.
	Group int
	// Offset is the byte offset of the destination field within one
	// element of the group: zero for parallel-array layouts, the field's
	// offset within the row struct for packed layouts.
	Offset int
}

// ResolvedColumn is a ColumnRequest bound to a position in the file header.
type ResolvedColumn struct {
	// Col is the 0-based position of the column in the header.
	Col    int
	Type   NumericType
	Group  int
	Offset int
}

// ColumnMapping is the resolved form of a request set, sorted ascending by
// Col.  The sort order is what lets ParseRow tokenize each row in a single
// forward pass; duplicate Col values are allowed and reuse one token.
type ColumnMapping []ResolvedColumn

// Resolve parses the header line and binds the requested columns to their
// positions in the file.  Requested names absent from the header are logged
// and omitted from the result; they do not fail the call.  Callers that
// need every column should compare len(mapping) against len(reqs).
func Resolve(header string, reqs []ColumnRequest) (ColumnMapping, error) {
	if len(reqs) > MaxColumns {
		return nil, errors.Errorf("ctrees: %d columns requested, at most %d supported", len(reqs), MaxColumns)
	}
	for _, req := range reqs {
		if req.Type.Size() == 0 {
			return nil, errors.Errorf("ctrees: column %q requested with invalid numeric type %d", req.Name, req.Type)
		}
		if req.Offset < 0 {
			return nil, errors.Errorf("ctrees: column %q requested with negative offset %d", req.Name, req.Offset)
		}
		if len(req.Name) == 0 || len(req.Name) >= MaxColumnNameLen {
			return nil, errors.Errorf("ctrees: column name %q length must be in (0, %d)", req.Name, MaxColumnNameLen)
		}
	}
	names, err := headerNames(header)
	if err != nil {
		return nil, err
	}
	m := make(ColumnMapping, 0, len(reqs))
	for _, req := range reqs {
		col := -1
		for j, name := range names {
			if strings.EqualFold(req.Name, name) {
				col = j
				break
			}
		}
		if col < 0 {
			log.Printf("ctrees: requested column %q not found in header", req.Name)
			continue
		}
		m = append(m, ResolvedColumn{Col: col, Type: req.Type, Group: req.Group, Offset: req.Offset})
	}
	sort.SliceStable(m, func(i, j int) bool { return m[i].Col < m[j].Col })
	return m, nil
}

// Validate checks the mapping against the destination buffers: ascending
// column order, valid type tags, group indices in range, and every field
// contained within its group's stride.
func (m ColumnMapping) Validate(b *BufferSet) error {
	prev := -1
	for i, c := range m {
		if c.Col < prev {
			return errors.Errorf("ctrees: column mapping not sorted at entry %d (column %d after %d)", i, c.Col, prev)
		}
		prev = c.Col
		size := c.Type.Size()
		if size == 0 {
			return errors.Errorf("ctrees: invalid numeric type tag %d for column %d", c.Type, c.Col)
		}
		if c.Group < 0 || c.Group >= len(b.groups) {
			return errors.Errorf("ctrees: column %d writes to group %d, have %d group(s)", c.Col, c.Group, len(b.groups))
		}
		stride := b.groups[c.Group].stride
		if c.Offset < 0 || c.Offset+size > stride {
			return errors.Errorf("ctrees: column %d (%s at offset %d) does not fit in group %d stride %d",
				c.Col, c.Type, c.Offset, c.Group, stride)
		}
	}
	return nil
}

// headerNames extracts the column names from the header line, in file
// order.  Names are delimited by whitespace or commas and may carry a
// parenthesized index suffix, e.g. "mvir(10)", which must match the name's
// position when present.
func headerNames(header string) ([]string, error) {
	trimmed := strings.TrimLeft(header, " \t")
	if len(trimmed) == 0 || trimmed[0] != marker {
		return nil, errors.Wrapf(ErrMalformedHeader, "header line %q", header)
	}
	tokens := strings.FieldsFunc(header, func(r rune) bool {
		switch r {
		case ' ', '\t', ',', '\r', '\n', rune(marker):
			return true
		}
		return false
	})
	if len(tokens) == 0 {
		return nil, errors.Errorf("ctrees: header line %q declares no columns", header)
	}
	if len(tokens) > maxHeaderColumns {
		return nil, errors.Errorf("ctrees: header declares %d columns, at most %d supported", len(tokens), maxHeaderColumns)
	}
	names := make([]string, 0, len(tokens))
	for col, token := range tokens {
		name := token
		if open := strings.IndexByte(token, '('); open >= 0 {
			name = token[:open]
			end := strings.IndexByte(token[open:], ')')
			if end < 0 {
				return nil, errors.Errorf("ctrees: column %d: unterminated index suffix in %q", col, token)
			}
			idx, err := strconv.Atoi(token[open+1 : open+end])
			if err != nil {
				return nil, errors.Wrapf(err, "ctrees: column %d: bad index suffix in %q", col, token)
			}
			if idx != col {
				return nil, errors.Errorf("ctrees: column %q declares index %d but is column %d", token, idx, col)
			}
		}
		if len(name) == 0 || len(name) >= MaxColumnNameLen {
			return nil, errors.Errorf("ctrees: column %d name %q length must be in (0, %d)", col, name, MaxColumnNameLen)
		}
		names = append(names, name)
	}
	return names, nil
}
