// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package ctrees

import (
	"github.com/pkg/errors"
)

// defaultInitialRows seeds the capacity on first growth when the caller did
// not supply an initial capacity.
const defaultInitialRows = 64

// ResizeFunc reallocates a group's backing storage to n bytes, preserving
// the existing prefix.  Callers that own the destination memory supply one
// per group; growth then happens through the callback instead of storage
// the library allocates itself.
type ResizeFunc func(old []byte, n int) ([]byte, error)

// GroupDesc describes one destination buffer group.
type GroupDesc struct {
	// Stride is the size in bytes of one row element: the scalar width for
	// a parallel-array group, the row struct size for a packed group.
	// Minimum 4 bytes, the smallest supported numeric type.
	Stride int
	// Resize, if non-nil, reallocates this group's backing storage.
	Resize ResizeFunc
}

type bufferGroup struct {
	stride int
	data   []byte
	resize ResizeFunc
}

// BufferSet is the destination storage for parsed rows.  All groups share a
// single row count and a single capacity: rows are written in lockstep, one
// element per group per row.  A BufferSet is not safe for concurrent use.
type BufferSet struct {
	groups   []bufferGroup
	rows     int64
	capacity int64
}

// NewBufferSet creates destination storage with one group per descriptor.
// initialRows may be zero, in which case the first growth seeds a default
// capacity.
func NewBufferSet(descs []GroupDesc, initialRows int64) (*BufferSet, error) {
	if len(descs) == 0 {
		return nil, errors.New("ctrees: a buffer set needs at least one group")
	}
	if len(descs) > MaxColumns {
		return nil, errors.Errorf("ctrees: %d buffer groups requested, at most %d supported", len(descs), MaxColumns)
	}
	if initialRows < 0 {
		return nil, errors.Errorf("ctrees: negative initial capacity %d", initialRows)
	}
	b := &BufferSet{groups: make([]bufferGroup, len(descs))}
	for i, d := range descs {
		if d.Stride < 4 {
			return nil, errors.Errorf("ctrees: group %d stride is %d bytes; the smallest supported type is 4 bytes (did you forget sizeof?)", i, d.Stride)
		}
		b.groups[i] = bufferGroup{stride: d.Stride, resize: d.Resize}
	}
	if initialRows > 0 {
		if err := b.setCapacity(initialRows); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Rows returns the number of committed rows.
func (b *BufferSet) Rows() int64 { return b.rows }

// Cap returns the current row capacity, shared by all groups.
func (b *BufferSet) Cap() int64 { return b.capacity }

// NumGroups returns the number of destination groups.
func (b *BufferSet) NumGroups() int { return len(b.groups) }

// Stride returns the element size in bytes of group i.
func (b *BufferSet) Stride(i int) int { return b.groups[i].stride }

// Bytes returns the backing storage of group i trimmed to the committed
// rows.  The slice aliases the group's storage and is invalidated by the
// next growth.
func (b *BufferSet) Bytes(i int) []byte {
	g := &b.groups[i]
	return g.data[:b.rows*int64(g.stride)]
}

// ensureCapacity makes room for one more row, doubling every group's
// storage when the committed row count has reached the shared capacity.
func (b *BufferSet) ensureCapacity() error {
	if b.rows < b.capacity {
		return nil
	}
	n := b.capacity * 2
	if n == 0 {
		n = defaultInitialRows
	}
	return b.setCapacity(n)
}

// setCapacity grows every group to n rows, all of them or none: new storage
// is acquired for each group first and committed only once every resize has
// succeeded, so a failure in one group leaves the set untouched.
func (b *BufferSet) setCapacity(n int64) error {
	grown := make([][]byte, len(b.groups))
	for i := range b.groups {
		g := &b.groups[i]
		size := n * int64(g.stride)
		resize := g.resize
		if resize == nil {
			resize = defaultResize
		}
		data, err := resize(g.data, int(size))
		if err != nil {
			return errors.Wrapf(err, "ctrees: growing group %d from %d to %d rows", i, b.capacity, n)
		}
		if int64(len(data)) < size {
			return errors.Errorf("ctrees: resize of group %d returned %d bytes, need %d", i, len(data), size)
		}
		grown[i] = data[:size]
	}
	for i := range b.groups {
		b.groups[i].data = grown[i]
	}
	b.capacity = n
	return nil
}

func defaultResize(old []byte, n int) ([]byte, error) {
	if cap(old) >= n {
		return old[:n], nil
	}
	data := make([]byte, n)
	copy(data, old)
	return data, nil
}
