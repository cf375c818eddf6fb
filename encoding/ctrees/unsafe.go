package ctrees

// Functions in this file provide unsafe casting from group backing bytes to
// typed row views, for parallel-array groups whose stride equals the scalar
// width.  Values are stored in host byte order, so the casts are direct.

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Int32s returns the committed rows of group i as []int32.  The view
// aliases the group's backing storage and is invalidated by the next
// growth.  The group's stride must be 4.
func (b *BufferSet) Int32s(i int) []int32 {
	return unsafeBytesToInt32s(b.view(i, 4))
}

// Int64s returns the committed rows of group i as []int64.  Same aliasing
// caveats as Int32s; the group's stride must be 8.
func (b *BufferSet) Int64s(i int) []int64 {
	return unsafeBytesToInt64s(b.view(i, 8))
}

// Uint32s returns the committed rows of group i as []uint32.
func (b *BufferSet) Uint32s(i int) []uint32 {
	return unsafeBytesToUint32s(b.view(i, 4))
}

// Uint64s returns the committed rows of group i as []uint64.
func (b *BufferSet) Uint64s(i int) []uint64 {
	return unsafeBytesToUint64s(b.view(i, 8))
}

// Float32s returns the committed rows of group i as []float32.
func (b *BufferSet) Float32s(i int) []float32 {
	return unsafeBytesToFloat32s(b.view(i, 4))
}

// Float64s returns the committed rows of group i as []float64.
func (b *BufferSet) Float64s(i int) []float64 {
	return unsafeBytesToFloat64s(b.view(i, 8))
}

func (b *BufferSet) view(i, size int) []byte {
	g := &b.groups[i]
	if g.stride != size {
		panic(fmt.Sprintf("ctrees: typed view of group %d needs stride %d, have %d", i, size, g.stride))
	}
	return g.data[:b.rows*int64(size)]
}

func unsafeBytesToInt32s(src []byte) (d []int32) {
	sh := (*reflect.SliceHeader)(unsafe.Pointer(&src))
	dh := (*reflect.SliceHeader)(unsafe.Pointer(&d))
	dh.Data = sh.Data
	dh.Len = sh.Len / 4
	dh.Cap = sh.Cap / 4
	return d
}

func unsafeBytesToInt64s(src []byte) (d []int64) {
	sh := (*reflect.SliceHeader)(unsafe.Pointer(&src))
	dh := (*reflect.SliceHeader)(unsafe.Pointer(&d))
	dh.Data = sh.Data
	dh.Len = sh.Len / 8
	dh.Cap = sh.Cap / 8
	return d
}

func unsafeBytesToUint32s(src []byte) (d []uint32) {
	sh := (*reflect.SliceHeader)(unsafe.Pointer(&src))
	dh := (*reflect.SliceHeader)(unsafe.Pointer(&d))
	dh.Data = sh.Data
	dh.Len = sh.Len / 4
	dh.Cap = sh.Cap / 4
	return d
}

func unsafeBytesToUint64s(src []byte) (d []uint64) {
	sh := (*reflect.SliceHeader)(unsafe.Pointer(&src))
	dh := (*reflect.SliceHeader)(unsafe.Pointer(&d))
	dh.Data = sh.Data
	dh.Len = sh.Len / 8
	dh.Cap = sh.Cap / 8
	return d
}

func unsafeBytesToFloat32s(src []byte) (d []float32) {
	sh := (*reflect.SliceHeader)(unsafe.Pointer(&src))
	dh := (*reflect.SliceHeader)(unsafe.Pointer(&d))
	dh.Data = sh.Data
	dh.Len = sh.Len / 4
	dh.Cap = sh.Cap / 4
	return d
}

func unsafeBytesToFloat64s(src []byte) (d []float64) {
	sh := (*reflect.SliceHeader)(unsafe.Pointer(&src))
	dh := (*reflect.SliceHeader)(unsafe.Pointer(&d))
	dh.Data = sh.Data
	dh.Len = sh.Len / 8
	dh.Cap = sh.Cap / 8
	return d
}
