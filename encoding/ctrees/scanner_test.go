package ctrees_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/ctrees/encoding/ctrees"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

var scannerData = "#scale(0) id(1) mvir(2)\n" +
	"#Some other preamble comment.\n" +
	"2\n" + // tree count line, as Consistent-Trees writes it
	"#tree 100\n" +
	"0.25 100 1e10\n" +
	"0.50 101 2e10\n" +
	"#tree 200\n" +
	"0.75 200 3e10\n"

func TestScanner(t *testing.T) {
	bufs := treeBufs(t)
	sc := ctrees.NewScanner(strings.NewReader(scannerData), testMapping, bufs)

	var block ctrees.Block
	assert.True(t, sc.Scan(&block))
	expect.EQ(t, block.ID, "100")
	expect.EQ(t, block.Rows, int64(2))

	assert.True(t, sc.Scan(&block))
	expect.EQ(t, block.ID, "200")
	expect.EQ(t, block.Rows, int64(1))

	assert.False(t, sc.Scan(&block))
	assert.NoError(t, sc.Err())

	require.Equal(t, []float32{0.25, 0.50, 0.75}, bufs.Float32s(0))
	require.Equal(t, []int64{100, 101, 200}, bufs.Int64s(1))
	require.Equal(t, []float64{1e10, 2e10, 3e10}, bufs.Float64s(2))
}

func TestScannerEmptyInput(t *testing.T) {
	bufs := treeBufs(t)
	sc := ctrees.NewScanner(strings.NewReader("#scale id mvir\n"), testMapping, bufs)
	var block ctrees.Block
	assert.False(t, sc.Scan(&block))
	assert.NoError(t, sc.Err())
	expect.EQ(t, bufs.Rows(), int64(0))
}

func TestScannerRowError(t *testing.T) {
	data := "#scale id mvir\n#tree 1\n0.5 zzz 1e10\n"
	bufs := treeBufs(t)
	sc := ctrees.NewScanner(strings.NewReader(data), testMapping, bufs)
	var block ctrees.Block
	assert.False(t, sc.Scan(&block))
	require.Error(t, sc.Err())
	require.Contains(t, sc.Err().Error(), "not a valid int64")
	// Once failed, the scanner stays failed.
	assert.False(t, sc.Scan(&block))
}

func TestScannerBadMapping(t *testing.T) {
	bufs := treeBufs(t)
	badMap := ctrees.ColumnMapping{{Col: 0, Type: ctrees.Int32, Group: 9}}
	sc := ctrees.NewScanner(strings.NewReader(scannerData), badMap, bufs)
	var block ctrees.Block
	assert.False(t, sc.Scan(&block))
	require.Error(t, sc.Err())
}

func TestScannerGzip(t *testing.T) {
	// Archived tree files are gzipped; the scanner never seeks, so it
	// composes with a decompressing reader.
	var zbuf bytes.Buffer
	zw := gzip.NewWriter(&zbuf)
	_, err := zw.Write([]byte(scannerData))
	assert.NoError(t, err)
	assert.NoError(t, zw.Close())

	zr, _ := compress.NewReader(&zbuf)
	defer zr.Close() // nolint: errcheck
	bufs := treeBufs(t)
	sc := ctrees.NewScanner(zr, testMapping, bufs)

	var block ctrees.Block
	n := 0
	for sc.Scan(&block) {
		n++
	}
	assert.NoError(t, sc.Err())
	expect.EQ(t, n, 2)
	expect.EQ(t, bufs.Rows(), int64(3))
	require.Equal(t, []int64{100, 101, 200}, bufs.Int64s(1))
}
