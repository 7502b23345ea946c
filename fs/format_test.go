/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Mon Jun 18 11:20:44 2018 mstenber
 * Last modified: Tue Aug 21 11:55:03 2018 mstenber
 * Edit time:     58 min
 *
 */

package fs

import (
	"encoding/binary"
	"strings"
	"testing"
	"time"

	"github.com/stvp/assert"
)

var prodTime = time.Unix(1234567890, 424242)

func TestHeaderEncodeDecode(t *testing.T) {
	t.Parallel()
	h := NewHeader(100*BlockSize, prodTime)
	h.Free = 1
	h.Root = 2
	buf := h.Encode()
	assert.Equal(t, len(buf), BlockSize)
	assert.Equal(t, string(buf[0:8]), Signature)
	assert.Equal(t, binary.LittleEndian.Uint64(buf[16:]), uint64(100*BlockSize))
	assert.Equal(t, binary.LittleEndian.Uint64(buf[24:]), uint64(1))
	assert.Equal(t, binary.LittleEndian.Uint64(buf[32:]), uint64(2))

	var h2 Header
	assert.Nil(t, h2.Decode(buf))
	assert.Equal(t, h2, *h)
}

func TestHeaderDecodeErrors(t *testing.T) {
	t.Parallel()
	h := NewHeader(100*BlockSize, prodTime)
	buf := h.Encode()

	var h2 Header
	buf[0] ^= 0xFF
	assert.Equal(t, h2.Decode(buf), ErrCorruptHeader)
	buf[0] ^= 0xFF

	binary.LittleEndian.PutUint64(buf[8:], Version+1)
	assert.Equal(t, h2.Decode(buf), ErrVersionMismatch)

	assert.Equal(t, h2.Decode(buf[:10]), ErrCorruptHeader)
}

func TestNodeEncodeDecode(t *testing.T) {
	t.Parallel()
	n, err := NewNode("hello.txt", ModeFile|0644, 3, prodTime)
	assert.Nil(t, err)
	n.Block = 42
	n.Uid = 1000
	n.Gid = 1001
	n.Size = 123456
	n.ExNode = 77
	n.Extents[0] = Extent{Block: 10, Length: 2 * BlockSize}
	n.Extents[NodeExtents-1] = Extent{Block: 99, Length: 17}

	buf := n.Encode()
	assert.Equal(t, len(buf), BlockSize)
	assert.Equal(t, binary.LittleEndian.Uint16(buf[0:]), ModeFile|uint16(0644))
	assert.Equal(t, binary.LittleEndian.Uint64(buf[34:]), uint64(123456))
	assert.Equal(t, string(buf[42:51]), "hello.txt")
	assert.Equal(t, binary.LittleEndian.Uint64(buf[256:]), uint64(3))
	assert.Equal(t, binary.LittleEndian.Uint64(buf[264:]), uint64(77))

	n2 := &Node{Block: 42}
	assert.Nil(t, n2.Decode(buf))
	assert.Equal(t, n2, n)
	assert.Equal(t, n2.Name(), "hello.txt")
	assert.True(t, n2.IsFile())
	assert.True(t, !n2.IsDir())
}

func TestNodeName(t *testing.T) {
	t.Parallel()
	n := &Node{}
	assert.Nil(t, n.SetName(strings.Repeat("x", NameLen)))
	assert.Equal(t, len(n.Name()), NameLen)
	assert.Equal(t, n.SetName(strings.Repeat("x", NameLen+1)), ErrNameTooLong)
	assert.True(t, n.SetName("a/b") != nil)
	assert.True(t, n.SetName("a\x00b") != nil)
	assert.Nil(t, n.SetName(""))
	assert.Equal(t, n.Name(), "")
}

func TestExNodeEncodeDecode(t *testing.T) {
	t.Parallel()
	x := &ExNode{Block: 5, Prev: 4, Next: 6}
	assert.True(t, x.Empty())
	x.Extents[0] = Extent{Block: 100, Length: BlockSize}
	x.Extents[ExNodeExtents-1] = Extent{Block: 200, Length: 300}
	assert.True(t, !x.Empty())

	buf := x.Encode()
	assert.Equal(t, len(buf), BlockSize)
	assert.Equal(t, binary.LittleEndian.Uint64(buf[0:]), uint64(4))
	assert.Equal(t, binary.LittleEndian.Uint64(buf[8:]), uint64(6))

	x2 := &ExNode{Block: 5}
	assert.Nil(t, x2.Decode(buf))
	assert.Equal(t, x2, x)
}

func TestFormatSizes(t *testing.T) {
	t.Parallel()
	// The extent arrays are sized so encoded nodes fill a block
	// exactly; these equalities are the format, not an accident.
	assert.Equal(t, nodeFixedSize+NodeExtents*ExtentSize, BlockSize)
	assert.Equal(t, 16+ExNodeExtents*ExtentSize, BlockSize)
	assert.Equal(t, NodeExtents, 239)
	assert.Equal(t, ExNodeExtents, 255)
}
