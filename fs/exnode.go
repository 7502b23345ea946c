/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Mon Jun 18 10:11:47 2018 mstenber
 * Last modified: Tue Aug 21 10:41:22 2018 mstenber
 * Edit time:     26 min
 *
 */

package fs

import "encoding/binary"

// ExNode is an extent overflow block: when a Node's inline extent
// array is full, the list continues in a doubly linked chain of
// these. Links are block numbers (0 = none), not pointers; chains are
// loaded from disk on demand.
//
// Layout: prev u64 @0, next u64 @8, extents @16. The extent array is
// sized so that the encoded form is exactly one block; that is a
// format contract, not a convenience.
type ExNode struct {
	// Block is where this ExNode lives. Not serialized.
	Block uint64

	Prev    uint64
	Next    uint64
	Extents [ExNodeExtents]Extent
}

func (self *ExNode) Encode() []byte {
	buf := make([]byte, BlockSize)
	binary.LittleEndian.PutUint64(buf[0:], self.Prev)
	binary.LittleEndian.PutUint64(buf[8:], self.Next)
	for i, e := range self.Extents {
		encodeExtent(buf[16+i*ExtentSize:], e)
	}
	return buf
}

func (self *ExNode) Decode(buf []byte) error {
	if len(buf) < BlockSize {
		return ErrBadChain
	}
	self.Prev = binary.LittleEndian.Uint64(buf[0:])
	self.Next = binary.LittleEndian.Uint64(buf[8:])
	for i := range self.Extents {
		self.Extents[i] = decodeExtent(buf[16+i*ExtentSize:])
	}
	return nil
}

// Empty tells whether every extent slot is unused.
func (self *ExNode) Empty() bool {
	for _, e := range self.Extents {
		if !e.Empty() {
			return false
		}
	}
	return true
}
