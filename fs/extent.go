/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Mon Jun 18 09:05:33 2018 mstenber
 * Last modified: Tue Aug 21 10:02:46 2018 mstenber
 * Edit time:     47 min
 *
 */

package fs

import "encoding/binary"

// Extent is a contiguous run of blocks holding Length bytes starting
// at Block. A zero extent is an unused slot in an extent array.
//
// Encoded form is block u64 + length u64, little-endian, 16 bytes.
type Extent struct {
	Block  uint64
	Length uint64
}

func (self Extent) Empty() bool {
	return self.Length == 0
}

// NumBlocks is the number of blocks the extent spans.
func (self Extent) NumBlocks() uint64 {
	return (self.Length + BlockSize - 1) / BlockSize
}

// End is the first block past the extent.
func (self Extent) End() uint64 {
	return self.Block + self.NumBlocks()
}

// Blocks returns an iterator over the (block number, bytes in this
// block) pairs the extent spans; the last block reports the true
// remaining byte count. This iteration is the only way byte ranges
// become block I/O.
func (self Extent) Blocks() *BlockIter {
	return &BlockIter{extent: self}
}

type BlockIter struct {
	extent Extent
	i      uint64
}

func (self *BlockIter) Next() (block uint64, length uint64, ok bool) {
	if self.i >= self.extent.NumBlocks() {
		return 0, 0, false
	}
	block = self.extent.Block + self.i
	length = self.extent.Length - self.i*BlockSize
	if length > BlockSize {
		length = BlockSize
	}
	self.i++
	return block, length, true
}

// Reset restarts the iteration from the first block.
func (self *BlockIter) Reset() {
	self.i = 0
}

func encodeExtent(buf []byte, e Extent) {
	binary.LittleEndian.PutUint64(buf[0:], e.Block)
	binary.LittleEndian.PutUint64(buf[8:], e.Length)
}

func decodeExtent(buf []byte) Extent {
	return Extent{
		Block:  binary.LittleEndian.Uint64(buf[0:]),
		Length: binary.LittleEndian.Uint64(buf[8:]),
	}
}
