/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Wed Jun 13 10:31:09 2018 mstenber
 * Last modified: Mon Aug 20 10:01:15 2018 mstenber
 * Edit time:     29 min
 *
 */

package disk

import "math"

// MemDisk is an in-memory block device. Mostly of use in tests; the
// Reads/Writes counters exist so tests can observe how much backend
// traffic a caching layer actually produced.
type MemDisk struct {
	blocks map[uint64][]byte
	size   uint64

	Reads, Writes int
}

var _ Disk = &MemDisk{}

// NewMemDisk creates an in-memory disk of the given size in bytes;
// size 0 means unbounded (sparse-like).
func NewMemDisk(size uint64) *MemDisk {
	return &MemDisk{blocks: make(map[uint64][]byte), size: size}
}

func (self *MemDisk) ReadAt(block uint64, buf []byte) (int, error) {
	self.Reads++
	b, ok := self.blocks[block]
	if !ok {
		for i := range buf {
			buf[i] = 0
		}
		return len(buf), nil
	}
	return copy(buf, b), nil
}

func (self *MemDisk) WriteAt(block uint64, buf []byte) (int, error) {
	self.Writes++
	b := make([]byte, BlockSize)
	copy(b, self.blocks[block])
	copy(b, buf)
	self.blocks[block] = b
	return len(buf), nil
}

func (self *MemDisk) Size() (uint64, error) {
	if self.size == 0 {
		return math.MaxUint64, nil
	}
	return self.size, nil
}

func (self *MemDisk) Sync() error {
	return nil
}

func (self *MemDisk) Close() error {
	self.blocks = nil
	return nil
}
