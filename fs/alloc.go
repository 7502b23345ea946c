/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Wed Jun 20 09:02:13 2018 mstenber
 * Last modified: Wed Aug 22 13:20:09 2018 mstenber
 * Edit time:     104 min
 *
 */

package fs

import (
	"fmt"

	"github.com/fingon/go-redoxfs/mlog"
)

// The free-block allocator. Free space lives in an ordinary Node
// (Header.Free) whose extents are the free runs; its Size field is
// the number of free bytes. Allocation takes blocks from the front of
// a free run, freeing merges a run back when it is adjacent to an
// existing one.

// freeList loads the free list node and its chain. Its chain-growth
// allocations must come from the same loaded list, not through
// Allocate, which would load (and later clobber) a second copy.
func (self *FileSystem) freeList() (*extentList, error) {
	n, err := self.readNode(self.header.Free)
	if err != nil {
		return nil, err
	}
	el, err := self.loadChain(n)
	if err != nil {
		return nil, err
	}
	el.alloc = func(blocks uint64) (Extent, error) {
		return self.allocateFrom(el, blocks)
	}
	return el, nil
}

// allocateFrom takes up to blocks contiguous blocks out of the loaded
// free list: the first run that covers the request is split from the
// front; when no run does, the largest run is returned whole and the
// caller loops. The list is mutated in memory only.
func (self *FileSystem) allocateFrom(el *extentList, blocks uint64) (Extent, error) {
	if blocks == 0 {
		return Extent{}, fmt.Errorf("zero-block allocation")
	}
	covering, largest := -1, -1
	largestBlocks := uint64(0)
	for i := 0; i < el.slotCount(); i++ {
		e := el.slot(i)
		if e.Empty() {
			continue
		}
		nb := e.NumBlocks()
		if nb >= blocks {
			covering = i
			break
		}
		if nb > largestBlocks {
			largest, largestBlocks = i, nb
		}
	}
	var ret Extent
	switch {
	case covering >= 0:
		e := el.slot(covering)
		ret = Extent{Block: e.Block, Length: blocks * BlockSize}
		e.Block += blocks
		e.Length -= blocks * BlockSize
		if e.Length == 0 {
			*e = Extent{}
		}
		el.markDirty(covering)
	case largest >= 0:
		e := el.slot(largest)
		ret = *e
		*e = Extent{}
		el.markDirty(largest)
	default:
		return Extent{}, ErrNoSpace
	}
	if ret.Block < self.allocStart() || ret.End() > self.TotalBlocks() {
		return Extent{}, fmt.Errorf("free list run %v out of range: %w", ret, ErrBadChain)
	}
	el.node.Size -= ret.Length
	mlog.Printf2("fs/alloc", "fs.allocateFrom %d -> %v", blocks, ret)
	return ret, nil
}

// Allocate returns a contiguous run of up to blocks blocks (the
// largest available when no run covers the request; callers loop
// until satisfied). The free list is persisted before the caller
// sees the blocks.
func (self *FileSystem) Allocate(blocks uint64) (Extent, error) {
	if self.closed {
		return Extent{}, ErrClosed
	}
	el, err := self.freeList()
	if err != nil {
		return Extent{}, err
	}
	ret, err := self.allocateFrom(el, blocks)
	if err != nil {
		return Extent{}, err
	}
	if err = el.store(); err != nil {
		return Extent{}, err
	}
	return ret, nil
}

// freeInto gives the extent's blocks back to the loaded free list,
// merging with an adjacent run when there is one.
func (self *FileSystem) freeInto(el *extentList, e Extent) error {
	if e.Empty() || e.Block < self.allocStart() || e.End() > self.TotalBlocks() {
		return fmt.Errorf("cannot free %v: %w", e, ErrBadChain)
	}
	blocks := e.NumBlocks()
	length := blocks * BlockSize
	defer func() { el.node.Size += length }()
	for i := 0; i < el.slotCount(); i++ {
		s := el.slot(i)
		if s.Empty() {
			continue
		}
		if s.End() == e.Block {
			s.Length += length
			el.markDirty(i)
			return nil
		}
		if e.Block+blocks == s.Block {
			s.Block = e.Block
			s.Length += length
			el.markDirty(i)
			return nil
		}
	}
	return el.append(Extent{Block: e.Block, Length: length})
}

// Free returns an extent's blocks to the pool. Blocks stay
// unallocatable until this is called; there is no implicit reuse.
func (self *FileSystem) Free(e Extent) error {
	return self.freeExtents([]Extent{e})
}

// freeExtents frees several runs with a single load and store of the
// free list.
func (self *FileSystem) freeExtents(extents []Extent) error {
	if self.closed {
		return ErrClosed
	}
	if len(extents) == 0 {
		return nil
	}
	el, err := self.freeList()
	if err != nil {
		return err
	}
	for _, e := range extents {
		if err = self.freeInto(el, e); err != nil {
			return err
		}
	}
	mlog.Printf2("fs/alloc", "fs.freeExtents %v", extents)
	return el.store()
}

// FreeBlocks is the number of free blocks left.
func (self *FileSystem) FreeBlocks() (uint64, error) {
	if self.closed {
		return 0, ErrClosed
	}
	el, err := self.freeList()
	if err != nil {
		return 0, err
	}
	total := uint64(0)
	el.forEach(func(e Extent) bool {
		total += e.NumBlocks()
		return true
	})
	return total, nil
}
